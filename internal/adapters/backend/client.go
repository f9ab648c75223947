// Package backend calls a running riskscan server, so the scan workflow can
// run on the server while the caller only aggregates.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpadapter "riskscan/internal/adapters/http"
	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var (
	_ ports.Scanner           = (*Client)(nil)
	_ ports.HistoryRepository = (*Client)(nil)
)

// New returns a client for the server at baseURL. The scan call blocks for the
// whole poll cycle, so timeout must cover it.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: &http.Client{Timeout: timeout}}
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Scan asks the server to run the scan workflow and maps its error responses
// back onto the domain error kinds.
func (c *Client) Scan(ctx context.Context, target string) (domain.ScanOutcome, error) {
	var out domain.ScanOutcome
	status, eb, err := c.do(ctx, http.MethodPost, "/urlscan", map[string]string{"url": target}, &out)
	if err != nil {
		return domain.ScanOutcome{}, &domain.SubmitError{Err: err}
	}
	if status == http.StatusOK {
		if out.Tags == nil {
			out.Tags = []string{}
		}
		return out, nil
	}
	switch eb.Error {
	case httpadapter.MsgSubmitFailed:
		return domain.ScanOutcome{}, &domain.SubmitError{StatusCode: status, Body: eb.Details}
	case httpadapter.MsgResultFailed:
		return domain.ScanOutcome{}, &domain.PollError{StatusCode: status, Body: eb.Details}
	case httpadapter.MsgTimeout:
		return domain.ScanOutcome{}, domain.ErrPollTimeout
	}
	return domain.ScanOutcome{}, &domain.SubmitError{StatusCode: status, Body: eb.Error}
}

type saveResponse struct {
	Success bool              `json:"success"`
	Data    domain.ScanRecord `json:"data"`
}

func (c *Client) Save(ctx context.Context, rec domain.ScanRecord) (domain.ScanRecord, error) {
	var out saveResponse
	status, eb, err := c.do(ctx, http.MethodPost, "/save-scan", map[string]string{"url": rec.URL, "result": rec.Result}, &out)
	if err != nil {
		return domain.ScanRecord{}, err
	}
	if status != http.StatusOK {
		return domain.ScanRecord{}, fmt.Errorf("save scan: status %d: %s", status, eb.Error)
	}
	return out.Data, nil
}

type listResponse struct {
	Success bool                `json:"success"`
	Data    []domain.ScanRecord `json:"data"`
	Error   string              `json:"error"`
}

func (c *Client) Recent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	var out listResponse
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	status, eb, err := c.do(ctx, http.MethodGet, "/scans?"+q.Encode(), nil, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		msg := eb.Error
		if msg == "" {
			msg = out.Error
		}
		return nil, fmt.Errorf("list scans: status %d: %s", status, msg)
	}
	return out.Data, nil
}

// do sends one request. On 200 the body is decoded into out; otherwise into
// the returned error body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, errorBody, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, errorBody{}, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, errorBody{}, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, errorBody{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, errorBody{}, err
	}
	if resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, errorBody{}, fmt.Errorf("decode %s response: %w", path, err)
		}
		return resp.StatusCode, errorBody{}, nil
	}
	var eb errorBody
	if json.Unmarshal(raw, &eb) != nil {
		eb.Error = strings.TrimSpace(string(raw))
	}
	return resp.StatusCode, eb, nil
}
