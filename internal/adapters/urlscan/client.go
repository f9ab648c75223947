// Package urlscan talks to the urlscan.io v1 submission and result API.
package urlscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

const (
	DefaultBaseURL    = "https://urlscan.io"
	DefaultVisibility = "public"

	maxErrorBody = 4 << 10
)

type Client struct {
	BaseURL    string
	APIKey     string
	Visibility string
	HTTPClient *http.Client
}

var _ ports.JobAPI = (*Client)(nil)

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Visibility: DefaultVisibility,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type submitRequest struct {
	URL        string `json:"url"`
	Visibility string `json:"visibility"`
}

type submitResponse struct {
	UUID string `json:"uuid"`
}

// Submit creates a scan job for target.
func (c *Client) Submit(ctx context.Context, target string) (domain.JobID, error) {
	body, err := json.Marshal(submitRequest{URL: target, Visibility: c.Visibility})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/scan/", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &domain.SubmitError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.SubmitError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}
	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.SubmitError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode submit response: %w", err)}
	}
	id, err := uuid.Parse(out.UUID)
	if err != nil {
		return "", &domain.SubmitError{StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid job id %q: %w", out.UUID, err)}
	}
	return domain.JobID(id.String()), nil
}

// resultResponse holds the parts of the result document we use. Fields are
// kept raw so absent or mistyped values degrade to "absent".
type resultResponse struct {
	Verdicts struct {
		Overall struct {
			Malicious json.RawMessage `json:"malicious"`
			Score     json.RawMessage `json:"score"`
			Tags      json.RawMessage `json:"tags"`
		} `json:"overall"`
	} `json:"verdicts"`
	Task struct {
		ReportURL string `json:"reportURL"`
	} `json:"task"`
}

// FetchResult returns the completed job, or domain.ErrJobPending while the
// service still answers 404.
func (c *Client) FetchResult(ctx context.Context, id domain.JobID) (ports.JobResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/result/"+string(id)+"/", nil)
	if err != nil {
		return ports.JobResult{}, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ports.JobResult{}, &domain.PollError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return ports.JobResult{}, domain.ErrJobPending
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ports.JobResult{}, &domain.PollError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var doc resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return ports.JobResult{}, &domain.PollError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode result: %w", err)}
	}
	o := doc.Verdicts.Overall
	return ports.JobResult{
		Verdict: domain.RawVerdict{
			Malicious: decodeOptional[bool](o.Malicious),
			Score:     decodeOptional[float64](o.Score),
			Tags:      decodeTags(o.Tags),
		},
		ReportURL: doc.Task.ReportURL,
	}, nil
}

func decodeOptional[T any](raw json.RawMessage) *T {
	if len(raw) == 0 {
		return nil
	}
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func decodeTags(raw json.RawMessage) []string {
	var tags []string
	if len(raw) == 0 || json.Unmarshal(raw, &tags) != nil || tags == nil {
		return []string{}
	}
	return tags
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(b)
}
