// Package phishstats queries the PhishStats phishing report index.
package phishstats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

const (
	DefaultBaseURL = "https://api.phishstats.info"
	// PageSize caps the number of matches returned, newest first.
	PageSize = 10
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ ports.Reputation = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: &http.Client{Timeout: timeout}}
}

type record struct {
	URL   string `json:"url"`
	Brand string `json:"brand"`
	Date  string `json:"date"`
}

// Lookup returns the most recent phishing reports whose URL contains host.
func (c *Client) Lookup(ctx context.Context, host string) (domain.ReputationMatch, error) {
	host = strings.ToLower(host)
	fail := func(err error) (domain.ReputationMatch, error) {
		return domain.ReputationMatch{}, &domain.ReputationLookupError{Domain: host, Err: err}
	}

	// The _where expression must keep its parentheses and commas literal.
	endpoint := c.BaseURL + "/api/phishing?_where=(url,like," + url.QueryEscape(host) +
		")&_size=" + fmt.Sprint(PageSize) + "&_sort=-date"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fail(fmt.Errorf("phishstats error: %s", resp.Status))
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fail(fmt.Errorf("decode phishstats response: %w", err))
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		// Anything other than an array means no matches.
		records = nil
	}

	matches := make([]domain.MatchRecord, 0, len(records))
	for _, r := range records {
		matches = append(matches, domain.MatchRecord{URL: r.URL, Brand: r.Brand, Date: r.Date})
	}
	return domain.ReputationMatch{Domain: host, Matches: matches, IsPhishing: len(matches) > 0}, nil
}
