package urlscan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskscan/internal/domain"
)

const jobUUID = "0e37e828-a9d9-45c0-ac50-1ca579b86c72"

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/scan/", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com", body["url"])
		assert.Equal(t, "public", body["visibility"])
		_, _ = w.Write([]byte(`{"uuid":"` + jobUUID + `","message":"Submission successful"}`))
	}))
	defer srv.Close()

	id, err := New(srv.URL+"/", "secret", time.Second).Submit(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.JobID(jobUUID), id)
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"DNS Error"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).Submit(context.Background(), "https://nope.invalid")
	var se *domain.SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, se.Body, "DNS Error")
}

func TestSubmitMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).Submit(context.Background(), "https://example.com")
	var se *domain.SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusOK, se.StatusCode)
}

func TestFetchResultPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/result/"+jobUUID+"/", r.URL.Path)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).FetchResult(context.Background(), jobUUID)
	assert.ErrorIs(t, err, domain.ErrJobPending)
}

func TestFetchResultFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).FetchResult(context.Background(), jobUUID)
	var pe *domain.PollError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode)
	assert.Equal(t, "upstream broke", pe.Body)
	assert.NotErrorIs(t, err, domain.ErrJobPending)
}

func TestFetchResultParsesVerdict(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   domain.RawVerdict
		report string
	}{
		{
			name:   "full verdict",
			body:   `{"verdicts":{"overall":{"malicious":true,"score":100,"tags":["phishing"]}},"task":{"reportURL":"https://urlscan.io/result/x/"}}`,
			want:   domain.RawVerdict{Malicious: ptr(true), Score: ptr(100.0), Tags: []string{"phishing"}},
			report: "https://urlscan.io/result/x/",
		},
		{
			name: "no verdicts",
			body: `{"task":{}}`,
			want: domain.RawVerdict{Tags: []string{}},
		},
		{
			name: "null and mistyped fields",
			body: `{"verdicts":{"overall":{"malicious":null,"score":"high","tags":"phishing"}}}`,
			want: domain.RawVerdict{Tags: []string{}},
		},
		{
			name: "score only",
			body: `{"verdicts":{"overall":{"malicious":false,"score":0,"tags":[]}}}`,
			want: domain.RawVerdict{Malicious: ptr(false), Score: ptr(0.0), Tags: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := New(srv.URL, "k", time.Second).FetchResult(context.Background(), jobUUID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Verdict)
			assert.Equal(t, tt.report, res.ReportURL)
		})
	}
}

func ptr[T any](v T) *T { return &v }
