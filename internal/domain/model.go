package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Core domain models shared by services and adapters. Adapters translate wire
// formats into these types; keep them free of transport concerns.

// Status is the three-valued risk classification of a scanned URL.
type Status string

const (
	StatusSafe       Status = "Safe"
	StatusSuspicious Status = "Suspicious"
	StatusMalicious  Status = "Malicious"
)

// JobID identifies a scan job at the external scanning service.
type JobID string

// RawVerdict is the overall verdict reported for a completed job. Nil fields
// were absent from the upstream payload.
type RawVerdict struct {
	Malicious *bool
	Score     *float64
	Tags      []string
}

// ScanOutcome is the normalized result of one scan job.
type ScanOutcome struct {
	Status    Status   `json:"status"`
	Score     *float64 `json:"score"`
	Tags      []string `json:"tags"`
	ReportURL *string  `json:"reportUrl"`
}

// MatchRecord is one historical phishing report.
type MatchRecord struct {
	URL   string `json:"url"`
	Brand string `json:"brand"`
	Date  string `json:"date"`
}

// ReputationMatch is the result of a reputation lookup for a domain.
type ReputationMatch struct {
	Domain     string        `json:"domain"`
	Matches    []MatchRecord `json:"matches"`
	IsPhishing bool          `json:"isPhishing"`
}

// Report combines a scan outcome with the reputation lookup for the same URL.
type Report struct {
	URL        string          `json:"url"`
	Scan       ScanOutcome     `json:"scan"`
	Reputation ReputationMatch `json:"reputation"`
	Counts     Counts          `json:"counts"`
	Text       string          `json:"text"`
}

// Counts tallies completed scans per status.
type Counts struct {
	Safe       int `json:"safe"`
	Suspicious int `json:"suspicious"`
	Malicious  int `json:"malicious"`
}

// Add returns c with the counter for s incremented. Unknown statuses count as safe.
func (c Counts) Add(s Status) Counts {
	switch s {
	case StatusMalicious:
		c.Malicious++
	case StatusSuspicious:
		c.Suspicious++
	default:
		c.Safe++
	}
	return c
}

// ScanRecord is a persisted scan.
type ScanRecord struct {
	ID        int64     `json:"id,omitempty"`
	URL       string    `json:"url"`
	Domain    string    `json:"domain,omitempty"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the latest known verdict for a registrable domain.
type Profile struct {
	Domain   string     `json:"domain"`
	Latest   ScanRecord `json:"latest"`
	Status   Status     `json:"status"`
	Scans    int        `json:"scans"`
	Statuses Counts     `json:"statuses"`
}

// ParseCount converts a stored counter value to an int. Anything that is not a
// finite number counts as zero; fractions are truncated.
func ParseCount(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}
