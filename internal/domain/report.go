package domain

import (
	"strconv"
	"strings"
)

// Details summarises the reputation side of a report for persistence.
func (m ReputationMatch) Details() string {
	if m.IsPhishing {
		return "PhishStats match"
	}
	return "No PhishStats match"
}

// RenderText formats the combined report shown to users.
func RenderText(scan ScanOutcome, rep ReputationMatch) string {
	var b strings.Builder
	b.WriteString("Site: " + rep.Domain + "\n\n")

	if rep.IsPhishing {
		var latest MatchRecord
		if len(rep.Matches) > 0 {
			latest = rep.Matches[0]
		}
		b.WriteString("PhishStats: phishing record found\n")
		b.WriteString("Matches: " + strconv.Itoa(len(rep.Matches)) + "\n")
		b.WriteString("Latest URL: " + orUnknown(latest.URL) + "\n")
		b.WriteString("Brand: " + orUnknown(latest.Brand) + "\n")
		b.WriteString("Date: " + orUnknown(latest.Date) + "\n\n")
	} else {
		b.WriteString("PhishStats: no phishing records found\n\n")
	}

	b.WriteString("urlscan.io: " + string(scan.Status) + "\n")
	score := "N/A"
	if scan.Score != nil {
		score = strconv.FormatFloat(*scan.Score, 'f', -1, 64)
	}
	b.WriteString("Score: " + score + "\n")
	tags := "None"
	if len(scan.Tags) > 0 {
		tags = strings.Join(scan.Tags, ", ")
	}
	b.WriteString("Tags: " + tags + "\n")
	if scan.ReportURL != nil && *scan.ReportURL != "" {
		b.WriteString("Report: " + *scan.ReportURL + "\n")
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
