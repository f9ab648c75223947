package domain

// SuspiciousScore is the score at or above which a non-malicious verdict is suspicious.
const SuspiciousScore = 50

// Tags that mark a verdict suspicious regardless of score.
const (
	TagPhishing = "phishing"
	TagMalware  = "malware"
)

// Classify maps a raw verdict to a risk status. A malicious flag wins over the
// score and tag rules; absent fields never satisfy a rule.
func Classify(raw RawVerdict) Status {
	if raw.Malicious != nil && *raw.Malicious {
		return StatusMalicious
	}
	if raw.Score != nil && *raw.Score >= SuspiciousScore {
		return StatusSuspicious
	}
	for _, t := range raw.Tags {
		if t == TagPhishing || t == TagMalware {
			return StatusSuspicious
		}
	}
	return StatusSafe
}

// Outcome builds the scan outcome for a completed job.
func Outcome(raw RawVerdict, reportURL string) ScanOutcome {
	tags := raw.Tags
	if tags == nil {
		tags = []string{}
	}
	out := ScanOutcome{Status: Classify(raw), Score: raw.Score, Tags: tags}
	if reportURL != "" {
		out.ReportURL = &reportURL
	}
	return out
}
