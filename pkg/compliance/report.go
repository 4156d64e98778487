package compliance

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// CheckResult is the outcome of one rule.
type CheckResult struct {
	RuleID      string   `json:"rule_id"`
	Citation    string   `json:"citation"`
	Passed      bool     `json:"passed"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Affected    []string `json:"affected_node_ids,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
	AutoFix     bool     `json:"auto_fix_available"`
}

// Report aggregates the results for one layout.
type Report struct {
	LayoutID     string        `json:"layout_id"`
	Jurisdiction Jurisdiction  `json:"jurisdiction"`
	Results      []CheckResult `json:"results"`
	TotalChecks  int           `json:"total_checks"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	// Warnings counts failed minor results. They are included in Failed.
	Warnings  int       `json:"warnings"`
	Score     int       `json:"score"`
	Summary   string    `json:"summary"`
	CheckedAt time.Time `json:"checked_at"`
}

// Equal compares two reports, ignoring CheckedAt.
func (r *Report) Equal(o *Report) bool {
	if r == nil || o == nil {
		return r == o
	}
	a, b := *r, *o
	a.CheckedAt, b.CheckedAt = time.Time{}, time.Time{}
	return reflect.DeepEqual(a, b)
}

// Failures returns the failed results, most severe first. Equal severities
// keep rulebook order.
func (r *Report) Failures() []CheckResult {
	var out []CheckResult
	for _, sev := range []Severity{SeverityCritical, SeverityMajor, SeverityMinor} {
		for _, res := range r.Results {
			if !res.Passed && res.Severity == sev {
				out = append(out, res)
			}
		}
	}
	return out
}

// Compliant reports whether every check passed.
func (r *Report) Compliant() bool { return r.Failed == 0 }

func newReport(layoutID string, zone Jurisdiction, results []CheckResult) *Report {
	rep := &Report{
		LayoutID:     layoutID,
		Jurisdiction: zone,
		Results:      results,
		TotalChecks:  len(results),
	}
	for _, res := range results {
		switch {
		case res.Passed:
			rep.Passed++
		case res.Severity == SeverityMinor:
			rep.Failed++
			rep.Warnings++
		default:
			rep.Failed++
		}
	}
	rep.Score = score(rep.Passed, rep.TotalChecks)
	rep.Summary = summarize(rep)
	return rep
}

func score(passed, total int) int {
	if total == 0 {
		return 100
	}
	return int(float64(100*passed)/float64(total) + 0.5)
}

// summarize words the report by its worst finding, so a single critical
// failure reads as non-compliant whatever the numeric score.
func summarize(r *Report) string {
	if r.TotalChecks == 0 {
		return fmt.Sprintf("No checkable rules apply in %s.", r.Jurisdiction)
	}
	if r.Failed == 0 {
		return fmt.Sprintf("Compliant: all %d checks passed for %s (score %d/100).", r.TotalChecks, r.Jurisdiction, r.Score)
	}

	counts := make(map[Severity]int)
	for _, res := range r.Failures() {
		counts[res.Severity]++
	}
	var verdict string
	switch {
	case counts[SeverityCritical] > 0:
		verdict = "Non-compliant"
	case counts[SeverityMajor] > 0:
		verdict = "Major deviations"
	default:
		verdict = "Minor observations"
	}

	var ids []string
	for _, res := range r.Failures() {
		ids = append(ids, res.RuleID)
	}
	return fmt.Sprintf("%s: %d critical, %d major, %d minor finding(s) for %s (score %d/100). Address first: %s.",
		verdict, counts[SeverityCritical], counts[SeverityMajor], counts[SeverityMinor],
		r.Jurisdiction, r.Score, strings.Join(ids, ", "))
}
