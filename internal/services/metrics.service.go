package services

import (
	"fmt"
	"math"

	. "monitor/internal/models"
)

// PercentageNA is returned when a percentage has no denominator.
const PercentageNA = "n/a"

// AuditMetrics aggregates an audit's check results. All values are
// derived on read; nothing here is stored.
type AuditMetrics struct {
	TotalWebsiteIssues        int    `json:"totalWebsiteIssues"`
	TotalWebsiteIssuesFixed   int    `json:"totalWebsiteIssuesFixed"`
	TotalWebsiteIssuesUnfixed int    `json:"totalWebsiteIssuesUnfixed"`
	PercentageFixed           string `json:"percentageWebsiteIssuesFixed"`
	OverviewWebsite           string `json:"overviewIssuesWebsite"`
	OverviewStatement         string `json:"overviewIssuesStatement"`
}

func CountWebsiteIssues(results []CheckResult) (total, fixed, unfixed int) {
	for _, result := range results {
		if result.CheckResultState != CheckResultError {
			continue
		}
		total++
		switch result.RetestState {
		case RetestFixed:
			fixed++
		case RetestNotFixed:
			unfixed++
		}
	}
	return total, fixed, unfixed
}

// PercentageWebsiteIssuesFixed returns "n/a" when there are no issues,
// otherwise the rounded percentage as a string.
func PercentageWebsiteIssuesFixed(results []CheckResult) string {
	total, fixed, _ := CountWebsiteIssues(results)
	if total == 0 {
		return PercentageNA
	}
	return fmt.Sprintf("%d", int(math.Round(float64(fixed)/float64(total)*100)))
}

// OverviewIssuesWebsite renders "X of Y fixed (P%)", or "No test exists"
// when the case has no audit.
func OverviewIssuesWebsite(audit *Audit) string {
	if audit == nil {
		return "No test exists"
	}
	total, fixed, _ := CountWebsiteIssues(audit.CheckResults)
	if total == 0 {
		return "0 of 0 fixed"
	}
	percentage := int(math.Round(float64(fixed) / float64(total) * 100))
	return fmt.Sprintf("%d of %d fixed (%d%%)", fixed, total, percentage)
}

// OverviewIssuesStatement counts failed statement checks, against the
// retest states once the 12-week retest has started.
func OverviewIssuesStatement(audit *Audit) string {
	if audit == nil {
		return "No test exists"
	}
	failed := 0
	onRetest := audit.RetestStarted()
	for _, result := range audit.StatementCheckResults {
		if result.IsDeleted {
			continue
		}
		if onRetest {
			if result.RetestState == StatementResultNo {
				failed++
			}
		} else if result.CheckResultState == StatementResultNo {
			failed++
		}
	}
	if onRetest {
		return fmt.Sprintf("%d checks failed on retest", failed)
	}
	return fmt.Sprintf("%d checks failed on test", failed)
}

// AllOverviewStatementChecksHavePassed gates the rest of the statement
// flow in the navigation.
func AllOverviewStatementChecksHavePassed(results []StatementCheckResult) bool {
	seen := false
	for _, result := range results {
		if result.IsDeleted || result.Type != StatementCheckOverview {
			continue
		}
		seen = true
		if result.CheckResultState != StatementResultYes {
			return false
		}
	}
	return seen
}

// StatementChecksStillInitial reports whether the statement compliance
// decision is untouched and at least one overview check is untested.
func StatementChecksStillInitial(compliance *CaseCompliance, results []StatementCheckResult) bool {
	if compliance != nil && compliance.StatementComplianceStateInitial != ComplianceUnknown {
		return false
	}
	for _, result := range results {
		if result.IsDeleted || result.Type != StatementCheckOverview {
			continue
		}
		if result.CheckResultState == StatementResultNotTested {
			return true
		}
	}
	return false
}

// ComputeAuditMetrics bundles the derived numbers for the overview and
// closing pages.
func ComputeAuditMetrics(audit *Audit) AuditMetrics {
	metrics := AuditMetrics{
		PercentageFixed:   PercentageNA,
		OverviewWebsite:   OverviewIssuesWebsite(audit),
		OverviewStatement: OverviewIssuesStatement(audit),
	}
	if audit == nil {
		return metrics
	}
	metrics.TotalWebsiteIssues, metrics.TotalWebsiteIssuesFixed, metrics.TotalWebsiteIssuesUnfixed =
		CountWebsiteIssues(audit.CheckResults)
	metrics.PercentageFixed = PercentageWebsiteIssuesFixed(audit.CheckResults)
	return metrics
}
