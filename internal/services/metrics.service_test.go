package services

import (
	"testing"
	"time"

	. "monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func checkResult(state, retestState string) CheckResult {
	return CheckResult{CheckResultState: state, RetestState: retestState}
}

func TestCountWebsiteIssues(t *testing.T) {
	results := []CheckResult{
		checkResult(CheckResultError, RetestFixed),
		checkResult(CheckResultError, RetestNotFixed),
		checkResult(CheckResultError, RetestNotRetested),
		checkResult(CheckResultNoError, RetestNotRetested),
		checkResult(CheckResultNotTested, RetestNotRetested),
	}

	total, fixed, unfixed := CountWebsiteIssues(results)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, 1, unfixed)
}

func TestPercentageWebsiteIssuesFixed(t *testing.T) {
	assert.Equal(t, PercentageNA, PercentageWebsiteIssuesFixed(nil))

	results := []CheckResult{
		checkResult(CheckResultError, RetestFixed),
		checkResult(CheckResultError, RetestFixed),
		checkResult(CheckResultError, RetestNotFixed),
	}
	assert.Equal(t, "67", PercentageWebsiteIssuesFixed(results))
}

func TestOverviewIssuesWebsite(t *testing.T) {
	assert.Equal(t, "No test exists", OverviewIssuesWebsite(nil))

	audit := &Audit{}
	assert.Equal(t, "0 of 0 fixed", OverviewIssuesWebsite(audit))

	audit.CheckResults = []CheckResult{
		checkResult(CheckResultError, RetestFixed),
		checkResult(CheckResultError, RetestNotFixed),
	}
	assert.Equal(t, "1 of 2 fixed (50%)", OverviewIssuesWebsite(audit))
}

func TestOverviewIssuesStatement(t *testing.T) {
	assert.Equal(t, "No test exists", OverviewIssuesStatement(nil))

	audit := &Audit{
		StatementCheckResults: []StatementCheckResult{
			{CheckResultState: StatementResultNo, RetestState: StatementResultYes},
			{CheckResultState: StatementResultNo, RetestState: StatementResultNo},
			{CheckResultState: StatementResultYes, RetestState: StatementResultNo},
			{CheckResultState: StatementResultNo, IsDeleted: true},
		},
	}

	// Deleted rows are excluded from the count.
	assert.Equal(t, "2 checks failed on test", OverviewIssuesStatement(audit))

	retestDate := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	audit.RetestDate = &retestDate
	assert.Equal(t, "2 checks failed on retest", OverviewIssuesStatement(audit))
}

func TestAllOverviewStatementChecksHavePassed(t *testing.T) {
	assert.False(t, AllOverviewStatementChecksHavePassed(nil))

	results := []StatementCheckResult{
		{Type: StatementCheckOverview, CheckResultState: StatementResultYes},
		{Type: StatementCheckWebsite, CheckResultState: StatementResultNo},
	}
	assert.True(t, AllOverviewStatementChecksHavePassed(results))

	results = append(results, StatementCheckResult{
		Type:             StatementCheckOverview,
		CheckResultState: StatementResultNotTested,
	})
	assert.False(t, AllOverviewStatementChecksHavePassed(results))
}

func TestStatementChecksStillInitial(t *testing.T) {
	results := []StatementCheckResult{
		{Type: StatementCheckOverview, CheckResultState: StatementResultNotTested},
	}

	assert.True(t, StatementChecksStillInitial(nil, results))

	compliance := &CaseCompliance{StatementComplianceStateInitial: ComplianceCompliant}
	assert.False(t, StatementChecksStillInitial(compliance, results))

	results[0].CheckResultState = StatementResultYes
	assert.False(t, StatementChecksStillInitial(nil, results))
}

func TestComputeAuditMetrics(t *testing.T) {
	metrics := ComputeAuditMetrics(nil)
	assert.Equal(t, PercentageNA, metrics.PercentageFixed)
	assert.Equal(t, "No test exists", metrics.OverviewWebsite)

	audit := &Audit{
		CheckResults: []CheckResult{
			checkResult(CheckResultError, RetestFixed),
			checkResult(CheckResultError, RetestNotRetested),
		},
	}
	metrics = ComputeAuditMetrics(audit)
	assert.Equal(t, 2, metrics.TotalWebsiteIssues)
	assert.Equal(t, 1, metrics.TotalWebsiteIssuesFixed)
	assert.Equal(t, 0, metrics.TotalWebsiteIssuesUnfixed)
	assert.Equal(t, "50", metrics.PercentageFixed)
}
