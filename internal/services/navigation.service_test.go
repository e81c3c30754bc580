package services

import (
	"testing"
	"time"

	. "monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func findGroup(t *testing.T, groups []NavGroup, name string) NavGroup {
	t.Helper()
	for _, group := range groups {
		if group.Name == name {
			return group
		}
	}
	t.Fatalf("group %q not found", name)
	return NavGroup{}
}

func TestBuildNavigationBeforeTest(t *testing.T) {
	c := &Case{}
	c.ID = "case-1"

	groups := BuildNavigation(c)

	test := findGroup(t, groups, "Initial WCAG test")
	assert.Len(t, test.Pages, 1)
	assert.Equal(t, "Start initial test", test.Pages[0].Name)
	assert.Equal(t, 0, test.Completed)

	retest := findGroup(t, groups, "12-week retest")
	assert.Equal(t, "Start 12-week retest", retest.Pages[0].Name)
}

func TestBuildNavigationListsAuditPages(t *testing.T) {
	done := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	c := &Case{
		Audit: &Audit{
			Pages: []Page{
				{PageType: PageTypeHome, Name: "Home", CompleteDate: &done},
				{PageType: PageTypeContact},
				{PageType: PageTypeExtra, IsDeleted: true},
			},
		},
	}
	c.ID = "case-1"
	c.Audit.ID = "audit-1"

	group := findGroup(t, BuildNavigation(c), "Initial WCAG test")

	// Metadata + two live pages + compliance decision; the deleted page is
	// skipped.
	assert.Len(t, group.Pages, 4)
	assert.Equal(t, "Home test", group.Pages[1].Name)
	assert.Equal(t, "/audits/audit-1/pages/"+c.Audit.Pages[0].ID+"/checks", group.Pages[1].URL)
	assert.True(t, group.Pages[1].Complete)
	assert.Equal(t, "contact test", group.Pages[2].Name)
	assert.Equal(t, 1, group.Completed)
	assert.Equal(t, 4, group.Total)
}

func TestBuildNavigationStatementDetailGating(t *testing.T) {
	c := &Case{Audit: &Audit{
		StatementCheckResults: []StatementCheckResult{
			{Type: StatementCheckOverview, CheckResultState: StatementResultNotTested},
		},
	}}
	c.ID = "case-1"

	group := findGroup(t, BuildNavigation(c), "Initial statement")
	assert.Len(t, group.Pages, 2)

	c.Audit.StatementCheckResults[0].CheckResultState = StatementResultYes
	group = findGroup(t, BuildNavigation(c), "Initial statement")
	assert.Len(t, group.Pages, 8)
}

func TestBuildNavigationContactCorrespondenceToggle(t *testing.T) {
	c := &Case{}
	c.ID = "case-1"

	group := findGroup(t, BuildNavigation(c), "Contact details")
	assert.Len(t, group.Pages, 1)

	c.EnableCorrespondenceProcess = true
	group = findGroup(t, BuildNavigation(c), "Contact details")
	assert.Len(t, group.Pages, 4)
}

func TestBuildNavigationCounters(t *testing.T) {
	now := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	c := &Case{
		ReportSentDate:         &now,
		ReportAcknowledgedDate: &now,
	}
	c.ID = "case-1"

	group := findGroup(t, BuildNavigation(c), "Report correspondence")
	assert.Equal(t, 2, group.Completed)
	assert.Equal(t, 4, group.Total)
}
