package services

import (
	"fmt"
	"time"

	. "monitor/internal/models"
)

// NavPage is one sub-page in the case navigation.
type NavPage struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Complete bool   `json:"complete"`
}

// NavGroup is a group of sub-pages with a (completed/total) counter.
type NavGroup struct {
	Name      string    `json:"name"`
	Pages     []NavPage `json:"pages"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
}

func newGroup(name string, pages ...NavPage) NavGroup {
	group := NavGroup{Name: name, Pages: pages, Total: len(pages)}
	for _, page := range pages {
		if page.Complete {
			group.Completed++
		}
	}
	return group
}

func done(date *time.Time) bool {
	return date != nil
}

// BuildNavigation computes the dynamic case navigation: group membership
// follows the same completion flags the status engine reads, so the
// counters can never disagree with the workflow.
func BuildNavigation(c *Case) []NavGroup {
	caseURL := func(page string) string {
		return fmt.Sprintf("/cases/%s/%s", c.ID, page)
	}

	groups := []NavGroup{
		newGroup("Case details",
			NavPage{"Case metadata", caseURL("edit-case-details"), done(c.CaseDetailsCompleteDate)},
		),
	}

	groups = append(groups, initialTestGroup(c, caseURL))
	groups = append(groups, initialStatementGroup(c, caseURL))

	groups = append(groups, newGroup("Report",
		NavPage{"Report details", caseURL("report"), done(c.ReportDetailsCompleteDate)},
		NavPage{"QA process", caseURL("edit-qa-process"), done(c.QAProcessCompleteDate)},
	))

	groups = append(groups, contactDetailsGroup(c, caseURL))

	groups = append(groups, newGroup("Report correspondence",
		NavPage{"Report sent on", caseURL("edit-report-sent-on"), done(c.ReportSentDate)},
		NavPage{"Report acknowledged", caseURL("edit-report-acknowledged"), done(c.ReportAcknowledgedDate)},
		NavPage{"12-week update requested", caseURL("edit-12-week-update-requested"), done(c.TwelveWeekUpdateRequestedDate)},
		NavPage{"Correspondence overview", caseURL("report-correspondence"), done(c.ReportCorrespondenceCompleteDate)},
	))

	groups = append(groups, retestGroup(c, caseURL))

	groups = append(groups, newGroup("Closing the case",
		NavPage{"Final website decision", caseURL("edit-website-decision"), done(c.FinalWebsiteCompleteDate)},
		NavPage{"Final statement decision", caseURL("edit-statement-decision"), done(c.FinalStatementCompleteDate)},
		NavPage{"Closing the case", caseURL("edit-case-close"), done(c.CaseCloseCompleteDate)},
	))

	return groups
}

func initialTestGroup(c *Case, caseURL func(string) string) NavGroup {
	if c.Audit == nil {
		return newGroup("Initial WCAG test",
			NavPage{"Start initial test", caseURL("start-test"), false},
		)
	}

	pages := []NavPage{
		{"Initial test metadata", caseURL("audit"), done(c.TestingDetailsCompleteDate)},
	}
	for _, page := range c.Audit.Pages {
		if page.IsDeleted {
			continue
		}
		pages = append(pages, NavPage{
			Name:     page.Title() + " test",
			URL:      fmt.Sprintf("/audits/%s/pages/%s/checks", c.Audit.ID, page.ID),
			Complete: done(page.CompleteDate),
		})
	}
	pages = append(pages, NavPage{
		"Website compliance decision", caseURL("edit-website-decision"), done(c.FinalWebsiteCompleteDate),
	})
	return newGroup("Initial WCAG test", pages...)
}

func initialStatementGroup(c *Case, caseURL func(string) string) NavGroup {
	if c.Audit == nil {
		return newGroup("Initial statement",
			NavPage{"Statement links", caseURL("statement-pages"), false},
		)
	}

	pages := []NavPage{
		{"Statement links", caseURL("statement-pages"), false},
		{"Statement overview", caseURL("statement-overview"), false},
	}

	// The detail sub-pages appear only once every overview check passes.
	if AllOverviewStatementChecksHavePassed(c.Audit.StatementCheckResults) {
		for _, detail := range []struct{ name, page string }{
			{"Statement information", "statement-website"},
			{"Compliance status", "statement-compliance"},
			{"Non-accessible content", "statement-non-accessible"},
			{"Statement preparation", "statement-preparation"},
			{"Feedback and enforcement procedure", "statement-feedback"},
			{"Custom statement issues", "statement-custom"},
		} {
			pages = append(pages, NavPage{detail.name, caseURL(detail.page), false})
		}
	}
	return newGroup("Initial statement", pages...)
}

func contactDetailsGroup(c *Case, caseURL func(string) string) NavGroup {
	pages := []NavPage{
		{"Manage contact details", caseURL("manage-contact-details"), done(c.ContactDetailsCompleteDate)},
	}
	if c.EnableCorrespondenceProcess {
		pages = append(pages,
			NavPage{"Request contact details", caseURL("request-contact-details"), done(c.SevenDayNoContactEmailSentDate)},
			NavPage{"One-week follow-up", caseURL("one-week-contact-details"), done(c.NoContactOneWeekChaserSentDate)},
			NavPage{"Four-week follow-up", caseURL("four-week-contact-details"), done(c.NoContactFourWeekChaserSentDate)},
		)
	}
	return newGroup("Contact details", pages...)
}

func retestGroup(c *Case, caseURL func(string) string) NavGroup {
	if !c.Audit.RetestStarted() {
		return newGroup("12-week retest",
			NavPage{"Start 12-week retest", caseURL("start-retest"), false},
		)
	}

	pages := []NavPage{
		{"Retest metadata", caseURL("retest"), done(c.ReviewChangesCompleteDate)},
	}
	for _, page := range c.Audit.Pages {
		if page.IsDeleted {
			continue
		}
		pages = append(pages, NavPage{
			Name:     page.Title() + " retest",
			URL:      fmt.Sprintf("/audits/%s/pages/%s/retest", c.Audit.ID, page.ID),
			Complete: done(page.RetestCompleteDate),
		})
	}
	pages = append(pages, NavPage{
		"12-week correspondence", caseURL("twelve-week-correspondence"), done(c.TwelveWeekCorrespondenceCompleteDate),
	})
	return newGroup("12-week retest", pages...)
}
