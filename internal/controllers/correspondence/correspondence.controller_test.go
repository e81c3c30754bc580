package correspondenceController

import (
	"context"
	"testing"
	"time"

	"monitor/internal/database"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type correspondenceFixture struct {
	controller         *CorrespondenceController
	correspondenceRepo repositories.CorrespondenceRepository
	caseRepo           repositories.CaseRepository
	auditRepo          repositories.AuditRepository
	ctx                context.Context
}

func newCorrespondenceFixture(t *testing.T) *correspondenceFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(
		&User{}, &Case{}, &CaseCompliance{}, &CaseHistory{}, &Contact{},
		&ZendeskTicket{}, &EqualityBodyCorrespondence{},
		&Retest{}, &RetestPage{}, &RetestCheckResult{},
		&Audit{}, &Page{}, &WcagDefinition{}, &CheckResult{},
		&Report{}, &EventHistory{},
	))

	db := database.DB{SQL: gormDB}
	correspondenceRepo := repositories.NewCorrespondence(db)
	caseRepo := repositories.NewCase(db)
	auditRepo := repositories.NewAudit(db)

	controller := New(
		correspondenceRepo, caseRepo, auditRepo,
		services.NewTransactionService(db),
		services.NewEventLogger(db),
	)

	return &correspondenceFixture{
		controller:         controller,
		correspondenceRepo: correspondenceRepo,
		caseRepo:           caseRepo,
		auditRepo:          auditRepo,
		ctx:                context.Background(),
	}
}

func (f *correspondenceFixture) createCase(t *testing.T) *Case {
	t.Helper()
	c := &Case{
		OrganisationName: "Example Council",
		HomePageURL:      "https://www.example.gov.uk",
		TestType:         TestTypeSimplified,
		Status:           StatusAwaiting12WeekDeadline,
		CaseCompleted:    CaseCompletedNoDecision,
		NoPsbContact:     BoolNo,
	}
	require.NoError(t, f.caseRepo.Create(f.ctx, c))
	return c
}

func TestAddContactDemotesPreviousPreferred(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)

	first, err := f.controller.AddContact(f.ctx, "actor", c.ID, ContactRequest{
		Name:      "Jo Evans",
		Email:     "jo.evans@example.gov.uk",
		Preferred: BoolYes,
	})
	require.NoError(t, err)

	second, err := f.controller.AddContact(f.ctx, "actor", c.ID, ContactRequest{
		Name:      "Sam Reid",
		Email:     "sam.reid@example.gov.uk",
		Preferred: BoolYes,
	})
	require.NoError(t, err)
	assert.Equal(t, BoolYes, second.Preferred)

	demoted, err := f.correspondenceRepo.GetContact(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, BoolNo, demoted.Preferred)
	assert.Equal(t, 1, demoted.Version)
}

func TestAddContactRequiresNameOrEmail(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)

	_, err := f.controller.AddContact(f.ctx, "actor", c.ID, ContactRequest{JobTitle: "Webmaster"})
	assert.Error(t, err)

	// Preferred defaults to unknown rather than empty.
	contact, err := f.controller.AddContact(f.ctx, "actor", c.ID, ContactRequest{Name: "Jo Evans"})
	require.NoError(t, err)
	assert.Equal(t, BoolUnknown, contact.Preferred)
}

func TestUpdateContactStaleVersion(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)

	contact, err := f.controller.AddContact(f.ctx, "actor", c.ID, ContactRequest{Name: "Jo Evans"})
	require.NoError(t, err)

	_, err = f.controller.UpdateContact(f.ctx, "actor", contact.ID, ContactRequest{
		Version: 0,
		Name:    "Jo Evans",
		Email:   "jo.evans@example.gov.uk",
	})
	require.NoError(t, err)

	_, err = f.controller.UpdateContact(f.ctx, "actor", contact.ID, ContactRequest{
		Version: 0,
		Name:    "Jo Evans",
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)
}

func TestRemoveContactSoftDeletes(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)

	contact, err := f.controller.AddContact(f.ctx, "actor", c.ID, ContactRequest{Name: "Jo Evans"})
	require.NoError(t, err)

	require.NoError(t, f.controller.RemoveContact(f.ctx, "actor", contact.ID, 0))

	// The row survives for the event history but drops off the list.
	removed, err := f.correspondenceRepo.GetContact(f.ctx, contact.ID)
	require.NoError(t, err)
	assert.True(t, removed.IsDeleted)

	contacts, err := f.controller.GetContacts(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestAddZendeskTicketNumbering(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)

	// The agent-tickets URL carries the ticket number.
	ticket, err := f.controller.AddZendeskTicket(f.ctx, "actor", c.ID, ZendeskTicketRequest{
		URL:     "https://example.zendesk.com/agent/tickets/12345",
		Summary: "Initial outreach",
	})
	require.NoError(t, err)
	assert.Equal(t, 12345, ticket.IDWithinCase)

	// Other URLs fall back to sequential allocation.
	ticket, err = f.controller.AddZendeskTicket(f.ctx, "actor", c.ID, ZendeskTicketRequest{
		URL:     "https://example.zendesk.com/hc/requests/999",
		Summary: "Follow up",
	})
	require.NoError(t, err)
	assert.Equal(t, 12346, ticket.IDWithinCase)
}

func TestAddEqualityBodyCorrespondenceDefaults(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)

	item, err := f.controller.AddEqualityBodyCorrespondence(f.ctx, "actor", c.ID, EqualityBodyCorrespondenceRequest{
		Message: "Please confirm the current compliance position.",
	})
	require.NoError(t, err)
	assert.Equal(t, EBCorrespondenceQuestion, item.Type)
	assert.Equal(t, EBCorrespondenceUnresolved, item.Status)

	status := EBCorrespondenceResolved
	updated, err := f.controller.UpdateEqualityBodyCorrespondence(f.ctx, "actor", item.ID, EqualityBodyCorrespondenceRequest{
		Version: 0,
		Message: item.Message,
		Status:  status,
	})
	require.NoError(t, err)
	assert.Equal(t, EBCorrespondenceResolved, updated.Status)
	assert.Equal(t, 1, updated.Version)
}

// seedAuditWithIssues builds an audit with one page carrying two failing
// checks, one of which was fixed at the 12-week retest.
func (f *correspondenceFixture) seedAuditWithIssues(t *testing.T, c *Case) (*Audit, *Page) {
	t.Helper()

	retestDate := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	audit := &Audit{
		CaseID:      c.ID,
		DateOfTest:  time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		RetestDate:  &retestDate,
		RetestNotes: "Partial fixes observed.",
	}
	require.NoError(t, f.auditRepo.Create(f.ctx, audit))
	require.NoError(t, f.auditRepo.CreatePages(f.ctx, []Page{{AuditID: audit.ID, PageType: PageTypeHome, URL: c.HomePageURL}}))
	pages, err := f.auditRepo.GetPages(f.ctx, audit.ID)
	require.NoError(t, err)
	page := pages[0]

	require.NoError(t, f.auditRepo.CreateCheckResults(f.ctx, []CheckResult{
		{
			AuditID: audit.ID, PageID: page.ID, WcagDefinitionID: "wcag-contrast", Type: WcagTypeAxe,
			CheckResultState: CheckResultError, RetestState: RetestNotFixed, RetestNotes: "Still failing",
		},
		{
			AuditID: audit.ID, PageID: page.ID, WcagDefinitionID: "wcag-alt", Type: WcagTypeAxe,
			CheckResultState: CheckResultError, RetestState: RetestFixed,
		},
		{
			AuditID: audit.ID, PageID: page.ID, WcagDefinitionID: "wcag-keyboard", Type: WcagTypeManual,
			CheckResultState: CheckResultNoError,
		},
	}))
	return audit, page
}

func TestCreateRetestSeedsAnchor(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)
	_, page := f.seedAuditWithIssues(t, c)

	retestDate := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	retest, err := f.controller.CreateRetest(f.ctx, "actor", c.ID, RetestRequest{
		DateOfRetest: &retestDate,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, retest.IDWithinCase)
	assert.Equal(t, RetestComplianceNotKnown, retest.RetestComplianceState)

	retests, err := f.controller.GetRetests(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, retests, 2)

	// The anchor carries the 12-week outcome for the unresolved check
	// only; fixed and passing checks are left out.
	anchor := retests[0]
	assert.True(t, anchor.IsAnchor())
	assert.Equal(t, "Partial fixes observed.", anchor.RetestNotes)

	loaded, err := f.controller.GetRetest(f.ctx, anchor.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Pages, 1)
	assert.Equal(t, page.ID, loaded.Pages[0].PageID)
	require.Len(t, loaded.Pages[0].CheckResults, 1)
	assert.Equal(t, RetestNotFixed, loaded.Pages[0].CheckResults[0].RetestState)

	// The new retest has the same rows but starts untested.
	loaded, err = f.controller.GetRetest(f.ctx, retest.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Pages, 1)
	require.Len(t, loaded.Pages[0].CheckResults, 1)
	assert.Equal(t, RetestNotRetested, loaded.Pages[0].CheckResults[0].RetestState)
}

func TestSecondRetestSkipsAnchor(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)
	f.seedAuditWithIssues(t, c)

	first, err := f.controller.CreateRetest(f.ctx, "actor", c.ID, RetestRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.IDWithinCase)

	second, err := f.controller.CreateRetest(f.ctx, "actor", c.ID, RetestRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.IDWithinCase)

	// One anchor plus the two requested retests.
	retests, err := f.controller.GetRetests(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, retests, 3)
}

func TestUpdateRetest(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)
	f.seedAuditWithIssues(t, c)

	retest, err := f.controller.CreateRetest(f.ctx, "actor", c.ID, RetestRequest{})
	require.NoError(t, err)

	state := RetestCompliancePartiallyCompliant
	notes := "Two of three issues resolved."
	updated, err := f.controller.UpdateRetest(f.ctx, "actor", retest.ID, RetestRequest{
		Version:               0,
		RetestComplianceState: &state,
		RetestNotes:           &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, RetestCompliancePartiallyCompliant, updated.RetestComplianceState)
	assert.Equal(t, 1, updated.Version)

	_, err = f.controller.UpdateRetest(f.ctx, "actor", retest.ID, RetestRequest{
		Version:               0,
		RetestComplianceState: &state,
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)
}

func TestUpdateRetestCheckResult(t *testing.T) {
	f := newCorrespondenceFixture(t)
	c := f.createCase(t)
	f.seedAuditWithIssues(t, c)

	retest, err := f.controller.CreateRetest(f.ctx, "actor", c.ID, RetestRequest{})
	require.NoError(t, err)

	loaded, err := f.controller.GetRetest(f.ctx, retest.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Pages, 1)
	require.Len(t, loaded.Pages[0].CheckResults, 1)
	target := loaded.Pages[0].CheckResults[0]

	require.NoError(t, f.controller.UpdateRetestCheckResult(
		f.ctx, "actor", retest.ID, target.ID, RetestFixed, "Contrast corrected in the footer.",
	))

	loaded, err = f.controller.GetRetest(f.ctx, retest.ID)
	require.NoError(t, err)
	assert.Equal(t, RetestFixed, loaded.Pages[0].CheckResults[0].RetestState)

	assert.Error(t, f.controller.UpdateRetestCheckResult(f.ctx, "actor", retest.ID, "missing", RetestFixed, ""))
}
