package caseController

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

type caseFixture struct {
	controller   *CaseController
	caseRepo     repositories.CaseRepository
	userRepo     repositories.UserRepository
	auditRepo    repositories.AuditRepository
	platformRepo repositories.PlatformRepository
	eventRepo    repositories.EventRepository
	ctx          context.Context
}

func newCaseFixture(t *testing.T) *caseFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(
		&User{}, &Case{}, &CaseCompliance{}, &CaseHistory{},
		&Audit{}, &Page{}, &CheckResult{}, &StatementCheckResult{},
		&Report{}, &S3Report{}, &Contact{}, &EventHistory{},
	))

	db := database.DB{SQL: gormDB}
	caseRepo := repositories.NewCase(db)
	userRepo := repositories.NewUser(db)
	auditRepo := repositories.NewAudit(db)
	platformRepo := repositories.NewPlatform(db)

	controller := New(
		caseRepo, userRepo, auditRepo, platformRepo,
		services.NewTransactionService(db),
		services.NewEventLogger(db),
	)

	return &caseFixture{
		controller:   controller,
		caseRepo:     caseRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		platformRepo: platformRepo,
		eventRepo:    repositories.NewEvent(db),
		ctx:          context.Background(),
	}
}

func (f *caseFixture) createUser(t *testing.T, first, last, email string) *User {
	t.Helper()
	user := &User{FirstName: first, LastName: last, Email: &email, Active: true}
	require.NoError(t, f.userRepo.Create(f.ctx, user))
	return user
}

func (f *caseFixture) create(t *testing.T, request CreateCaseRequest) *Case {
	t.Helper()
	actor := f.createUser(t, "Seed", "Actor", "seed-"+request.OrganisationName+"@example.com")
	result, err := f.controller.Create(f.ctx, actor.ID, request, true)
	require.NoError(t, err)
	require.NotNil(t, result.Case)
	return result.Case
}

func TestCreateCase(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")

	result, err := f.controller.Create(f.ctx, actor.ID, CreateCaseRequest{
		OrganisationName: "Example Council",
		HomePageURL:      "https://www.example.gov.uk",
	}, false)

	require.NoError(t, err)
	require.NotNil(t, result.Case)
	assert.Equal(t, 1, result.Case.CaseNumber)
	assert.Equal(t, StatusUnassigned, result.Case.Status)
	assert.Equal(t, TestTypeSimplified, result.Case.TestType)
	assert.Equal(t, PsbLocationUnknown, result.Case.PsbLocation)

	// The compliance row is created alongside.
	compliance, err := f.caseRepo.GetCompliance(f.ctx, result.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, ComplianceUnknown, compliance.WebsiteComplianceStateInitial)

	// Domain is derived on save.
	stored, err := f.caseRepo.GetByID(f.ctx, result.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, "www.example.gov.uk", stored.Domain)

	// The create lands in the event history.
	history, err := f.eventRepo.GetForCase(f.ctx, result.Case.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, EventHistoryCreate, history[0].EventType)
}

func TestCreateCaseValidation(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")

	_, err := f.controller.Create(f.ctx, actor.ID, CreateCaseRequest{}, false)
	assert.Error(t, err)

	_, err = f.controller.Create(f.ctx, actor.ID, CreateCaseRequest{
		OrganisationName: "Example",
		HomePageURL:      "not-a-url",
	}, false)
	assert.Error(t, err)

	_, err = f.controller.Create(f.ctx, actor.ID, CreateCaseRequest{
		OrganisationName: "Example",
		PreviousCaseURL:  "https://monitor.example.com/cases/999/view",
	}, false)
	assert.Error(t, err)
}

func TestCreateCaseSurfacesDuplicates(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	f.create(t, CreateCaseRequest{
		OrganisationName: "Example Council",
		HomePageURL:      "https://www.example.gov.uk",
	})

	result, err := f.controller.Create(f.ctx, actor.ID, CreateCaseRequest{
		OrganisationName: "Example Council",
		HomePageURL:      "https://www.example.gov.uk/welsh",
	}, false)

	require.NoError(t, err)
	assert.Nil(t, result.Case)
	require.NotEmpty(t, result.Duplicates)

	// Confirming creates it anyway.
	result, err = f.controller.Create(f.ctx, actor.ID, CreateCaseRequest{
		OrganisationName: "Example Council",
		HomePageURL:      "https://www.example.gov.uk/welsh",
	}, true)
	require.NoError(t, err)
	assert.NotNil(t, result.Case)
	assert.Equal(t, 2, result.Case.CaseNumber)
}

func TestUpdateDetailsRecomputesStatus(t *testing.T) {
	f := newCaseFixture(t)
	auditor := f.createUser(t, "Marcus", "Webb", "marcus@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	updated, err := f.controller.UpdateDetails(f.ctx, auditor.ID, c.ID, UpdateCaseDetailsRequest{
		Version:   0,
		AuditorID: &auditor.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusTestInProgress, updated.Status)
	assert.Equal(t, 1, updated.Version)

	// The status change is recorded in the visible case history.
	history, err := f.controller.GetHistory(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, CaseHistoryStatusChange, history[0].EventType)
	assert.Equal(t, "unassigned -> test_in_progress", history[0].Value)
}

func TestUpdateDetailsStaleVersion(t *testing.T) {
	f := newCaseFixture(t)
	auditor := f.createUser(t, "Marcus", "Webb", "marcus@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	_, err := f.controller.UpdateDetails(f.ctx, auditor.ID, c.ID, UpdateCaseDetailsRequest{
		Version:   0,
		AuditorID: &auditor.ID,
	})
	require.NoError(t, err)

	_, err = f.controller.UpdateDetails(f.ctx, auditor.ID, c.ID, UpdateCaseDetailsRequest{
		Version:   0,
		AuditorID: &auditor.ID,
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)
}

func TestUpdateDetailsNoChangeSkipsSave(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	updated, err := f.controller.UpdateDetails(f.ctx, actor.ID, c.ID, UpdateCaseDetailsRequest{
		Version: 0,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, updated.Version)
}

func TestUpdateReportCorrespondencePopulatesDueDates(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	sent := time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)
	updated, err := f.controller.UpdateReportCorrespondence(f.ctx, actor.ID, c.ID, ReportCorrespondenceRequest{
		Version:        0,
		ReportSentDate: &sent,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusInReportCorrespondence, updated.Status)
	assert.Equal(t, time.Date(2023, 3, 7, 0, 0, 0, 0, time.UTC), updated.ReportFollowupWeek1DueDate.UTC())
	assert.Equal(t, time.Date(2023, 5, 23, 0, 0, 0, 0, time.UTC), updated.ReportFollowupWeek12DueDate.UTC())
}

func TestDeactivateAndReactivate(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	deactivated, err := f.controller.Deactivate(f.ctx, actor.ID, c.ID, 0, "duplicate of another case")
	require.NoError(t, err)
	assert.Equal(t, StatusDeactivated, deactivated.Status)
	assert.Equal(t, "duplicate of another case", deactivated.DeactivateNote)

	reactivated, err := f.controller.Reactivate(f.ctx, actor.ID, c.ID, deactivated.Version)
	require.NoError(t, err)
	assert.Equal(t, StatusUnassigned, reactivated.Status)
	assert.Nil(t, reactivated.DeactivateDate)
}

func TestUpdateComplianceVersionsIndependently(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	state := CompliancePartiallyCompliant
	compliance, err := f.controller.UpdateCompliance(f.ctx, actor.ID, c.ID, ComplianceRequest{
		Version:                       0,
		WebsiteComplianceStateInitial: &state,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, compliance.Version)
	assert.Equal(t, state, compliance.WebsiteComplianceStateInitial)

	// The case row itself is untouched.
	stored, err := f.caseRepo.GetByID(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Version)

	_, err = f.controller.UpdateCompliance(f.ctx, actor.ID, c.ID, ComplianceRequest{
		Version:                       0,
		WebsiteComplianceStateInitial: &state,
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)
}

func TestDetailEditsFlagPublishedReport(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{
		OrganisationName: "Example Council",
		HomePageURL:      "https://www.example.gov.uk",
	})

	audit := &Audit{CaseID: c.ID, DateOfTest: time.Now()}
	require.NoError(t, f.auditRepo.Create(f.ctx, audit))

	// Before anything is published, edits do not raise the flag.
	name := "Example Borough Council"
	_, err := f.controller.UpdateDetails(f.ctx, actor.ID, c.ID, UpdateCaseDetailsRequest{
		Version:          0,
		OrganisationName: &name,
	})
	require.NoError(t, err)

	stored, err := f.auditRepo.GetByCaseID(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PublishedReportDataUpdatedTime)

	require.NoError(t, f.platformRepo.CreateS3Report(f.ctx, &S3Report{
		CaseID:          c.ID,
		Version:         1,
		GUID:            "guid-1",
		LatestPublished: true,
		PublishedAt:     time.Now(),
	}))

	// A post-publication enforcement body change stamps the flag.
	body := EnforcementBodyECNI
	_, err = f.controller.UpdateDetails(f.ctx, actor.ID, c.ID, UpdateCaseDetailsRequest{
		Version:         1,
		EnforcementBody: &body,
	})
	require.NoError(t, err)

	stored, err = f.auditRepo.GetByCaseID(f.ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PublishedReportDataUpdatedTime)
	first := *stored.PublishedReportDataUpdatedTime

	// Further edits keep the first stamp.
	url := "https://www.example.gov.uk/new-home"
	_, err = f.controller.UpdateDetails(f.ctx, actor.ID, c.ID, UpdateCaseDetailsRequest{
		Version:     2,
		HomePageURL: &url,
	})
	require.NoError(t, err)

	stored, err = f.auditRepo.GetByCaseID(f.ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PublishedReportDataUpdatedTime)
	assert.Equal(t, first.UTC(), stored.PublishedReportDataUpdatedTime.UTC())
}

func TestComplianceEditsFlagPublishedReport(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	audit := &Audit{CaseID: c.ID, DateOfTest: time.Now()}
	require.NoError(t, f.auditRepo.Create(f.ctx, audit))
	require.NoError(t, f.platformRepo.CreateS3Report(f.ctx, &S3Report{
		CaseID:          c.ID,
		Version:         1,
		GUID:            "guid-1",
		LatestPublished: true,
		PublishedAt:     time.Now(),
	}))

	state := CompliancePartiallyCompliant
	_, err := f.controller.UpdateCompliance(f.ctx, actor.ID, c.ID, ComplianceRequest{
		Version:                       0,
		WebsiteComplianceStateInitial: &state,
	})
	require.NoError(t, err)

	stored, err := f.auditRepo.GetByCaseID(f.ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.PublishedReportDataUpdatedTime)
}

func TestUpdateReviewChangesGatesFinalDecision(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	retestDate := time.Now()
	audit := &Audit{CaseID: c.ID, DateOfTest: time.Now(), RetestDate: &retestDate}
	require.NoError(t, f.auditRepo.Create(f.ctx, audit))

	// Ready for a decision but the retest review is still open.
	ready := BoolYes
	updated, err := f.controller.UpdateClose(f.ctx, actor.ID, c.ID, CaseCloseRequest{
		Version:                 0,
		IsReadyForFinalDecision: &ready,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusReviewingChanges, updated.Status)

	complete := time.Now()
	updated, err = f.controller.UpdateReviewChanges(f.ctx, actor.ID, c.ID, ReviewChangesRequest{
		Version:      updated.Version,
		CompleteDate: &complete,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFinalDecisionDue, updated.Status)
}

func TestAddNote(t *testing.T) {
	f := newCaseFixture(t)
	actor := f.createUser(t, "Helen", "Baxter", "helen@example.com")
	c := f.create(t, CreateCaseRequest{OrganisationName: "Example Council"})

	require.Error(t, f.controller.AddNote(f.ctx, actor.ID, c.ID, ""))
	require.NoError(t, f.controller.AddNote(f.ctx, actor.ID, c.ID, "Spoke to the digital lead."))

	history, err := f.controller.GetHistory(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, CaseHistoryNote, history[0].EventType)
	assert.Equal(t, "Spoke to the digital lead.", history[0].Value)
}
