package exportController

import (
	"context"
	"strings"
	"testing"
	"time"

	"monitor/internal/database"
	. "monitor/internal/models"
	"monitor/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type exportFixture struct {
	controller *ExportController
	caseRepo   repositories.CaseRepository
	ctx        context.Context
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(
		&User{}, &Case{}, &CaseCompliance{}, &CaseHistory{}, &Contact{},
		&Audit{}, &Page{}, &CheckResult{}, &StatementCheckResult{}, &Report{},
	))

	db := database.DB{SQL: gormDB}
	caseRepo := repositories.NewCase(db)

	return &exportFixture{
		controller: New(caseRepo),
		caseRepo:   caseRepo,
		ctx:        context.Background(),
	}
}

func (f *exportFixture) createCase(t *testing.T, mutate func(c *Case)) *Case {
	t.Helper()
	c := &Case{
		OrganisationName: "Example Council",
		HomePageURL:      "https://www.example.gov.uk",
		TestType:         TestTypeSimplified,
		Status:           StatusTestInProgress,
		CaseCompleted:    CaseCompletedNoDecision,
		NoPsbContact:     BoolNo,
		EnforcementBody:  EnforcementBodyEHRC,
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, f.caseRepo.Create(f.ctx, c))
	return c
}

func TestWriteCaseExport(t *testing.T) {
	f := newExportFixture(t)
	f.createCase(t, nil)
	f.createCase(t, func(c *Case) {
		c.OrganisationName = "Another, With Comma"
	})

	var b strings.Builder
	require.NoError(t, f.controller.WriteCaseExport(f.ctx, &b))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Case number,Case identifier,Organisation name"))
	// Newest case first.
	assert.Contains(t, lines[1], `"Another, With Comma"`)
	assert.Contains(t, lines[2], "#S-1")
}

func TestWriteEqualityBodyExportFilters(t *testing.T) {
	f := newExportFixture(t)
	sent := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)

	f.createCase(t, func(c *Case) {
		c.OrganisationName = "Escalated Body"
		c.CaseCompleted = CaseCompletedSend
		c.SentToEnforcementBodySentDate = &sent
	})
	// Wrong body, excluded even though sent.
	f.createCase(t, func(c *Case) {
		c.OrganisationName = "Scottish Body"
		c.EnforcementBody = EnforcementBodyECNI
		c.CaseCompleted = CaseCompletedSend
	})
	// Never escalated, excluded.
	f.createCase(t, func(c *Case) {
		c.OrganisationName = "Compliant Body"
	})

	var b strings.Builder
	require.NoError(t, f.controller.WriteEqualityBodyExport(f.ctx, &b, EnforcementBodyEHRC))

	output := b.String()
	assert.Contains(t, output, "Escalated Body")
	assert.NotContains(t, output, "Scottish Body")
	assert.NotContains(t, output, "Compliant Body")
}

func TestWriteFeedbackSurveyExportOnlyCompletedCases(t *testing.T) {
	f := newExportFixture(t)
	completed := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)

	f.createCase(t, func(c *Case) {
		c.OrganisationName = "Finished Body"
		c.Status = StatusComplete
		c.CompletedDate = &completed
	})
	f.createCase(t, func(c *Case) {
		c.OrganisationName = "Ongoing Body"
	})

	var b strings.Builder
	require.NoError(t, f.controller.WriteFeedbackSurveyExport(f.ctx, &b))

	output := b.String()
	assert.Contains(t, output, "Finished Body")
	assert.NotContains(t, output, "Ongoing Body")

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	assert.Equal(t, "Case number,Organisation name,Contact details,Completed date", lines[0])
}
