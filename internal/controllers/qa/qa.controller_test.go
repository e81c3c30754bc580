package qaController

import (
	"context"
	"testing"

	"monitor/config"
	"monitor/internal/database"
	"monitor/internal/events"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type qaFixture struct {
	controller *QAController
	caseRepo   repositories.CaseRepository
	taskRepo   repositories.TaskRepository
	userRepo   repositories.UserRepository
	ctx        context.Context
}

func newQAFixture(t *testing.T) *qaFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(
		&User{}, &Case{}, &CaseCompliance{}, &CaseHistory{},
		&Audit{}, &Report{}, &Contact{},
		&Task{}, &Comment{}, &EventHistory{},
	))

	db := database.DB{SQL: gormDB}
	caseRepo := repositories.NewCase(db)
	taskRepo := repositories.NewTask(db)
	userRepo := repositories.NewUser(db)

	controller := New(
		caseRepo, taskRepo, userRepo,
		services.NewTransactionService(db),
		services.NewEventLogger(db),
		services.NewNotificationService(events.New(nil, config.Config{})),
	)

	return &qaFixture{
		controller: controller,
		caseRepo:   caseRepo,
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		ctx:        context.Background(),
	}
}

func (f *qaFixture) createUser(t *testing.T, first, last, email string, isQA bool) *User {
	t.Helper()
	user := &User{
		FirstName:   first,
		LastName:    last,
		Email:       &email,
		IsQAAuditor: isQA,
		Active:      true,
	}
	require.NoError(t, f.userRepo.Create(f.ctx, user))
	return user
}

func (f *qaFixture) createCase(t *testing.T, auditorID *string) *Case {
	t.Helper()
	c := &Case{
		OrganisationName: "Example Council",
		TestType:         TestTypeSimplified,
		AuditorID:        auditorID,
		Status:           StatusTestInProgress,
		CaseCompleted:    CaseCompletedNoDecision,
		NoPsbContact:     BoolNo,
	}
	require.NoError(t, f.caseRepo.Create(f.ctx, c))
	return c
}

func TestUpdateReviewAssignsReviewer(t *testing.T) {
	f := newQAFixture(t)
	auditor := f.createUser(t, "Marcus", "Webb", "marcus@example.com", false)
	reviewer := f.createUser(t, "Priya", "Shah", "priya@example.com", true)
	c := f.createCase(t, &auditor.ID)

	done := ReviewStatusDone
	updated, err := f.controller.UpdateReview(f.ctx, auditor.ID, c.ID, QAReviewRequest{
		Version:            0,
		ReportReviewStatus: &done,
		ReviewerID:         &reviewer.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusQAInProgress, updated.Status)
	assert.Equal(t, 1, updated.Version)
	assert.Equal(t, reviewer.ID, *updated.ReviewerID)
}

func TestUpdateReviewStaleVersion(t *testing.T) {
	f := newQAFixture(t)
	auditor := f.createUser(t, "Marcus", "Webb", "marcus@example.com", false)
	c := f.createCase(t, &auditor.ID)

	done := ReviewStatusDone
	_, err := f.controller.UpdateReview(f.ctx, auditor.ID, c.ID, QAReviewRequest{
		Version:            0,
		ReportReviewStatus: &done,
	})
	require.NoError(t, err)

	// A second form posted from the original render must be rejected.
	_, err = f.controller.UpdateReview(f.ctx, auditor.ID, c.ID, QAReviewRequest{
		Version:            0,
		ReportReviewStatus: &done,
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)
}

func TestUpdateReviewApprovalCreatesTask(t *testing.T) {
	f := newQAFixture(t)
	auditor := f.createUser(t, "Marcus", "Webb", "marcus@example.com", false)
	approver := f.createUser(t, "Helen", "Baxter", "helen@example.com", true)
	c := f.createCase(t, &auditor.ID)

	approved := ApprovedStatusApproved
	updated, err := f.controller.UpdateReview(f.ctx, approver.ID, c.ID, QAReviewRequest{
		Version:              0,
		ReportApprovedStatus: &approved,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusReportReadyToSend, updated.Status)

	tasks, err := f.taskRepo.GetForUser(f.ctx, auditor.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskTypeReportApproved, tasks[0].Type)
	assert.Equal(t, "Helen Baxter QA approved Case #S-1", tasks[0].Description)

	// Re-saving an already approved case must not create another task.
	_, err = f.controller.UpdateReview(f.ctx, approver.ID, c.ID, QAReviewRequest{
		Version:              1,
		ReportApprovedStatus: &approved,
	})
	require.NoError(t, err)

	tasks, err = f.taskRepo.GetForUser(f.ctx, auditor.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestAddCommentFansOutTasks(t *testing.T) {
	f := newQAFixture(t)
	auditor := f.createUser(t, "Marcus", "Webb", "marcus@example.com", false)
	qaOne := f.createUser(t, "Helen", "Baxter", "helen@example.com", true)
	qaTwo := f.createUser(t, "Priya", "Shah", "priya@example.com", true)
	c := f.createCase(t, &auditor.ID)

	comment, err := f.controller.AddComment(f.ctx, qaOne.ID, c.ID, CommentRequest{
		Body: "Please re-check the contrast failures.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)

	// The author gets no task; the other QA auditor and the case auditor do.
	authorTasks, err := f.taskRepo.GetForUser(f.ctx, qaOne.ID)
	require.NoError(t, err)
	assert.Empty(t, authorTasks)

	for _, userID := range []string{qaTwo.ID, auditor.ID} {
		tasks, err := f.taskRepo.GetForUser(f.ctx, userID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, TaskTypeQAComment, tasks[0].Type)
		// The task carries the comment body so the list view can show it.
		assert.Equal(t,
			"Helen Baxter commented on Case #S-1: Please re-check the contrast failures.",
			tasks[0].Description)
	}
}

func TestAddCommentRejectsEmptyBody(t *testing.T) {
	f := newQAFixture(t)
	author := f.createUser(t, "Helen", "Baxter", "helen@example.com", true)
	c := f.createCase(t, nil)

	_, err := f.controller.AddComment(f.ctx, author.ID, c.ID, CommentRequest{})
	assert.Error(t, err)
}

func TestMarkTaskReadOwnership(t *testing.T) {
	f := newQAFixture(t)
	owner := f.createUser(t, "Marcus", "Webb", "marcus@example.com", false)
	other := f.createUser(t, "Helen", "Baxter", "helen@example.com", true)
	c := f.createCase(t, &owner.ID)

	approved := ApprovedStatusApproved
	_, err := f.controller.UpdateReview(f.ctx, other.ID, c.ID, QAReviewRequest{
		Version:              0,
		ReportApprovedStatus: &approved,
	})
	require.NoError(t, err)

	tasks, err := f.taskRepo.GetForUser(f.ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Error(t, f.controller.MarkTaskRead(f.ctx, other.ID, tasks[0].ID))
	require.NoError(t, f.controller.MarkTaskRead(f.ctx, owner.ID, tasks[0].ID))

	count, err := f.controller.CountUnreadTasks(f.ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
