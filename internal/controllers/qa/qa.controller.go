package qaController

import (
	"context"
	"fmt"
	"time"

	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"
)

type QAController struct {
	caseRepo            repositories.CaseRepository
	taskRepo            repositories.TaskRepository
	userRepo            repositories.UserRepository
	transactionService  *services.TransactionService
	eventLogger         *services.EventLogger
	notificationService *services.NotificationService
	log                 logger.Logger
}

func New(
	caseRepo repositories.CaseRepository,
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	transactionService *services.TransactionService,
	eventLogger *services.EventLogger,
	notificationService *services.NotificationService,
) *QAController {
	return &QAController{
		caseRepo:            caseRepo,
		taskRepo:            taskRepo,
		userRepo:            userRepo,
		transactionService:  transactionService,
		eventLogger:         eventLogger,
		notificationService: notificationService,
		log:                 logger.New("QAController"),
	}
}

// UpdateReview saves the QA process form. Approval creates a
// report_approved task for the auditor and pushes a notification.
func (qc *QAController) UpdateReview(
	ctx context.Context,
	actorID string,
	caseID string,
	request QAReviewRequest,
) (*Case, error) {
	log := qc.log.Function("UpdateReview")

	var updated *Case
	var approvedNow bool
	err := qc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		c, err := qc.caseRepo.GetForUpdate(txCtx, caseID)
		if err != nil {
			return err
		}
		if c.Version != request.Version {
			return repositories.ErrStaleVersion
		}
		old := *c

		if request.ReportReviewStatus != nil {
			c.ReportReviewStatus = *request.ReportReviewStatus
		}
		if request.ReviewerID != nil {
			if *request.ReviewerID == "" {
				c.ReviewerID = nil
			} else {
				if _, err := qc.userRepo.GetByID(txCtx, *request.ReviewerID); err != nil {
					return log.Err("reviewer not found", err, "reviewerID", *request.ReviewerID)
				}
				c.ReviewerID = request.ReviewerID
			}
		}
		if request.ReportApprovedStatus != nil {
			c.ReportApprovedStatus = *request.ReportApprovedStatus
		}

		approvedNow = old.ReportApprovedStatus != ApprovedStatusApproved &&
			c.ReportApprovedStatus == ApprovedStatusApproved

		c.Status = services.ComputeStatus(c)

		changed, err := qc.eventLogger.LogUpdate(txCtx, actorID, &c.ID, &old, c)
		if err != nil {
			return err
		}
		if changed {
			c.Version = request.Version + 1
			if err := qc.caseRepo.Update(txCtx, c, request.Version); err != nil {
				return log.Err("failed to save case", err, "caseID", caseID)
			}
		}

		if approvedNow && c.AuditorID != nil {
			approver, err := qc.userRepo.GetByID(txCtx, actorID)
			if err != nil {
				return err
			}
			task := &Task{
				Type:        TaskTypeReportApproved,
				UserID:      *c.AuditorID,
				CaseID:      c.ID,
				Date:        time.Now(),
				Description: fmt.Sprintf("%s QA approved Case %s", approver.FullName(), c.CaseIdentifier()),
			}
			if err := qc.taskRepo.Create(txCtx, task); err != nil {
				return err
			}
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if approvedNow && updated.AuditorID != nil {
		qc.notificationService.NotifyUser(*updated.AuditorID, services.NotificationReportApproved, map[string]any{
			"caseId":         updated.ID,
			"caseIdentifier": updated.CaseIdentifier(),
		})
	}
	return updated, nil
}

// AddComment posts a QA comment and fans out qa_comment tasks to the QA
// auditor group and the case auditor, skipping the author.
func (qc *QAController) AddComment(
	ctx context.Context,
	actorID string,
	caseID string,
	request CommentRequest,
) (*Comment, error) {
	log := qc.log.Function("AddComment")

	if request.Body == "" {
		return nil, log.Error("comment body is empty", "caseID", caseID)
	}

	var comment *Comment
	var recipients []string
	err := qc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		c, err := qc.caseRepo.GetByID(txCtx, caseID)
		if err != nil {
			return err
		}
		author, err := qc.userRepo.GetByID(txCtx, actorID)
		if err != nil {
			return err
		}

		comment = &Comment{
			CaseID: caseID,
			UserID: actorID,
			Body:   request.Body,
		}
		if err := qc.taskRepo.CreateComment(txCtx, comment); err != nil {
			return err
		}

		auditors, err := qc.userRepo.GetQAAuditors(txCtx)
		if err != nil {
			return err
		}
		targets := map[string]bool{}
		for _, auditor := range auditors {
			targets[auditor.ID] = true
		}
		if c.AuditorID != nil {
			targets[*c.AuditorID] = true
		}
		delete(targets, actorID)

		for userID := range targets {
			task := &Task{
				Type:        TaskTypeQAComment,
				UserID:      userID,
				CaseID:      caseID,
				Date:        time.Now(),
				Description: fmt.Sprintf("%s commented on Case %s: %s", author.FullName(), c.CaseIdentifier(), request.Body),
			}
			if err := qc.taskRepo.Create(txCtx, task); err != nil {
				return err
			}
			recipients = append(recipients, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, userID := range recipients {
		qc.notificationService.NotifyUser(userID, services.NotificationCommentPosted, map[string]any{
			"caseId":    caseID,
			"commentId": comment.ID,
		})
	}
	return comment, nil
}

func (qc *QAController) GetComments(ctx context.Context, caseID string) ([]*Comment, error) {
	return qc.taskRepo.GetComments(ctx, caseID)
}

// MarkCommentsRead clears the caller's qa_comment tasks for the case,
// typically on opening the QA discussion page.
func (qc *QAController) MarkCommentsRead(ctx context.Context, userID, caseID string) error {
	return qc.taskRepo.MarkCommentTasksRead(ctx, caseID, userID)
}

// CreateReminder schedules a reminder task for the caller.
func (qc *QAController) CreateReminder(
	ctx context.Context,
	userID string,
	caseID string,
	request TaskRequest,
) (*Task, error) {
	log := qc.log.Function("CreateReminder")

	if request.Date.IsZero() {
		return nil, log.Error("reminder date is required", "caseID", caseID)
	}

	task := &Task{
		Type:        TaskTypeReminder,
		UserID:      userID,
		CaseID:      caseID,
		Date:        request.Date,
		Description: request.Description,
	}
	if err := qc.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (qc *QAController) GetTasks(ctx context.Context, userID string) ([]*Task, error) {
	return qc.taskRepo.GetForUser(ctx, userID)
}

func (qc *QAController) CountUnreadTasks(ctx context.Context, userID string) (int64, error) {
	return qc.taskRepo.CountUnread(ctx, userID)
}

// MarkTaskRead only lets users clear their own tasks.
func (qc *QAController) MarkTaskRead(ctx context.Context, userID, taskID string) error {
	log := qc.log.Function("MarkTaskRead")

	task, err := qc.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return log.Error("task belongs to another user", "taskID", taskID, "userID", userID)
	}
	return qc.taskRepo.MarkRead(ctx, taskID)
}
