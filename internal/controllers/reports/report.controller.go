package reportController

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"

	"github.com/google/uuid"
)

// ErrReportNotReady is returned when publish is requested before the
// report has passed review and been approved.
var ErrReportNotReady = errors.New("report has not been reviewed and approved")

type ReportController struct {
	platformRepo       repositories.PlatformRepository
	caseRepo           repositories.CaseRepository
	auditRepo          repositories.AuditRepository
	transactionService *services.TransactionService
	eventLogger        *services.EventLogger
	log                logger.Logger
}

func New(
	platformRepo repositories.PlatformRepository,
	caseRepo repositories.CaseRepository,
	auditRepo repositories.AuditRepository,
	transactionService *services.TransactionService,
	eventLogger *services.EventLogger,
) *ReportController {
	return &ReportController{
		platformRepo:       platformRepo,
		caseRepo:           caseRepo,
		auditRepo:          auditRepo,
		transactionService: transactionService,
		eventLogger:        eventLogger,
		log:                logger.New("ReportController"),
	}
}

// Create opens the draft report; its existence moves the case to
// report_in_progress on the next save.
func (rc *ReportController) Create(ctx context.Context, actorID, caseID string) (*Report, error) {
	log := rc.log.Function("Create")

	var report *Report
	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if existing, err := rc.platformRepo.GetReport(txCtx, caseID); err == nil {
			report = existing
			return nil
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		report = &Report{CaseID: caseID}
		if err := rc.platformRepo.CreateReport(txCtx, report); err != nil {
			return err
		}
		if err := rc.eventLogger.LogCreate(txCtx, actorID, &caseID, report); err != nil {
			return err
		}
		rc.caseRepo.InvalidateCache(caseID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("created draft report", "caseID", caseID)
	return report, nil
}

func (rc *ReportController) Get(ctx context.Context, caseID string) (*Report, error) {
	return rc.platformRepo.GetReport(ctx, caseID)
}

func (rc *ReportController) UpdateNotes(
	ctx context.Context,
	actorID string,
	caseID string,
	expectedVersion int,
	notes string,
) (*Report, error) {
	log := rc.log.Function("UpdateNotes")

	var updated *Report
	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		report, err := rc.platformRepo.GetReport(txCtx, caseID)
		if err != nil {
			return err
		}
		if report.Version != expectedVersion {
			return repositories.ErrStaleVersion
		}
		old := *report

		report.NotesForEditor = notes
		changed, err := rc.eventLogger.LogUpdate(txCtx, actorID, &caseID, &old, report)
		if err != nil {
			return err
		}
		if changed {
			report.Version = expectedVersion + 1
			if err := rc.platformRepo.UpdateReport(txCtx, report, expectedVersion); err != nil {
				return log.Err("failed to save report", err, "caseID", caseID)
			}
		}
		updated = report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Publish renders the report and stores it as the next numbered copy,
// flipping latest_published to the new row. Publication is gated on
// the QA decision; republish after data changes also clears the
// republish banner.
func (rc *ReportController) Publish(ctx context.Context, actorID, caseID string) (*S3Report, error) {
	log := rc.log.Function("Publish")

	var published *S3Report
	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		c, err := rc.caseRepo.GetForUpdate(txCtx, caseID)
		if err != nil {
			return err
		}
		if c.ReportReviewStatus != ReviewStatusDone || c.ReportApprovedStatus != ApprovedStatusApproved {
			return ErrReportNotReady
		}

		var audit *Audit
		if c.Audit != nil {
			audit, err = rc.auditRepo.GetByID(txCtx, c.Audit.ID)
			if err != nil {
				return err
			}
		}

		existing, err := rc.platformRepo.GetS3Reports(txCtx, caseID)
		if err != nil {
			return err
		}
		version := 1
		if len(existing) > 0 {
			version = existing[0].Version + 1
		}

		if err := rc.platformRepo.ClearLatestPublished(txCtx, caseID); err != nil {
			return err
		}

		guid := uuid.NewString()
		published = &S3Report{
			CaseID:          caseID,
			Version:         version,
			GUID:            guid,
			S3Directory:     fmt.Sprintf("%d/%s", c.CaseNumber, guid),
			HTML:            renderReportHTML(c, audit),
			LatestPublished: true,
			PublishedAt:     time.Now(),
		}
		if err := rc.platformRepo.CreateS3Report(txCtx, published); err != nil {
			return err
		}

		if audit != nil && audit.PublishedReportDataUpdatedTime != nil {
			audit.PublishedReportDataUpdatedTime = nil
			auditVersion := audit.Version
			audit.Version = auditVersion + 1
			if err := rc.auditRepo.Update(txCtx, audit, auditVersion); err != nil {
				return err
			}
		}

		if err := rc.eventLogger.LogCreate(txCtx, actorID, &caseID, published); err != nil {
			return err
		}
		rc.caseRepo.InvalidateCache(caseID)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReportNotReady) {
			return nil, err
		}
		return nil, log.Err("failed to publish report", err, "caseID", caseID)
	}

	log.Info("published report", "caseID", caseID, "version", published.Version)
	return published, nil
}

func (rc *ReportController) GetPublished(ctx context.Context, caseID string) ([]*S3Report, error) {
	return rc.platformRepo.GetS3Reports(ctx, caseID)
}

func (rc *ReportController) GetLatestPublished(ctx context.Context, caseID string) (*S3Report, error) {
	return rc.platformRepo.GetLatestPublished(ctx, caseID)
}

// renderReportHTML produces the stored copy. The layout mirrors the
// published report page: header, website issue summary and statement
// summary.
func renderReportHTML(c *Case, audit *Audit) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	fmt.Fprintf(&b, "<title>Accessibility report: %s</title>\n", c.OrganisationName)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>Accessibility report for %s</h1>\n", c.OrganisationName)
	fmt.Fprintf(&b, "<p>Case %s</p>\n", c.CaseIdentifier())
	fmt.Fprintf(&b, "<p>Website: %s</p>\n", c.HomePageURL)
	if audit != nil {
		fmt.Fprintf(&b, "<p>Date of test: %s</p>\n", audit.DateOfTest.Format("2 January 2006"))
		fmt.Fprintf(&b, "<p>Website issues: %s</p>\n", services.OverviewIssuesWebsite(audit))
		fmt.Fprintf(&b, "<p>Statement issues: %s</p>\n", services.OverviewIssuesStatement(audit))
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
