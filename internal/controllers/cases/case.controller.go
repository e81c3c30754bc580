package caseController

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"
)

// caseURLPattern matches the case-number segment of a case URL, used to
// validate the previous-case link on create.
var caseURLPattern = regexp.MustCompile(`/cases/(\d+)`)

type CaseController struct {
	caseRepo           repositories.CaseRepository
	userRepo           repositories.UserRepository
	auditRepo          repositories.AuditRepository
	platformRepo       repositories.PlatformRepository
	transactionService *services.TransactionService
	eventLogger        *services.EventLogger
	log                logger.Logger
}

func New(
	caseRepo repositories.CaseRepository,
	userRepo repositories.UserRepository,
	auditRepo repositories.AuditRepository,
	platformRepo repositories.PlatformRepository,
	transactionService *services.TransactionService,
	eventLogger *services.EventLogger,
) *CaseController {
	return &CaseController{
		caseRepo:           caseRepo,
		userRepo:           userRepo,
		auditRepo:          auditRepo,
		platformRepo:       platformRepo,
		transactionService: transactionService,
		eventLogger:        eventLogger,
		log:                logger.New("CaseController"),
	}
}

// CreateResult carries either the created case or, when duplicate
// candidates were found and not overridden, the candidates for the
// confirmation screen.
type CreateResult struct {
	Case       *Case
	Duplicates []*Case
}

// Create validates the request, surfaces duplicate candidates unless
// the caller has confirmed them, and inserts the case with its empty
// compliance row.
func (cc *CaseController) Create(
	ctx context.Context,
	actorID string,
	request CreateCaseRequest,
	allowDuplicates bool,
) (CreateResult, error) {
	log := cc.log.Function("Create")

	if request.OrganisationName == "" {
		return CreateResult{}, log.Error("organisation name is required")
	}
	if request.HomePageURL != "" && DomainOf(request.HomePageURL) == "" {
		return CreateResult{}, log.Error("home page URL must be absolute", "url", request.HomePageURL)
	}
	if request.PreviousCaseURL != "" {
		if err := cc.validatePreviousCaseURL(ctx, request.PreviousCaseURL); err != nil {
			return CreateResult{}, err
		}
	}

	if !allowDuplicates {
		duplicates, err := cc.caseRepo.FindDuplicates(ctx, request.HomePageURL, request.OrganisationName)
		if err != nil {
			return CreateResult{}, err
		}
		if len(duplicates) > 0 {
			return CreateResult{Duplicates: duplicates}, nil
		}
	}

	testType := request.TestType
	if testType == "" {
		testType = TestTypeSimplified
	}
	psbLocation := request.PsbLocation
	if psbLocation == "" {
		psbLocation = PsbLocationUnknown
	}
	isComplaint := request.IsComplaint
	if isComplaint == "" {
		isComplaint = BoolNo
	}

	c := &Case{
		OrganisationName: request.OrganisationName,
		HomePageURL:      request.HomePageURL,
		EnforcementBody:  request.EnforcementBody,
		PsbLocation:      psbLocation,
		IsComplaint:      isComplaint,
		TestType:         testType,
		PreviousCaseURL:  request.PreviousCaseURL,
		Status:           StatusUnassigned,
	}

	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := cc.caseRepo.Create(txCtx, c); err != nil {
			return err
		}

		compliance := &CaseCompliance{CaseID: c.ID}
		if err := cc.caseRepo.CreateCompliance(txCtx, compliance); err != nil {
			return err
		}

		return cc.eventLogger.LogCreate(txCtx, actorID, &c.ID, c)
	})
	if err != nil {
		return CreateResult{}, err
	}

	log.Info("created case", "caseID", c.ID, "caseNumber", c.CaseNumber)
	return CreateResult{Case: c}, nil
}

// validatePreviousCaseURL requires the link to name a case number that
// exists.
func (cc *CaseController) validatePreviousCaseURL(ctx context.Context, previousURL string) error {
	log := cc.log.Function("validatePreviousCaseURL")

	matches := caseURLPattern.FindStringSubmatch(previousURL)
	if len(matches) != 2 {
		return log.Error("previous case URL is not a case link", "url", previousURL)
	}
	number, err := strconv.Atoi(matches[1])
	if err != nil {
		return log.Error("previous case URL is not a case link", "url", previousURL)
	}
	if _, err := cc.caseRepo.GetByCaseNumber(ctx, number); err != nil {
		return log.Err("previous case not found", err, "caseNumber", number)
	}
	return nil
}

func (cc *CaseController) Get(ctx context.Context, caseID string) (*Case, error) {
	return cc.caseRepo.GetByID(ctx, caseID)
}

func (cc *CaseController) GetByNumber(ctx context.Context, caseNumber int) (*Case, error) {
	return cc.caseRepo.GetByCaseNumber(ctx, caseNumber)
}

func (cc *CaseController) List(ctx context.Context) ([]*Case, error) {
	return cc.caseRepo.GetAll(ctx)
}

func (cc *CaseController) ListByStatus(ctx context.Context, status string) ([]*Case, error) {
	return cc.caseRepo.GetByStatus(ctx, status)
}

func (cc *CaseController) ListByAuditor(ctx context.Context, auditorID string) ([]*Case, error) {
	return cc.caseRepo.GetByAuditor(ctx, auditorID)
}

// update is the shared write path: lock the row, snapshot it, apply the
// mutation, rerun the status engine, diff for the event log and
// compare-and-swap on the version the form was rendered from.
func (cc *CaseController) update(
	ctx context.Context,
	actorID string,
	caseID string,
	expectedVersion int,
	mutate func(txCtx context.Context, c *Case) error,
) (*Case, error) {
	log := cc.log.Function("update")

	var updated *Case
	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		c, err := cc.caseRepo.GetForUpdate(txCtx, caseID)
		if err != nil {
			return err
		}
		if c.Version != expectedVersion {
			return repositories.ErrStaleVersion
		}
		old := *c

		if err := mutate(txCtx, c); err != nil {
			return err
		}

		c.Status = services.ComputeStatus(c)

		changed, err := cc.eventLogger.LogUpdate(txCtx, actorID, &c.ID, &old, c)
		if err != nil {
			return err
		}
		if !changed {
			updated = c
			return nil
		}

		if old.Status != c.Status {
			history := &CaseHistory{
				CaseID:    c.ID,
				CreatedBy: &actorID,
				EventType: CaseHistoryStatusChange,
				Value:     services.DiffEntry{Old: old.Status, New: c.Status}.Render(),
			}
			if err := cc.caseRepo.AddHistory(txCtx, history); err != nil {
				return err
			}
		}

		c.Version = expectedVersion + 1
		if err := cc.caseRepo.Update(txCtx, c, expectedVersion); err != nil {
			return log.Err("failed to save case", err, "caseID", caseID)
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (cc *CaseController) UpdateDetails(
	ctx context.Context,
	actorID string,
	caseID string,
	request UpdateCaseDetailsRequest,
) (*Case, error) {
	log := cc.log.Function("UpdateDetails")

	if request.AuditorID != nil && *request.AuditorID != "" {
		if _, err := cc.userRepo.GetByID(ctx, *request.AuditorID); err != nil {
			return nil, log.Err("auditor not found", err, "auditorID", *request.AuditorID)
		}
	}

	return cc.update(ctx, actorID, caseID, request.Version, func(txCtx context.Context, c *Case) error {
		// These three fields appear in the published report.
		republish := false
		if request.OrganisationName != nil && *request.OrganisationName != c.OrganisationName {
			republish = true
		}
		if request.HomePageURL != nil && *request.HomePageURL != c.HomePageURL {
			republish = true
		}
		if request.EnforcementBody != nil && *request.EnforcementBody != c.EnforcementBody {
			republish = true
		}

		if request.OrganisationName != nil {
			c.OrganisationName = *request.OrganisationName
		}
		if request.HomePageURL != nil {
			c.HomePageURL = *request.HomePageURL
			c.Domain = DomainOf(c.HomePageURL)
		}
		if request.EnforcementBody != nil {
			c.EnforcementBody = *request.EnforcementBody
		}
		if request.PsbLocation != nil {
			c.PsbLocation = *request.PsbLocation
		}
		if request.IsComplaint != nil {
			c.IsComplaint = *request.IsComplaint
		}
		if request.PreviousCaseURL != nil {
			c.PreviousCaseURL = *request.PreviousCaseURL
		}
		if request.AuditorID != nil {
			if *request.AuditorID == "" {
				c.AuditorID = nil
			} else {
				c.AuditorID = request.AuditorID
			}
		}
		c.CaseDetailsCompleteDate = request.CompleteDate

		if republish {
			return cc.flagPublishedDataChanged(txCtx, c.ID)
		}
		return nil
	})
}

// flagPublishedDataChanged stamps the audit's republish banner time when
// fields that appear in the published report change after publication.
func (cc *CaseController) flagPublishedDataChanged(ctx context.Context, caseID string) error {
	audit, err := cc.auditRepo.GetByCaseID(ctx, caseID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil
		}
		return err
	}
	if audit.PublishedReportDataUpdatedTime != nil {
		return nil
	}
	if _, err := cc.platformRepo.GetLatestPublished(ctx, caseID); err != nil {
		if err == repositories.ErrNotFound {
			return nil
		}
		return err
	}
	now := time.Now()
	audit.PublishedReportDataUpdatedTime = &now
	version := audit.Version
	audit.Version = version + 1
	return cc.auditRepo.Update(ctx, audit, version)
}

// UpdateReportCorrespondence records the report-sent track. Changing
// the sent date recomputes all three follow-up due dates; otherwise
// only unset ones are filled.
func (cc *CaseController) UpdateReportCorrespondence(
	ctx context.Context,
	actorID string,
	caseID string,
	request ReportCorrespondenceRequest,
) (*Case, error) {
	return cc.update(ctx, actorID, caseID, request.Version, func(txCtx context.Context, c *Case) error {
		sentDateChanged := !equalDates(c.ReportSentDate, request.ReportSentDate)

		c.ReportSentDate = request.ReportSentDate
		c.ReportAcknowledgedDate = request.ReportAcknowledgedDate
		c.ReportFollowupWeek1SentDate = request.ReportFollowupWeek1SentDate
		c.ReportFollowupWeek4SentDate = request.ReportFollowupWeek4SentDate
		c.ReportFollowupWeek12SentDate = request.ReportFollowupWeek12SentDate
		c.ReportCorrespondenceCompleteDate = request.CompleteDate

		services.PopulateReportFollowupDueDates(c, sentDateChanged)
		return nil
	})
}

func (cc *CaseController) UpdateTwelveWeekCorrespondence(
	ctx context.Context,
	actorID string,
	caseID string,
	request TwelveWeekCorrespondenceRequest,
) (*Case, error) {
	return cc.update(ctx, actorID, caseID, request.Version, func(txCtx context.Context, c *Case) error {
		c.TwelveWeekUpdateRequestedDate = request.TwelveWeekUpdateRequestedDate
		c.TwelveWeek1WeekChaserSentDate = request.TwelveWeek1WeekChaserSentDate
		c.TwelveWeekCorrespondenceAcknowledgedDate = request.TwelveWeekCorrespondenceAcknowledgedDate
		c.TwelveWeekCorrespondenceCompleteDate = request.CompleteDate

		services.PopulateTwelveWeekChaserDueDate(c)
		return nil
	})
}

func (cc *CaseController) UpdateNoContact(
	ctx context.Context,
	actorID string,
	caseID string,
	request NoContactRequest,
) (*Case, error) {
	return cc.update(ctx, actorID, caseID, request.Version, func(txCtx context.Context, c *Case) error {
		if request.EnableCorrespondenceProcess != nil {
			c.EnableCorrespondenceProcess = *request.EnableCorrespondenceProcess
		}
		if request.NoPsbContact != nil {
			c.NoPsbContact = *request.NoPsbContact
		}
		c.SevenDayNoContactEmailSentDate = request.SevenDayNoContactEmailSentDate
		c.NoContactOneWeekChaserSentDate = request.NoContactOneWeekChaserSentDate
		c.NoContactFourWeekChaserSentDate = request.NoContactFourWeekChaserSentDate

		services.PopulateNoContactDueDates(c)
		return nil
	})
}

// UpdateReviewChanges marks the 12-week retest review stage. The
// completion date is what moves the case on from reviewing_changes.
func (cc *CaseController) UpdateReviewChanges(
	ctx context.Context,
	actorID string,
	caseID string,
	request ReviewChangesRequest,
) (*Case, error) {
	return cc.update(ctx, actorID, caseID, request.Version, func(txCtx context.Context, c *Case) error {
		c.ReviewChangesCompleteDate = request.CompleteDate
		return nil
	})
}

func (cc *CaseController) UpdateClose(
	ctx context.Context,
	actorID string,
	caseID string,
	request CaseCloseRequest,
) (*Case, error) {
	return cc.update(ctx, actorID, caseID, request.Version, func(txCtx context.Context, c *Case) error {
		if request.IsReadyForFinalDecision != nil {
			c.IsReadyForFinalDecision = *request.IsReadyForFinalDecision
		}
		if request.CaseCompleted != nil {
			c.CaseCompleted = *request.CaseCompleted
		}
		if request.RecommendationForEnforcement != nil {
			c.RecommendationForEnforcement = *request.RecommendationForEnforcement
		}
		if request.RecommendationNotes != nil {
			c.RecommendationNotes = *request.RecommendationNotes
		}
		c.ComplianceEmailSentDate = request.ComplianceEmailSentDate
		c.SentToEnforcementBodySentDate = request.SentToEnforcementBodySentDate
		if request.EnforcementBodyPursuing != nil {
			c.EnforcementBodyPursuing = *request.EnforcementBodyPursuing
		}
		c.CaseCloseCompleteDate = request.CompleteDate
		return nil
	})
}

// UpdateCompliance writes the compliance decisions, which version
// independently of the case row.
func (cc *CaseController) UpdateCompliance(
	ctx context.Context,
	actorID string,
	caseID string,
	request ComplianceRequest,
) (*CaseCompliance, error) {
	log := cc.log.Function("UpdateCompliance")

	var updated *CaseCompliance
	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		compliance, err := cc.caseRepo.GetCompliance(txCtx, caseID)
		if err != nil {
			return err
		}
		if compliance.Version != request.Version {
			return repositories.ErrStaleVersion
		}
		old := *compliance

		setIf := func(target *string, value *string) {
			if value != nil {
				*target = *value
			}
		}
		setIf(&compliance.WebsiteComplianceStateInitial, request.WebsiteComplianceStateInitial)
		setIf(&compliance.WebsiteComplianceNotesInitial, request.WebsiteComplianceNotesInitial)
		setIf(&compliance.WebsiteComplianceState12Week, request.WebsiteComplianceState12Week)
		setIf(&compliance.WebsiteComplianceNotes12Week, request.WebsiteComplianceNotes12Week)
		setIf(&compliance.StatementComplianceStateInitial, request.StatementComplianceStateInitial)
		setIf(&compliance.StatementComplianceNotesInitial, request.StatementComplianceNotesInitial)
		setIf(&compliance.StatementComplianceState12Week, request.StatementComplianceState12Week)
		setIf(&compliance.StatementComplianceNotes12Week, request.StatementComplianceNotes12Week)

		changed, err := cc.eventLogger.LogUpdate(txCtx, actorID, &caseID, &old, compliance)
		if err != nil {
			return err
		}
		if changed {
			compliance.Version = request.Version + 1
			if err := cc.caseRepo.UpdateCompliance(txCtx, compliance, request.Version); err != nil {
				return log.Err("failed to save compliance", err, "caseID", caseID)
			}
			// Compliance decisions appear in the published report.
			if err := cc.flagPublishedDataChanged(txCtx, caseID); err != nil {
				return err
			}
		}

		updated = compliance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Deactivate parks the case; the status engine pins it to deactivated
// until the date is cleared again.
func (cc *CaseController) Deactivate(
	ctx context.Context,
	actorID string,
	caseID string,
	expectedVersion int,
	note string,
) (*Case, error) {
	return cc.update(ctx, actorID, caseID, expectedVersion, func(txCtx context.Context, c *Case) error {
		now := time.Now()
		c.DeactivateDate = &now
		c.DeactivateNote = note
		return nil
	})
}

func (cc *CaseController) Reactivate(
	ctx context.Context,
	actorID string,
	caseID string,
	expectedVersion int,
) (*Case, error) {
	return cc.update(ctx, actorID, caseID, expectedVersion, func(txCtx context.Context, c *Case) error {
		c.DeactivateDate = nil
		c.DeactivateNote = ""
		return nil
	})
}

// AddNote appends a free-text entry to the user-visible case history.
func (cc *CaseController) AddNote(ctx context.Context, actorID, caseID, note string) error {
	log := cc.log.Function("AddNote")

	if note == "" {
		return log.Error("note is empty", "caseID", caseID)
	}

	history := &CaseHistory{
		CaseID:    caseID,
		CreatedBy: &actorID,
		EventType: CaseHistoryNote,
		Value:     note,
	}
	return cc.caseRepo.AddHistory(ctx, history)
}

func (cc *CaseController) GetHistory(ctx context.Context, caseID string) ([]*CaseHistory, error) {
	return cc.caseRepo.GetHistory(ctx, caseID)
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
