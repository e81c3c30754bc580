package correspondenceController

import (
	"context"

	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"
)

type CorrespondenceController struct {
	correspondenceRepo repositories.CorrespondenceRepository
	caseRepo           repositories.CaseRepository
	auditRepo          repositories.AuditRepository
	transactionService *services.TransactionService
	eventLogger        *services.EventLogger
	log                logger.Logger
}

func New(
	correspondenceRepo repositories.CorrespondenceRepository,
	caseRepo repositories.CaseRepository,
	auditRepo repositories.AuditRepository,
	transactionService *services.TransactionService,
	eventLogger *services.EventLogger,
) *CorrespondenceController {
	return &CorrespondenceController{
		correspondenceRepo: correspondenceRepo,
		caseRepo:           caseRepo,
		auditRepo:          auditRepo,
		transactionService: transactionService,
		eventLogger:        eventLogger,
		log:                logger.New("CorrespondenceController"),
	}
}

// AddContact creates a contact; marking it preferred demotes the
// previous preferred contact.
func (cc *CorrespondenceController) AddContact(
	ctx context.Context,
	actorID string,
	caseID string,
	request ContactRequest,
) (*Contact, error) {
	log := cc.log.Function("AddContact")

	if request.Name == "" && request.Email == "" {
		return nil, log.Error("contact needs a name or an email", "caseID", caseID)
	}

	preferred := request.Preferred
	if preferred == "" {
		preferred = BoolUnknown
	}

	contact := &Contact{
		CaseID:    caseID,
		Name:      request.Name,
		JobTitle:  request.JobTitle,
		Email:     request.Email,
		Preferred: preferred,
	}

	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if preferred == BoolYes {
			if err := cc.demotePreferred(txCtx, actorID, caseID, ""); err != nil {
				return err
			}
		}
		if err := cc.correspondenceRepo.CreateContact(txCtx, contact); err != nil {
			return err
		}
		if err := cc.eventLogger.LogCreate(txCtx, actorID, &caseID, contact); err != nil {
			return err
		}
		cc.caseRepo.InvalidateCache(caseID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (cc *CorrespondenceController) demotePreferred(ctx context.Context, actorID, caseID, keepID string) error {
	contacts, err := cc.correspondenceRepo.GetContacts(ctx, caseID)
	if err != nil {
		return err
	}
	for _, contact := range contacts {
		if contact.ID == keepID || contact.Preferred != BoolYes {
			continue
		}
		old := *contact
		contact.Preferred = BoolNo
		if _, err := cc.eventLogger.LogUpdate(ctx, actorID, &caseID, &old, contact); err != nil {
			return err
		}
		version := contact.Version
		contact.Version = version + 1
		if err := cc.correspondenceRepo.UpdateContact(ctx, contact, version); err != nil {
			return err
		}
	}
	return nil
}

func (cc *CorrespondenceController) UpdateContact(
	ctx context.Context,
	actorID string,
	contactID string,
	request ContactRequest,
) (*Contact, error) {
	log := cc.log.Function("UpdateContact")

	var updated *Contact
	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		contact, err := cc.correspondenceRepo.GetContact(txCtx, contactID)
		if err != nil {
			return err
		}
		if contact.Version != request.Version {
			return repositories.ErrStaleVersion
		}
		old := *contact

		contact.Name = request.Name
		contact.JobTitle = request.JobTitle
		contact.Email = request.Email
		if request.Preferred != "" {
			contact.Preferred = request.Preferred
		}

		if contact.Preferred == BoolYes {
			if err := cc.demotePreferred(txCtx, actorID, contact.CaseID, contact.ID); err != nil {
				return err
			}
		}

		changed, err := cc.eventLogger.LogUpdate(txCtx, actorID, &contact.CaseID, &old, contact)
		if err != nil {
			return err
		}
		if changed {
			contact.Version = request.Version + 1
			if err := cc.correspondenceRepo.UpdateContact(txCtx, contact, request.Version); err != nil {
				return log.Err("failed to save contact", err, "contactID", contactID)
			}
			cc.caseRepo.InvalidateCache(contact.CaseID)
		}
		updated = contact
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveContact soft-deletes; event history keeps the record.
func (cc *CorrespondenceController) RemoveContact(ctx context.Context, actorID, contactID string, expectedVersion int) error {
	log := cc.log.Function("RemoveContact")

	return cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		contact, err := cc.correspondenceRepo.GetContact(txCtx, contactID)
		if err != nil {
			return err
		}
		if contact.Version != expectedVersion {
			return repositories.ErrStaleVersion
		}
		old := *contact

		contact.IsDeleted = true
		if _, err := cc.eventLogger.LogUpdate(txCtx, actorID, &contact.CaseID, &old, contact); err != nil {
			return err
		}
		contact.Version = expectedVersion + 1
		if err := cc.correspondenceRepo.UpdateContact(txCtx, contact, expectedVersion); err != nil {
			return log.Err("failed to remove contact", err, "contactID", contactID)
		}
		cc.caseRepo.InvalidateCache(contact.CaseID)
		return nil
	})
}

func (cc *CorrespondenceController) GetContacts(ctx context.Context, caseID string) ([]*Contact, error) {
	return cc.correspondenceRepo.GetContacts(ctx, caseID)
}

// AddZendeskTicket records a support ticket. The repository derives the
// within-case number from the agent URL when it carries one.
func (cc *CorrespondenceController) AddZendeskTicket(
	ctx context.Context,
	actorID string,
	caseID string,
	request ZendeskTicketRequest,
) (*ZendeskTicket, error) {
	ticket := &ZendeskTicket{
		CaseID:  caseID,
		URL:     request.URL,
		Summary: request.Summary,
	}

	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := cc.correspondenceRepo.CreateZendeskTicket(txCtx, ticket); err != nil {
			return err
		}
		return cc.eventLogger.LogCreate(txCtx, actorID, &caseID, ticket)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (cc *CorrespondenceController) GetZendeskTickets(ctx context.Context, caseID string) ([]*ZendeskTicket, error) {
	return cc.correspondenceRepo.GetZendeskTickets(ctx, caseID)
}

func (cc *CorrespondenceController) AddEqualityBodyCorrespondence(
	ctx context.Context,
	actorID string,
	caseID string,
	request EqualityBodyCorrespondenceRequest,
) (*EqualityBodyCorrespondence, error) {
	itemType := request.Type
	if itemType == "" {
		itemType = EBCorrespondenceQuestion
	}
	status := request.Status
	if status == "" {
		status = EBCorrespondenceUnresolved
	}

	item := &EqualityBodyCorrespondence{
		CaseID:       caseID,
		Type:         itemType,
		Message:      request.Message,
		Notes:        request.Notes,
		Status:       status,
		ZendeskURL:   request.ZendeskURL,
		DateReceived: request.DateReceived,
	}

	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := cc.correspondenceRepo.CreateEqualityBodyCorrespondence(txCtx, item); err != nil {
			return err
		}
		return cc.eventLogger.LogCreate(txCtx, actorID, &caseID, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (cc *CorrespondenceController) UpdateEqualityBodyCorrespondence(
	ctx context.Context,
	actorID string,
	itemID string,
	request EqualityBodyCorrespondenceRequest,
) (*EqualityBodyCorrespondence, error) {
	log := cc.log.Function("UpdateEqualityBodyCorrespondence")

	var updated *EqualityBodyCorrespondence
	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		item, err := cc.correspondenceRepo.GetEqualityBodyCorrespondence(txCtx, itemID)
		if err != nil {
			return err
		}
		if item.Version != request.Version {
			return repositories.ErrStaleVersion
		}
		old := *item

		if request.Type != "" {
			item.Type = request.Type
		}
		if request.Status != "" {
			item.Status = request.Status
		}
		item.Message = request.Message
		item.Notes = request.Notes
		item.ZendeskURL = request.ZendeskURL
		item.DateReceived = request.DateReceived

		changed, err := cc.eventLogger.LogUpdate(txCtx, actorID, &item.CaseID, &old, item)
		if err != nil {
			return err
		}
		if changed {
			item.Version = request.Version + 1
			if err := cc.correspondenceRepo.UpdateEqualityBodyCorrespondence(txCtx, item, request.Version); err != nil {
				return log.Err("failed to save correspondence", err, "id", itemID)
			}
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (cc *CorrespondenceController) GetEqualityBodyCorrespondence(ctx context.Context, caseID string) ([]*EqualityBodyCorrespondence, error) {
	return cc.correspondenceRepo.GetEqualityBodyCorrespondenceForCase(ctx, caseID)
}

// CreateRetest opens an equality-body retest. The first one also seeds
// the hidden anchor retest (id 0) from the 12-week results so retest
// comparisons have a baseline; the anchor never counts as a retest.
func (cc *CorrespondenceController) CreateRetest(
	ctx context.Context,
	actorID string,
	caseID string,
	request RetestRequest,
) (*Retest, error) {
	log := cc.log.Function("CreateRetest")

	var retest *Retest
	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		count, err := cc.correspondenceRepo.CountRetests(txCtx, caseID)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := cc.seedAnchorRetest(txCtx, caseID); err != nil {
				return err
			}
		}

		retest = &Retest{
			CaseID:       caseID,
			DateOfRetest: request.DateOfRetest,
		}
		if request.RetestNotes != nil {
			retest.RetestNotes = *request.RetestNotes
		}
		if request.RetestComplianceState != nil && *request.RetestComplianceState != "" {
			retest.RetestComplianceState = *request.RetestComplianceState
		} else {
			retest.RetestComplianceState = RetestComplianceNotKnown
		}
		if request.ComplianceNotes != nil {
			retest.ComplianceNotes = *request.ComplianceNotes
		}

		if err := cc.correspondenceRepo.CreateRetest(txCtx, retest); err != nil {
			return err
		}
		if err := cc.seedRetestPages(txCtx, caseID, retest); err != nil {
			return err
		}
		return cc.eventLogger.LogCreate(txCtx, actorID, &caseID, retest)
	})
	if err != nil {
		return nil, err
	}

	log.Info("created retest", "caseID", caseID, "idWithinCase", retest.IDWithinCase)
	return retest, nil
}

// seedAnchorRetest copies the 12-week retest outcome into the reserved
// id 0 row.
func (cc *CorrespondenceController) seedAnchorRetest(ctx context.Context, caseID string) error {
	audit, err := cc.auditRepo.GetByCaseID(ctx, caseID)
	if err != nil {
		return err
	}

	anchor := &Retest{
		CaseID:                caseID,
		DateOfRetest:          audit.RetestDate,
		RetestNotes:           audit.RetestNotes,
		RetestComplianceState: RetestComplianceNotKnown,
	}
	if err := cc.correspondenceRepo.CreateAnchorRetest(ctx, anchor); err != nil {
		return err
	}
	return cc.seedRetestPages(ctx, caseID, anchor)
}

// seedRetestPages creates one retest page per audited page that carries
// unresolved issues, each with one row per failing check. The anchor's
// rows copy the 12-week retest states; later retests start not_retested.
func (cc *CorrespondenceController) seedRetestPages(ctx context.Context, caseID string, retest *Retest) error {
	audit, err := cc.auditRepo.GetByCaseID(ctx, caseID)
	if err != nil {
		return err
	}
	pages, err := cc.auditRepo.GetPages(ctx, audit.ID)
	if err != nil {
		return err
	}

	for _, page := range pages {
		results, err := cc.auditRepo.GetPageCheckResults(ctx, audit.ID, page.ID)
		if err != nil {
			return err
		}

		var failing []*CheckResult
		for _, result := range results {
			if result.CheckResultState == CheckResultError && result.RetestState != RetestFixed {
				failing = append(failing, result)
			}
		}
		if len(failing) == 0 {
			continue
		}

		retestPage := RetestPage{
			RetestID: retest.ID,
			PageID:   page.ID,
		}
		if err := cc.correspondenceRepo.CreateRetestPages(ctx, []RetestPage{retestPage}); err != nil {
			return err
		}
		// Re-read for the generated page ID.
		saved, err := cc.correspondenceRepo.GetRetest(ctx, retest.ID)
		if err != nil {
			return err
		}
		var pageRowID string
		for _, rp := range saved.Pages {
			if rp.PageID == page.ID {
				pageRowID = rp.ID
			}
		}

		rows := make([]RetestCheckResult, 0, len(failing))
		for _, result := range failing {
			row := RetestCheckResult{
				RetestID:      retest.ID,
				RetestPageID:  pageRowID,
				CheckResultID: result.ID,
			}
			if retest.IsAnchor() {
				row.RetestState = result.RetestState
				row.RetestNotes = result.RetestNotes
			}
			rows = append(rows, row)
		}
		if err := cc.correspondenceRepo.CreateRetestCheckResults(ctx, rows); err != nil {
			return err
		}
	}
	return nil
}

func (cc *CorrespondenceController) GetRetest(ctx context.Context, retestID string) (*Retest, error) {
	return cc.correspondenceRepo.GetRetest(ctx, retestID)
}

func (cc *CorrespondenceController) GetRetests(ctx context.Context, caseID string) ([]*Retest, error) {
	return cc.correspondenceRepo.GetRetests(ctx, caseID)
}

func (cc *CorrespondenceController) UpdateRetest(
	ctx context.Context,
	actorID string,
	retestID string,
	request RetestRequest,
) (*Retest, error) {
	log := cc.log.Function("UpdateRetest")

	var updated *Retest
	err := cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		retest, err := cc.correspondenceRepo.GetRetest(txCtx, retestID)
		if err != nil {
			return err
		}
		if retest.Version != request.Version {
			return repositories.ErrStaleVersion
		}
		old := *retest
		old.Pages = nil

		if request.DateOfRetest != nil {
			retest.DateOfRetest = request.DateOfRetest
		}
		if request.RetestNotes != nil {
			retest.RetestNotes = *request.RetestNotes
		}
		if request.RetestComplianceState != nil && *request.RetestComplianceState != "" {
			retest.RetestComplianceState = *request.RetestComplianceState
		}
		if request.ComplianceNotes != nil {
			retest.ComplianceNotes = *request.ComplianceNotes
		}

		changed, err := cc.eventLogger.LogUpdate(txCtx, actorID, &retest.CaseID, &old, retest)
		if err != nil {
			return err
		}
		if changed {
			retest.Version = request.Version + 1
			if err := cc.correspondenceRepo.UpdateRetest(txCtx, retest, request.Version); err != nil {
				return log.Err("failed to save retest", err, "retestID", retestID)
			}
		}
		updated = retest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateRetestCheckResult records one check outcome within a retest.
func (cc *CorrespondenceController) UpdateRetestCheckResult(
	ctx context.Context,
	actorID string,
	retestID string,
	resultID string,
	state, notes string,
) error {
	log := cc.log.Function("UpdateRetestCheckResult")

	return cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		retest, err := cc.correspondenceRepo.GetRetest(txCtx, retestID)
		if err != nil {
			return err
		}

		for _, page := range retest.Pages {
			for i := range page.CheckResults {
				result := page.CheckResults[i]
				if result.ID != resultID {
					continue
				}
				old := result
				result.RetestState = state
				result.RetestNotes = notes
				if _, err := cc.eventLogger.LogUpdate(txCtx, actorID, &retest.CaseID, &old, &result); err != nil {
					return err
				}
				return cc.correspondenceRepo.SaveRetestCheckResult(txCtx, &result)
			}
		}
		return log.Error("retest check result not found", "retestID", retestID, "resultID", resultID)
	})
}
