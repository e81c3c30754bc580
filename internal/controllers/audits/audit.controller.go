package auditController

import (
	"context"
	"time"

	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"
)

type AuditController struct {
	auditRepo          repositories.AuditRepository
	caseRepo           repositories.CaseRepository
	catalogueRepo      repositories.CatalogueRepository
	platformRepo       repositories.PlatformRepository
	transactionService *services.TransactionService
	eventLogger        *services.EventLogger
	log                logger.Logger
}

func New(
	auditRepo repositories.AuditRepository,
	caseRepo repositories.CaseRepository,
	catalogueRepo repositories.CatalogueRepository,
	platformRepo repositories.PlatformRepository,
	transactionService *services.TransactionService,
	eventLogger *services.EventLogger,
) *AuditController {
	return &AuditController{
		auditRepo:          auditRepo,
		caseRepo:           caseRepo,
		catalogueRepo:      catalogueRepo,
		platformRepo:       platformRepo,
		transactionService: transactionService,
		eventLogger:        eventLogger,
		log:                logger.New("AuditController"),
	}
}

// StartTest bootstraps the audit subtree: the audit row, the five
// mandatory pages and one statement check result per catalogue entry
// valid at the date of test.
func (ac *AuditController) StartTest(
	ctx context.Context,
	actorID string,
	caseID string,
	dateOfTest time.Time,
) (*Audit, error) {
	log := ac.log.Function("StartTest")

	var audit *Audit
	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		c, err := ac.caseRepo.GetForUpdate(txCtx, caseID)
		if err != nil {
			return err
		}
		if existing, err := ac.auditRepo.GetByCaseID(txCtx, caseID); err == nil {
			audit = existing
			return log.Error("case already has a test", "caseID", caseID, "auditID", existing.ID)
		}

		audit = &Audit{
			CaseID:     caseID,
			DateOfTest: dateOfTest,
		}
		if err := ac.auditRepo.Create(txCtx, audit); err != nil {
			return err
		}

		pages := make([]Page, 0, len(MandatoryPageTypes))
		for _, pageType := range MandatoryPageTypes {
			page := Page{
				AuditID:  audit.ID,
				PageType: pageType,
			}
			if pageType == PageTypeHome {
				page.URL = c.HomePageURL
			}
			pages = append(pages, page)
		}
		if err := ac.auditRepo.CreatePages(txCtx, pages); err != nil {
			return err
		}

		checks, err := ac.catalogueRepo.GetStatementChecksValidAt(txCtx, dateOfTest)
		if err != nil {
			return err
		}
		results := make([]StatementCheckResult, 0, len(checks))
		for _, check := range checks {
			checkID := check.ID
			results = append(results, StatementCheckResult{
				AuditID:          audit.ID,
				StatementCheckID: &checkID,
				Type:             check.Type,
			})
		}
		if err := ac.auditRepo.CreateStatementCheckResults(txCtx, results); err != nil {
			return err
		}

		if err := ac.eventLogger.LogCreate(txCtx, actorID, &caseID, audit); err != nil {
			return err
		}

		// The case moves to test_in_progress through its own save path;
		// here we only refresh the cached aggregate.
		ac.caseRepo.InvalidateCache(caseID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("started test", "caseID", caseID, "auditID", audit.ID)
	return audit, nil
}

func (ac *AuditController) Get(ctx context.Context, auditID string) (*Audit, error) {
	return ac.auditRepo.GetByID(ctx, auditID)
}

func (ac *AuditController) GetForCase(ctx context.Context, caseID string) (*Audit, error) {
	audit, err := ac.auditRepo.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return ac.auditRepo.GetByID(ctx, audit.ID)
}

// UpdateMetadata writes the audit-level fields (notes, dates). Any
// change after publication raises the republish flag.
func (ac *AuditController) UpdateMetadata(
	ctx context.Context,
	actorID string,
	auditID string,
	expectedVersion int,
	mutate func(a *Audit) error,
) (*Audit, error) {
	log := ac.log.Function("UpdateMetadata")

	var updated *Audit
	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}
		if audit.Version != expectedVersion {
			return repositories.ErrStaleVersion
		}
		old := *audit
		old.Pages = nil
		old.CheckResults = nil
		old.StatementCheckResults = nil
		old.StatementPages = nil

		if err := mutate(audit); err != nil {
			return err
		}

		changed, err := ac.eventLogger.LogUpdate(txCtx, actorID, &audit.CaseID, &old, audit)
		if err != nil {
			return err
		}
		if changed {
			if err := ac.flagPublishedDataChanged(txCtx, audit); err != nil {
				return err
			}
			audit.Version = expectedVersion + 1
			if err := ac.auditRepo.Update(txCtx, audit, expectedVersion); err != nil {
				return log.Err("failed to save audit", err, "auditID", auditID)
			}
			ac.caseRepo.InvalidateCache(audit.CaseID)
		}

		updated = audit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// flagPublishedDataChanged stamps the republish banner time when report
// data changes after the report has been published.
func (ac *AuditController) flagPublishedDataChanged(ctx context.Context, audit *Audit) error {
	if audit.PublishedReportDataUpdatedTime != nil {
		return nil
	}
	if _, err := ac.platformRepo.GetLatestPublished(ctx, audit.CaseID); err != nil {
		if err == repositories.ErrNotFound {
			return nil
		}
		return err
	}
	now := time.Now()
	audit.PublishedReportDataUpdatedTime = &now
	return nil
}

// ClearRepublishFlag is called after a successful republish.
func (ac *AuditController) ClearRepublishFlag(ctx context.Context, actorID, auditID string) error {
	log := ac.log.Function("ClearRepublishFlag")

	return ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}
		if audit.PublishedReportDataUpdatedTime == nil {
			return nil
		}
		audit.PublishedReportDataUpdatedTime = nil
		version := audit.Version
		audit.Version = version + 1
		if err := ac.auditRepo.Update(txCtx, audit, version); err != nil {
			return log.Err("failed to clear republish flag", err, "auditID", auditID)
		}
		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
}

// AddPage appends an extra page to the audit.
func (ac *AuditController) AddPage(
	ctx context.Context,
	actorID string,
	auditID string,
	pageType, name, pageURL string,
) (*Page, error) {
	log := ac.log.Function("AddPage")

	if pageType == PageTypeAll {
		return nil, log.Error("cannot add the all-pages pseudo page", "auditID", auditID)
	}

	var page *Page
	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}

		page = &Page{
			AuditID:  auditID,
			PageType: pageType,
			Name:     name,
			URL:      pageURL,
		}
		if err := ac.auditRepo.CreatePages(txCtx, []Page{*page}); err != nil {
			return err
		}
		// CreatePages works on a copy; re-read for the generated ID.
		pages, err := ac.auditRepo.GetPages(txCtx, auditID)
		if err != nil {
			return err
		}
		page = pages[len(pages)-1]

		if err := ac.eventLogger.LogCreate(txCtx, actorID, &audit.CaseID, page); err != nil {
			return err
		}
		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// RemovePage soft-deletes an extra page. Mandatory pages are marked not
// found instead, so they stay on the form.
func (ac *AuditController) RemovePage(ctx context.Context, actorID, pageID string, expectedVersion int) error {
	log := ac.log.Function("RemovePage")

	return ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		page, err := ac.auditRepo.GetPage(txCtx, pageID)
		if err != nil {
			return err
		}
		if page.Version != expectedVersion {
			return repositories.ErrStaleVersion
		}

		if page.IsMandatory() {
			page.NotFound = BoolYes
		} else {
			page.IsDeleted = true
		}

		page.Version = expectedVersion + 1
		if err := ac.auditRepo.UpdatePage(txCtx, page, expectedVersion); err != nil {
			return log.Err("failed to remove page", err, "pageID", pageID)
		}

		audit, err := ac.auditRepo.GetByID(txCtx, page.AuditID)
		if err != nil {
			return err
		}
		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
}

// UpdatePageChecks is the page check form save. Check result rows are
// created lazily for every WCAG definition valid at the date of test,
// then the submitted states are applied. The all-pages pseudo target
// ("all" in place of a page ID) has no row of its own; it copies each
// submitted state and note onto every HTML page, overwriting whatever
// those rows held before.
func (ac *AuditController) UpdatePageChecks(
	ctx context.Context,
	actorID string,
	auditID string,
	pageID string,
	request PageChecksRequest,
) error {
	log := ac.log.Function("UpdatePageChecks")

	if pageID == PageTypeAll {
		return ac.propagateAllPages(ctx, actorID, auditID, request)
	}

	return ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}
		page, err := ac.auditRepo.GetPage(txCtx, pageID)
		if err != nil {
			return err
		}
		if page.Version != request.Version {
			return repositories.ErrStaleVersion
		}

		if err := ac.ensureCheckResults(txCtx, audit, page); err != nil {
			return err
		}
		if err := ac.applyCheckUpdates(txCtx, actorID, audit, page, request.Results); err != nil {
			return err
		}

		page.CompleteDate = request.CompleteDate
		page.NoErrorsDate = request.NoErrorsDate
		page.Version = request.Version + 1
		if err := ac.auditRepo.UpdatePage(txCtx, page, request.Version); err != nil {
			return log.Err("failed to save page", err, "pageID", pageID)
		}

		if err := ac.touchAuditForPublish(txCtx, audit); err != nil {
			return err
		}
		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
}

// propagateAllPages applies the submitted states to every HTML page.
// The version check runs against the audit since there is no page row
// to check.
func (ac *AuditController) propagateAllPages(
	ctx context.Context,
	actorID string,
	auditID string,
	request PageChecksRequest,
) error {
	return ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}
		if audit.Version != request.Version {
			return repositories.ErrStaleVersion
		}

		pages, err := ac.auditRepo.GetPages(txCtx, auditID)
		if err != nil {
			return err
		}
		for _, page := range pages {
			if !page.IsHTML() {
				continue
			}
			if err := ac.ensureCheckResults(txCtx, audit, page); err != nil {
				return err
			}
			if err := ac.applyCheckUpdates(txCtx, actorID, audit, page, request.Results); err != nil {
				return err
			}
		}

		if err := ac.touchAuditForPublish(txCtx, audit); err != nil {
			return err
		}
		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
}

// ensureCheckResults lazily creates the page's check result rows for
// each definition whose validity window contains the date of test.
func (ac *AuditController) ensureCheckResults(ctx context.Context, audit *Audit, page *Page) error {
	existing, err := ac.auditRepo.GetPageCheckResults(ctx, audit.ID, page.ID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, result := range existing {
		have[result.WcagDefinitionID] = true
	}

	definitions, err := ac.catalogueRepo.GetWcagDefinitionsValidAt(ctx, audit.DateOfTest)
	if err != nil {
		return err
	}

	var missing []CheckResult
	for _, definition := range definitions {
		if have[definition.ID] {
			continue
		}
		missing = append(missing, CheckResult{
			AuditID:          audit.ID,
			PageID:           page.ID,
			WcagDefinitionID: definition.ID,
			Type:             definition.Type,
		})
	}
	return ac.auditRepo.CreateCheckResults(ctx, missing)
}

// applyCheckUpdates writes the submitted states onto the page's rows.
// Unchanged rows are skipped so repeating a save stays a no-op.
func (ac *AuditController) applyCheckUpdates(
	ctx context.Context,
	actorID string,
	audit *Audit,
	page *Page,
	updates []CheckResultUpdate,
) error {
	results, err := ac.auditRepo.GetPageCheckResults(ctx, audit.ID, page.ID)
	if err != nil {
		return err
	}
	byDefinition := make(map[string]*CheckResult, len(results))
	for _, result := range results {
		byDefinition[result.WcagDefinitionID] = result
	}

	for _, update := range updates {
		result, ok := byDefinition[update.WcagDefinitionID]
		if !ok {
			continue
		}
		if result.CheckResultState == update.CheckResultState && result.Notes == update.Notes {
			continue
		}

		old := *result
		result.CheckResultState = update.CheckResultState
		result.Notes = update.Notes

		changed, err := ac.eventLogger.LogUpdate(ctx, actorID, &audit.CaseID, &old, result)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		version := result.Version
		result.Version = version + 1
		if err := ac.auditRepo.UpdateCheckResult(ctx, result, version); err != nil {
			return err
		}
	}
	return nil
}

// touchAuditForPublish raises the republish flag when check edits land
// after publication.
func (ac *AuditController) touchAuditForPublish(ctx context.Context, audit *Audit) error {
	before := audit.PublishedReportDataUpdatedTime
	if err := ac.flagPublishedDataChanged(ctx, audit); err != nil {
		return err
	}
	if before == audit.PublishedReportDataUpdatedTime {
		return nil
	}
	version := audit.Version
	audit.Version = version + 1
	return ac.auditRepo.Update(ctx, audit, version)
}

// UpdateStatementChecks saves the statement check form. The version
// check runs against the audit, as for the all-pages save.
func (ac *AuditController) UpdateStatementChecks(
	ctx context.Context,
	actorID string,
	auditID string,
	request StatementChecksRequest,
) error {
	log := ac.log.Function("UpdateStatementChecks")

	return ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}
		if audit.Version != request.Version {
			return repositories.ErrStaleVersion
		}

		for _, update := range request.Results {
			result, err := ac.auditRepo.GetStatementCheckResult(txCtx, update.StatementCheckResultID)
			if err != nil {
				return err
			}
			old := *result

			if update.CheckResultState != "" {
				result.CheckResultState = update.CheckResultState
			}
			if update.RetestState != "" {
				result.RetestState = update.RetestState
			}
			result.ReportComment = update.ReportComment
			result.AuditorNotes = update.AuditorNotes
			result.RetestComment = update.RetestComment

			changed, err := ac.eventLogger.LogUpdate(txCtx, actorID, &audit.CaseID, &old, result)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			version := result.Version
			result.Version = version + 1
			if err := ac.auditRepo.UpdateStatementCheckResult(txCtx, result, version); err != nil {
				return log.Err("failed to save statement check result", err, "id", result.ID)
			}
		}

		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
}

// AddCustomStatementIssue records an issue outside the catalogue.
func (ac *AuditController) AddCustomStatementIssue(
	ctx context.Context,
	actorID string,
	auditID string,
	reportComment string,
) (*StatementCheckResult, error) {
	var result *StatementCheckResult
	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}

		result = &StatementCheckResult{
			AuditID:          auditID,
			Type:             StatementCheckCustom,
			CheckResultState: StatementResultNo,
			ReportComment:    reportComment,
		}
		if err := ac.auditRepo.CreateStatementCheckResults(txCtx, []StatementCheckResult{*result}); err != nil {
			return err
		}
		results, err := ac.auditRepo.GetStatementCheckResults(txCtx, auditID)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Type == StatementCheckCustom && r.ReportComment == reportComment {
				result = r
			}
		}

		if err := ac.eventLogger.LogCreate(txCtx, actorID, &audit.CaseID, result); err != nil {
			return err
		}
		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddStatementPage records a URL at which the statement was found.
func (ac *AuditController) AddStatementPage(
	ctx context.Context,
	actorID string,
	auditID string,
	pageURL, backupURL, stage string,
) (*StatementPage, error) {
	if stage == "" {
		stage = StatementPageStageInitial
	}

	var page *StatementPage
	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}

		page = &StatementPage{
			AuditID:    auditID,
			URL:        pageURL,
			BackupURL:  backupURL,
			AddedStage: stage,
		}
		if err := ac.auditRepo.CreateStatementPage(txCtx, page); err != nil {
			return err
		}
		if err := ac.eventLogger.LogCreate(txCtx, actorID, &audit.CaseID, page); err != nil {
			return err
		}
		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// StartRetest stamps the 12-week retest date; the status engine reads
// it as reviewing_changes.
func (ac *AuditController) StartRetest(
	ctx context.Context,
	actorID string,
	auditID string,
	expectedVersion int,
	retestDate time.Time,
) (*Audit, error) {
	return ac.UpdateMetadata(ctx, actorID, auditID, expectedVersion, func(a *Audit) error {
		a.RetestDate = &retestDate
		return nil
	})
}

// UpdatePageRetest saves the 12-week retest form for one page. Only
// rows that failed on the initial test carry a retest outcome; marking
// the page missing also marks it not found.
func (ac *AuditController) UpdatePageRetest(
	ctx context.Context,
	actorID string,
	auditID string,
	pageID string,
	request PageRetestRequest,
) error {
	log := ac.log.Function("UpdatePageRetest")

	return ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		audit, err := ac.auditRepo.GetByID(txCtx, auditID)
		if err != nil {
			return err
		}
		page, err := ac.auditRepo.GetPage(txCtx, pageID)
		if err != nil {
			return err
		}
		if page.Version != request.Version {
			return repositories.ErrStaleVersion
		}

		for _, update := range request.Results {
			result, err := ac.auditRepo.GetCheckResult(txCtx, update.CheckResultID)
			if err != nil {
				return err
			}
			if result.CheckResultState != CheckResultError {
				continue
			}
			old := *result

			result.RetestState = update.RetestState
			result.RetestNotes = update.RetestNotes

			changed, err := ac.eventLogger.LogUpdate(txCtx, actorID, &audit.CaseID, &old, result)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			version := result.Version
			result.Version = version + 1
			if err := ac.auditRepo.UpdateCheckResult(txCtx, result, version); err != nil {
				return err
			}
		}

		page.RetestCompleteDate = request.RetestCompleteDate
		page.RetestPageMissingDate = request.RetestPageMissingDate
		if request.RetestPageMissingDate != nil {
			page.NotFound = BoolYes
		}
		if request.RetestNotes != nil {
			page.RetestNotes = *request.RetestNotes
		}
		page.Version = request.Version + 1
		if err := ac.auditRepo.UpdatePage(txCtx, page, request.Version); err != nil {
			return log.Err("failed to save page retest", err, "pageID", pageID)
		}

		ac.caseRepo.InvalidateCache(audit.CaseID)
		return nil
	})
}
