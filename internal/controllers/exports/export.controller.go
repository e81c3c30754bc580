package exportController

import (
	"context"
	"fmt"
	"io"

	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"
	"monitor/internal/services"
	"monitor/internal/utils"
)

type ExportController struct {
	caseRepo repositories.CaseRepository
	log      logger.Logger
}

func New(caseRepo repositories.CaseRepository) *ExportController {
	return &ExportController{
		caseRepo: caseRepo,
		log:      logger.New("ExportController"),
	}
}

// WriteCaseExport streams every case with the full tracking projection.
func (ec *ExportController) WriteCaseExport(ctx context.Context, w io.Writer) error {
	log := ec.log.Function("WriteCaseExport")

	cases, err := ec.loadWithDetails(ctx)
	if err != nil {
		return err
	}
	if err := utils.WriteCaseCSV(w, caseColumns, cases); err != nil {
		return log.Err("failed to write case export", err)
	}
	return nil
}

// WriteEqualityBodyExport streams closed cases destined for the given
// enforcement body in that body's intake format.
func (ec *ExportController) WriteEqualityBodyExport(ctx context.Context, w io.Writer, enforcementBody string) error {
	log := ec.log.Function("WriteEqualityBodyExport")

	cases, err := ec.loadWithDetails(ctx)
	if err != nil {
		return err
	}

	var selected []*Case
	for _, c := range cases {
		if c.EnforcementBody != enforcementBody {
			continue
		}
		if c.CaseCompleted != CaseCompletedSend && c.SentToEnforcementBodySentDate == nil {
			continue
		}
		selected = append(selected, c)
	}

	if err := utils.WriteCaseCSV(w, equalityBodyColumns, selected); err != nil {
		return log.Err("failed to write equality body export", err, "enforcementBody", enforcementBody)
	}
	return nil
}

// WriteFeedbackSurveyExport streams the contact projection used for the
// post-audit feedback survey mailout.
func (ec *ExportController) WriteFeedbackSurveyExport(ctx context.Context, w io.Writer) error {
	log := ec.log.Function("WriteFeedbackSurveyExport")

	cases, err := ec.loadWithDetails(ctx)
	if err != nil {
		return err
	}

	var selected []*Case
	for _, c := range cases {
		if c.CompletedDate != nil || c.Status == StatusComplete {
			selected = append(selected, c)
		}
	}

	if err := utils.WriteCaseCSV(w, feedbackSurveyColumns, selected); err != nil {
		return log.Err("failed to write feedback survey export", err)
	}
	return nil
}

// loadWithDetails re-reads each case through the preloading path so
// exports see contacts and audit aggregates.
func (ec *ExportController) loadWithDetails(ctx context.Context) ([]*Case, error) {
	cases, err := ec.caseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	detailed := make([]*Case, 0, len(cases))
	for _, c := range cases {
		full, err := ec.caseRepo.GetByID(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		detailed = append(detailed, full)
	}
	return detailed, nil
}

var caseColumns = []utils.ExportColumn{
	{Header: "Case number", Value: func(c *Case) string { return fmt.Sprintf("%d", c.CaseNumber) }},
	{Header: "Case identifier", Value: func(c *Case) string { return c.CaseIdentifier() }},
	{Header: "Organisation name", Value: func(c *Case) string { return c.OrganisationName }},
	{Header: "Home page URL", Value: func(c *Case) string { return c.HomePageURL }},
	{Header: "Domain", Value: func(c *Case) string { return c.Domain }},
	{Header: "Enforcement body", Value: func(c *Case) string { return c.EnforcementBody }},
	{Header: "Public sector body location", Value: func(c *Case) string { return c.PsbLocation }},
	{Header: "Is it a complaint?", Value: func(c *Case) string { return c.IsComplaint }},
	{Header: "Status", Value: func(c *Case) string { return c.Status }},
	{Header: "Auditor", Value: func(c *Case) string {
		if c.Auditor == nil {
			return ""
		}
		return c.Auditor.FullName()
	}},
	{Header: "QA auditor", Value: func(c *Case) string {
		if c.Reviewer == nil {
			return ""
		}
		return c.Reviewer.FullName()
	}},
	{Header: "Contact details", Value: func(c *Case) string { return utils.ContactBlock(c.Contacts) }},
	{Header: "Date of test", Value: func(c *Case) string {
		if c.Audit == nil {
			return ""
		}
		return c.Audit.DateOfTest.Format(utils.ExportDateFormat)
	}},
	{Header: "Report sent on", Value: func(c *Case) string { return utils.FormatExportDate(c.ReportSentDate) }},
	{Header: "Report acknowledged", Value: func(c *Case) string { return utils.FormatExportDate(c.ReportAcknowledgedDate) }},
	{Header: "12-week update requested", Value: func(c *Case) string { return utils.FormatExportDate(c.TwelveWeekUpdateRequestedDate) }},
	{Header: "Retest date", Value: func(c *Case) string {
		if c.Audit == nil {
			return ""
		}
		return utils.FormatExportDate(c.Audit.RetestDate)
	}},
	{Header: "Website issues", Value: func(c *Case) string { return services.OverviewIssuesWebsite(c.Audit) }},
	{Header: "Statement issues", Value: func(c *Case) string { return services.OverviewIssuesStatement(c.Audit) }},
	{Header: "Case completed", Value: func(c *Case) string { return c.CaseCompleted }},
	{Header: "Enforcement recommendation", Value: func(c *Case) string { return c.RecommendationForEnforcement }},
	{Header: "Enforcement recommendation notes", Value: func(c *Case) string { return c.RecommendationNotes }},
	{Header: "Sent to enforcement body", Value: func(c *Case) string { return utils.FormatExportDate(c.SentToEnforcementBodySentDate) }},
	{Header: "Completed date", Value: func(c *Case) string { return utils.FormatExportDate(c.CompletedDate) }},
}

var equalityBodyColumns = []utils.ExportColumn{
	{Header: "Equality body", Value: func(c *Case) string { return c.EnforcementBody }},
	{Header: "Test type", Value: func(c *Case) string { return c.TestType }},
	{Header: "Case number", Value: func(c *Case) string { return c.CaseIdentifier() }},
	{Header: "Organisation", Value: func(c *Case) string { return c.OrganisationName }},
	{Header: "Website URL", Value: func(c *Case) string { return c.HomePageURL }},
	{Header: "Is it a complaint?", Value: func(c *Case) string { return c.IsComplaint }},
	{Header: "Contact details", Value: func(c *Case) string { return utils.ContactBlock(c.Contacts) }},
	{Header: "Report sent on", Value: func(c *Case) string { return utils.FormatExportDate(c.ReportSentDate) }},
	{Header: "Enforcement recommendation", Value: func(c *Case) string { return c.RecommendationForEnforcement }},
	{Header: "Enforcement recommendation notes", Value: func(c *Case) string { return c.RecommendationNotes }},
	{Header: "Percentage of issues fixed", Value: func(c *Case) string {
		if c.Audit == nil {
			return services.PercentageNA
		}
		return services.PercentageWebsiteIssuesFixed(c.Audit.CheckResults)
	}},
	{Header: "Retested website", Value: func(c *Case) string {
		if c.Audit == nil {
			return ""
		}
		return utils.FormatExportDate(c.Audit.RetestDate)
	}},
	{Header: "Sent to enforcement body", Value: func(c *Case) string { return utils.FormatExportDate(c.SentToEnforcementBodySentDate) }},
}

var feedbackSurveyColumns = []utils.ExportColumn{
	{Header: "Case number", Value: func(c *Case) string { return c.CaseIdentifier() }},
	{Header: "Organisation name", Value: func(c *Case) string { return c.OrganisationName }},
	{Header: "Contact details", Value: func(c *Case) string { return utils.ContactBlock(c.Contacts) }},
	{Header: "Completed date", Value: func(c *Case) string { return utils.FormatExportDate(c.CompletedDate) }},
}
