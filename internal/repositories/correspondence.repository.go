package repositories

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/services"

	"gorm.io/gorm"
)

// Zendesk agent-ticket URLs carry the ticket number used as the
// id_within_case override.
var zendeskAgentTicketPattern = regexp.MustCompile(`/agent/tickets/(\d+)`)

// ZendeskTicketID extracts the ticket number from an agent-tickets URL,
// or 0 when the URL does not match.
func ZendeskTicketID(url string) int {
	matches := zendeskAgentTicketPattern.FindStringSubmatch(url)
	if len(matches) != 2 {
		return 0
	}
	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return id
}

type CorrespondenceRepository interface {
	CreateContact(ctx context.Context, contact *Contact) error
	GetContact(ctx context.Context, id string) (*Contact, error)
	GetContacts(ctx context.Context, caseID string) ([]*Contact, error)
	UpdateContact(ctx context.Context, contact *Contact, expectedVersion int) error

	CreateZendeskTicket(ctx context.Context, ticket *ZendeskTicket) error
	GetZendeskTickets(ctx context.Context, caseID string) ([]*ZendeskTicket, error)

	CreateEqualityBodyCorrespondence(ctx context.Context, item *EqualityBodyCorrespondence) error
	GetEqualityBodyCorrespondence(ctx context.Context, id string) (*EqualityBodyCorrespondence, error)
	GetEqualityBodyCorrespondenceForCase(ctx context.Context, caseID string) ([]*EqualityBodyCorrespondence, error)
	UpdateEqualityBodyCorrespondence(ctx context.Context, item *EqualityBodyCorrespondence, expectedVersion int) error

	CreateRetest(ctx context.Context, retest *Retest) error
	CreateAnchorRetest(ctx context.Context, retest *Retest) error
	GetRetest(ctx context.Context, id string) (*Retest, error)
	GetRetests(ctx context.Context, caseID string) ([]*Retest, error)
	CountRetests(ctx context.Context, caseID string) (int64, error)
	UpdateRetest(ctx context.Context, retest *Retest, expectedVersion int) error
	CreateRetestPages(ctx context.Context, pages []RetestPage) error
	CreateRetestCheckResults(ctx context.Context, results []RetestCheckResult) error
	SaveRetestCheckResult(ctx context.Context, result *RetestCheckResult) error
}

type correspondenceRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCorrespondence(db database.DB) CorrespondenceRepository {
	return &correspondenceRepository{
		db:  db,
		log: logger.New("correspondenceRepository"),
	}
}

func (r *correspondenceRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// nextIDWithinCase allocates max+1 for the model's rows on the case.
// Callers hold the case-create transaction, serialising allocation.
func (r *correspondenceRepository) nextIDWithinCase(ctx context.Context, model any, caseID string) (int, error) {
	var maxID int
	err := r.getDB(ctx).Model(model).
		Where("case_id = ?", caseID).
		Select("COALESCE(MAX(id_within_case), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

func (r *correspondenceRepository) CreateContact(ctx context.Context, contact *Contact) error {
	log := r.log.Function("CreateContact")

	if err := r.getDB(ctx).Create(contact).Error; err != nil {
		return log.Err("failed to create contact", err, "caseID", contact.CaseID)
	}
	return nil
}

func (r *correspondenceRepository) GetContact(ctx context.Context, id string) (*Contact, error) {
	log := r.log.Function("GetContact")

	var contact Contact
	if err := r.getDB(ctx).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get contact", err, "id", id)
	}
	return &contact, nil
}

// GetContacts orders most-recent first with preferred contacts lifted
// to the top.
func (r *correspondenceRepository) GetContacts(ctx context.Context, caseID string) ([]*Contact, error) {
	log := r.log.Function("GetContacts")

	var contacts []*Contact
	if err := r.getDB(ctx).
		Where("case_id = ? AND is_deleted = ?", caseID, false).
		Order("CASE WHEN preferred = 'yes' THEN 0 ELSE 1 END, created_at DESC").
		Find(&contacts).Error; err != nil {
		return nil, log.Err("failed to get contacts", err, "caseID", caseID)
	}
	return contacts, nil
}

func (r *correspondenceRepository) UpdateContact(ctx context.Context, contact *Contact, expectedVersion int) error {
	log := r.log.Function("UpdateContact")

	result := r.getDB(ctx).Model(&Contact{}).
		Where("id = ? AND version = ?", contact.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "case_id").
		Updates(contact)
	if result.Error != nil {
		return log.Err("failed to update contact", result.Error, "id", contact.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// CreateZendeskTicket allocates id_within_case, overridden by the
// ticket number for agent-tickets URLs.
func (r *correspondenceRepository) CreateZendeskTicket(ctx context.Context, ticket *ZendeskTicket) error {
	log := r.log.Function("CreateZendeskTicket")

	if id := ZendeskTicketID(ticket.URL); id > 0 {
		ticket.IDWithinCase = id
	} else {
		next, err := r.nextIDWithinCase(ctx, &ZendeskTicket{}, ticket.CaseID)
		if err != nil {
			return log.Err("failed to allocate ticket id", err, "caseID", ticket.CaseID)
		}
		ticket.IDWithinCase = next
	}

	if err := r.getDB(ctx).Create(ticket).Error; err != nil {
		return log.Err("failed to create zendesk ticket", err, "caseID", ticket.CaseID)
	}
	return nil
}

func (r *correspondenceRepository) GetZendeskTickets(ctx context.Context, caseID string) ([]*ZendeskTicket, error) {
	log := r.log.Function("GetZendeskTickets")

	var tickets []*ZendeskTicket
	if err := r.getDB(ctx).
		Where("case_id = ? AND is_deleted = ?", caseID, false).
		Order("id_within_case").
		Find(&tickets).Error; err != nil {
		return nil, log.Err("failed to get zendesk tickets", err, "caseID", caseID)
	}
	return tickets, nil
}

func (r *correspondenceRepository) CreateEqualityBodyCorrespondence(ctx context.Context, item *EqualityBodyCorrespondence) error {
	log := r.log.Function("CreateEqualityBodyCorrespondence")

	next, err := r.nextIDWithinCase(ctx, &EqualityBodyCorrespondence{}, item.CaseID)
	if err != nil {
		return log.Err("failed to allocate correspondence id", err, "caseID", item.CaseID)
	}
	item.IDWithinCase = next

	if err := r.getDB(ctx).Create(item).Error; err != nil {
		return log.Err("failed to create equality body correspondence", err, "caseID", item.CaseID)
	}
	return nil
}

func (r *correspondenceRepository) GetEqualityBodyCorrespondence(ctx context.Context, id string) (*EqualityBodyCorrespondence, error) {
	log := r.log.Function("GetEqualityBodyCorrespondence")

	var item EqualityBodyCorrespondence
	if err := r.getDB(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get equality body correspondence", err, "id", id)
	}
	return &item, nil
}

func (r *correspondenceRepository) GetEqualityBodyCorrespondenceForCase(ctx context.Context, caseID string) ([]*EqualityBodyCorrespondence, error) {
	log := r.log.Function("GetEqualityBodyCorrespondenceForCase")

	var items []*EqualityBodyCorrespondence
	if err := r.getDB(ctx).
		Where("case_id = ? AND is_deleted = ?", caseID, false).
		Order("id_within_case").
		Find(&items).Error; err != nil {
		return nil, log.Err("failed to get equality body correspondence", err, "caseID", caseID)
	}
	return items, nil
}

func (r *correspondenceRepository) UpdateEqualityBodyCorrespondence(ctx context.Context, item *EqualityBodyCorrespondence, expectedVersion int) error {
	log := r.log.Function("UpdateEqualityBodyCorrespondence")

	result := r.getDB(ctx).Model(&EqualityBodyCorrespondence{}).
		Where("id = ? AND version = ?", item.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "case_id").
		Updates(item)
	if result.Error != nil {
		return log.Err("failed to update equality body correspondence", result.Error, "id", item.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *correspondenceRepository) CreateRetest(ctx context.Context, retest *Retest) error {
	log := r.log.Function("CreateRetest")

	next, err := r.nextIDWithinCase(ctx, &Retest{}, retest.CaseID)
	if err != nil {
		return log.Err("failed to allocate retest id", err, "caseID", retest.CaseID)
	}
	retest.IDWithinCase = next

	if err := r.getDB(ctx).Create(retest).Error; err != nil {
		return log.Err("failed to create retest", err, "caseID", retest.CaseID)
	}
	return nil
}

// CreateAnchorRetest inserts the reserved id 0 row seeded from the
// 12-week results.
func (r *correspondenceRepository) CreateAnchorRetest(ctx context.Context, retest *Retest) error {
	log := r.log.Function("CreateAnchorRetest")

	retest.IDWithinCase = 0
	if err := r.getDB(ctx).Create(retest).Error; err != nil {
		return log.Err("failed to create anchor retest", err, "caseID", retest.CaseID)
	}
	return nil
}

func (r *correspondenceRepository) GetRetest(ctx context.Context, id string) (*Retest, error) {
	log := r.log.Function("GetRetest")

	var retest Retest
	if err := r.getDB(ctx).
		Preload("Pages").
		Preload("Pages.CheckResults").
		First(&retest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get retest", err, "id", id)
	}
	return &retest, nil
}

func (r *correspondenceRepository) GetRetests(ctx context.Context, caseID string) ([]*Retest, error) {
	log := r.log.Function("GetRetests")

	var retests []*Retest
	if err := r.getDB(ctx).
		Where("case_id = ? AND is_deleted = ?", caseID, false).
		Order("id_within_case").
		Find(&retests).Error; err != nil {
		return nil, log.Err("failed to get retests", err, "caseID", caseID)
	}
	return retests, nil
}

// CountRetests excludes the anchor row.
func (r *correspondenceRepository) CountRetests(ctx context.Context, caseID string) (int64, error) {
	log := r.log.Function("CountRetests")

	var count int64
	if err := r.getDB(ctx).Model(&Retest{}).
		Where("case_id = ? AND is_deleted = ? AND id_within_case > 0", caseID, false).
		Count(&count).Error; err != nil {
		return 0, log.Err("failed to count retests", err, "caseID", caseID)
	}
	return count, nil
}

func (r *correspondenceRepository) UpdateRetest(ctx context.Context, retest *Retest, expectedVersion int) error {
	log := r.log.Function("UpdateRetest")

	result := r.getDB(ctx).Model(&Retest{}).
		Where("id = ? AND version = ?", retest.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "case_id", "id_within_case").
		Updates(retest)
	if result.Error != nil {
		return log.Err("failed to update retest", result.Error, "id", retest.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *correspondenceRepository) CreateRetestPages(ctx context.Context, pages []RetestPage) error {
	log := r.log.Function("CreateRetestPages")

	if len(pages) == 0 {
		return nil
	}
	if err := r.getDB(ctx).Create(&pages).Error; err != nil {
		return log.Err("failed to create retest pages", err, "count", len(pages))
	}
	return nil
}

func (r *correspondenceRepository) CreateRetestCheckResults(ctx context.Context, results []RetestCheckResult) error {
	log := r.log.Function("CreateRetestCheckResults")

	if len(results) == 0 {
		return nil
	}
	if err := r.getDB(ctx).Create(&results).Error; err != nil {
		return log.Err("failed to create retest check results", err, "count", len(results))
	}
	return nil
}

func (r *correspondenceRepository) SaveRetestCheckResult(ctx context.Context, result *RetestCheckResult) error {
	log := r.log.Function("SaveRetestCheckResult")

	if err := r.getDB(ctx).Save(result).Error; err != nil {
		return log.Err("failed to save retest check result", err, "id", result.ID)
	}
	return nil
}
