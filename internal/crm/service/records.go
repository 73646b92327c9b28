package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/store"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
	"github.com/aussiebroadwan/litecrm/pkg/slogx"
)

// DefaultListLimit caps list results per request.
const DefaultListLimit = 500

// RecordService owns the CRM record types. Every operation is scoped to the
// session's active workspace: reads filter by it, writes stamp it, and a
// write that matches no row in the workspace reports store.ErrNotFound even
// when the id exists elsewhere.
type RecordService struct {
	Store store.Store
}

// stamp fills in identity, ownership, and timestamps for a create, or
// refreshes updated_at for an update. Returns true when this is a create.
func stampRecord(session domain.Session, id *idx.ID, userID *idx.ID, workspaceID *idx.ID, createdAt, updatedAt *time.Time) bool {
	now := time.Now().UTC()
	*workspaceID = session.WorkspaceID
	*updatedAt = now
	if id.IsZero() {
		*id = idx.New()
		*userID = session.UserID
		*createdAt = now
		return true
	}
	return false
}

// validateRelated checks that a task or note reference points at a real
// record in the session's workspace. An empty reference is fine.
func (s *RecordService) validateRelated(ctx context.Context, session domain.Session, ref domain.RelatedRef) error {
	if ref.Kind == domain.RelatedNone {
		if !ref.ID.IsZero() {
			return fmt.Errorf("%w: related_type", ErrValidation)
		}
		return nil
	}
	if ref.ID.IsZero() {
		return fmt.Errorf("%w: related_id", ErrValidation)
	}

	var err error
	switch ref.Kind {
	case domain.RelatedCompany:
		_, err = s.Store.Companies().GetCompanyByID(ctx, session.WorkspaceID, ref.ID)
	case domain.RelatedContact:
		_, err = s.Store.Contacts().GetContactByID(ctx, session.WorkspaceID, ref.ID)
	case domain.RelatedDeal:
		_, err = s.Store.Deals().GetDealByID(ctx, session.WorkspaceID, ref.ID)
	default:
		return fmt.Errorf("%w: related_type", ErrValidation)
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: related_id", ErrValidation)
	}
	return err
}

// checkCompanyRef verifies an optional company reference lands in the
// session's workspace.
func (s *RecordService) checkCompanyRef(ctx context.Context, session domain.Session, id idx.ID) error {
	if id.IsZero() {
		return nil
	}
	_, err := s.Store.Companies().GetCompanyByID(ctx, session.WorkspaceID, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: company_id", ErrValidation)
	}
	return err
}

// checkContactRef verifies an optional contact reference lands in the
// session's workspace.
func (s *RecordService) checkContactRef(ctx context.Context, session domain.Session, id idx.ID) error {
	if id.IsZero() {
		return nil
	}
	_, err := s.Store.Contacts().GetContactByID(ctx, session.WorkspaceID, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: contact_id", ErrValidation)
	}
	return err
}

// SaveCompany creates the company when its id is zero, otherwise updates it
// in place. Updates never move a record between workspaces.
func (s *RecordService) SaveCompany(ctx context.Context, session domain.Session, c domain.Company) (domain.Company, error) {
	if strings.TrimSpace(c.Name) == "" {
		return domain.Company{}, fmt.Errorf("%w: name", ErrValidation)
	}

	if stampRecord(session, &c.ID, &c.UserID, &c.WorkspaceID, &c.CreatedAt, &c.UpdatedAt) {
		return c, s.Store.Companies().InsertCompany(ctx, c)
	}
	return c, s.Store.Companies().UpdateCompany(ctx, c)
}

func (s *RecordService) GetCompany(ctx context.Context, session domain.Session, id idx.ID) (domain.Company, error) {
	return s.Store.Companies().GetCompanyByID(ctx, session.WorkspaceID, id)
}

func (s *RecordService) ListCompanies(ctx context.Context, session domain.Session, query string) ([]domain.Company, error) {
	return s.Store.Companies().ListCompanies(ctx, session.WorkspaceID, strings.TrimSpace(query), DefaultListLimit)
}

// DeleteCompany removes a company from the active workspace. Admin only.
func (s *RecordService) DeleteCompany(ctx context.Context, session domain.Session, id idx.ID) error {
	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return err
	}
	return s.Store.Companies().DeleteCompany(ctx, session.WorkspaceID, id)
}

// SaveContact creates or updates a contact. An optional company reference
// must resolve inside the active workspace.
func (s *RecordService) SaveContact(ctx context.Context, session domain.Session, c domain.Contact) (domain.Contact, error) {
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
		return domain.Contact{}, fmt.Errorf("%w: name", ErrValidation)
	}
	if err := s.checkCompanyRef(ctx, session, c.CompanyID); err != nil {
		return domain.Contact{}, err
	}

	if stampRecord(session, &c.ID, &c.UserID, &c.WorkspaceID, &c.CreatedAt, &c.UpdatedAt) {
		return c, s.Store.Contacts().InsertContact(ctx, c)
	}
	return c, s.Store.Contacts().UpdateContact(ctx, c)
}

func (s *RecordService) GetContact(ctx context.Context, session domain.Session, id idx.ID) (domain.Contact, error) {
	return s.Store.Contacts().GetContactByID(ctx, session.WorkspaceID, id)
}

func (s *RecordService) ListContacts(ctx context.Context, session domain.Session, query string) ([]domain.Contact, error) {
	return s.Store.Contacts().ListContacts(ctx, session.WorkspaceID, strings.TrimSpace(query), DefaultListLimit)
}

func (s *RecordService) DeleteContact(ctx context.Context, session domain.Session, id idx.ID) error {
	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return err
	}
	return s.Store.Contacts().DeleteContact(ctx, session.WorkspaceID, id)
}

// SaveDeal creates or updates a deal. Company and contact references must
// resolve inside the active workspace.
func (s *RecordService) SaveDeal(ctx context.Context, session domain.Session, d domain.Deal) (domain.Deal, error) {
	if strings.TrimSpace(d.Name) == "" {
		return domain.Deal{}, fmt.Errorf("%w: name", ErrValidation)
	}
	if d.Stage == "" {
		d.Stage = domain.StageNew
	}
	if err := s.checkCompanyRef(ctx, session, d.CompanyID); err != nil {
		return domain.Deal{}, err
	}
	if err := s.checkContactRef(ctx, session, d.ContactID); err != nil {
		return domain.Deal{}, err
	}

	if stampRecord(session, &d.ID, &d.UserID, &d.WorkspaceID, &d.CreatedAt, &d.UpdatedAt) {
		return d, s.Store.Deals().InsertDeal(ctx, d)
	}
	return d, s.Store.Deals().UpdateDeal(ctx, d)
}

func (s *RecordService) GetDeal(ctx context.Context, session domain.Session, id idx.ID) (domain.Deal, error) {
	return s.Store.Deals().GetDealByID(ctx, session.WorkspaceID, id)
}

func (s *RecordService) ListDeals(ctx context.Context, session domain.Session, query string) ([]domain.Deal, error) {
	return s.Store.Deals().ListDeals(ctx, session.WorkspaceID, strings.TrimSpace(query), DefaultListLimit)
}

func (s *RecordService) DeleteDeal(ctx context.Context, session domain.Session, id idx.ID) error {
	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return err
	}
	return s.Store.Deals().DeleteDeal(ctx, session.WorkspaceID, id)
}

// SaveTask creates or updates a task.
func (s *RecordService) SaveTask(ctx context.Context, session domain.Session, t domain.Task) (domain.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return domain.Task{}, fmt.Errorf("%w: title", ErrValidation)
	}
	if t.Status == "" {
		t.Status = "Open"
	}
	if t.Priority == "" {
		t.Priority = "Medium"
	}
	if err := s.validateRelated(ctx, session, t.Related); err != nil {
		return domain.Task{}, err
	}

	if stampRecord(session, &t.ID, &t.UserID, &t.WorkspaceID, &t.CreatedAt, &t.UpdatedAt) {
		return t, s.Store.Tasks().InsertTask(ctx, t)
	}
	return t, s.Store.Tasks().UpdateTask(ctx, t)
}

func (s *RecordService) GetTask(ctx context.Context, session domain.Session, id idx.ID) (domain.Task, error) {
	return s.Store.Tasks().GetTaskByID(ctx, session.WorkspaceID, id)
}

func (s *RecordService) ListTasks(ctx context.Context, session domain.Session, query string) ([]domain.Task, error) {
	return s.Store.Tasks().ListTasks(ctx, session.WorkspaceID, strings.TrimSpace(query), DefaultListLimit)
}

func (s *RecordService) DeleteTask(ctx context.Context, session domain.Session, id idx.ID) error {
	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return err
	}
	return s.Store.Tasks().DeleteTask(ctx, session.WorkspaceID, id)
}

// SaveNote creates or updates a note.
func (s *RecordService) SaveNote(ctx context.Context, session domain.Session, n domain.Note) (domain.Note, error) {
	if strings.TrimSpace(n.Body) == "" {
		return domain.Note{}, fmt.Errorf("%w: body", ErrValidation)
	}
	if err := s.validateRelated(ctx, session, n.Related); err != nil {
		return domain.Note{}, err
	}

	if stampRecord(session, &n.ID, &n.UserID, &n.WorkspaceID, &n.CreatedAt, &n.UpdatedAt) {
		return n, s.Store.Notes().InsertNote(ctx, n)
	}
	return n, s.Store.Notes().UpdateNote(ctx, n)
}

func (s *RecordService) GetNote(ctx context.Context, session domain.Session, id idx.ID) (domain.Note, error) {
	return s.Store.Notes().GetNoteByID(ctx, session.WorkspaceID, id)
}

func (s *RecordService) ListNotes(ctx context.Context, session domain.Session, query string) ([]domain.Note, error) {
	return s.Store.Notes().ListNotes(ctx, session.WorkspaceID, strings.TrimSpace(query), DefaultListLimit)
}

func (s *RecordService) DeleteNote(ctx context.Context, session domain.Session, id idx.ID) error {
	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return err
	}
	return s.Store.Notes().DeleteNote(ctx, session.WorkspaceID, id)
}

// ResetWorkspaceData wipes every record in the active workspace. Users,
// memberships, and the workspace itself survive. Admin only, one transaction.
func (s *RecordService) ResetWorkspaceData(ctx context.Context, session domain.Session) error {
	log := slogx.FromContext(ctx)

	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		id := session.WorkspaceID
		if err := tx.Notes().DeleteWorkspaceNotes(ctx, id); err != nil {
			return err
		}
		if err := tx.Tasks().DeleteWorkspaceTasks(ctx, id); err != nil {
			return err
		}
		if err := tx.Deals().DeleteWorkspaceDeals(ctx, id); err != nil {
			return err
		}
		if err := tx.Contacts().DeleteWorkspaceContacts(ctx, id); err != nil {
			return err
		}
		return tx.Companies().DeleteWorkspaceCompanies(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info("workspace data reset", slog.String("workspace_id", session.WorkspaceID.String()))
	return nil
}

// SeedSampleData loads a small demo data set into the active workspace so a
// fresh install has something to click on. Admin only.
func (s *RecordService) SeedSampleData(ctx context.Context, session domain.Session) error {
	log := slogx.FromContext(ctx)

	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return err
	}

	company, err := s.SaveCompany(ctx, session, domain.Company{
		Name:    "Acme Pty Ltd",
		Domain:  "acme.example",
		Phone:   "+61 2 5550 1000",
		Website: "https://acme.example",
		Owner:   session.Email,
	})
	if err != nil {
		return err
	}

	contact, err := s.SaveContact(ctx, session, domain.Contact{
		FirstName: "Jordan",
		LastName:  "Reyes",
		Email:     "jordan.reyes@acme.example",
		Phone:     "+61 2 5550 1234",
		Title:     "Operations Manager",
		CompanyID: company.ID,
		Owner:     session.Email,
	})
	if err != nil {
		return err
	}

	deal, err := s.SaveDeal(ctx, session, domain.Deal{
		Name:      "Acme annual renewal",
		CompanyID: company.ID,
		ContactID: contact.ID,
		Stage:     domain.StageQualified,
		Amount:    12500,
		CloseDate: time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02"),
		Owner:     session.Email,
	})
	if err != nil {
		return err
	}

	if _, err := s.SaveTask(ctx, session, domain.Task{
		Title:       "Send renewal proposal",
		Description: "Draft pricing for the annual renewal and send for review.",
		DueDate:     time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		Status:      "Open",
		Priority:    "high",
		Related:     domain.RelatedRef{Kind: domain.RelatedDeal, ID: deal.ID},
		Owner:       session.Email,
	}); err != nil {
		return err
	}

	if _, err := s.SaveNote(ctx, session, domain.Note{
		Body:    "Kickoff call went well. Jordan wants the proposal before end of month.",
		Related: domain.RelatedRef{Kind: domain.RelatedContact, ID: contact.ID},
		Owner:   session.Email,
	}); err != nil {
		return err
	}

	log.Info("sample data seeded", slog.String("workspace_id", session.WorkspaceID.String()))
	return nil
}
