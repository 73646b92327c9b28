package domain

import (
	"time"

	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

// RelatedKind tags the polymorphic reference carried by tasks and notes.
type RelatedKind string

const (
	RelatedNone    RelatedKind = ""
	RelatedCompany RelatedKind = "Company"
	RelatedContact RelatedKind = "Contact"
	RelatedDeal    RelatedKind = "Deal"
)

// RelatedRef is a typed (kind, id) reference to a company, contact, or deal.
// The zero value means "not related to anything". Unlike the legacy schema it
// replaces, refs are validated against the referenced table (within the same
// workspace) before any write.
type RelatedRef struct {
	Kind RelatedKind
	ID   idx.ID
}

// IsZero reports whether the ref points at nothing.
func (r RelatedRef) IsZero() bool { return r.Kind == RelatedNone && r.ID.IsZero() }

// Deal stages, in pipeline order.
const (
	StageNew         = "New"
	StageQualified   = "Qualified"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
)

// Company is an account. Scoped to a workspace; Owner is a free-form label
// carried over from the forms, distinct from the owning user.
type Company struct {
	ID          idx.ID
	Name        string
	Domain      string
	Phone       string
	Website     string
	Owner       string
	UserID      idx.ID // owning user; Zero for unscoped legacy rows
	WorkspaceID idx.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Contact struct {
	ID          idx.ID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Title       string
	CompanyID   idx.ID // optional; cleared when the company is deleted
	Owner       string
	UserID      idx.ID
	WorkspaceID idx.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Deal struct {
	ID          idx.ID
	Name        string
	CompanyID   idx.ID // optional
	ContactID   idx.ID // optional
	Stage       string
	Amount      float64
	CloseDate   string // ISO date, empty when unset
	Owner       string
	UserID      idx.ID
	WorkspaceID idx.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Task struct {
	ID          idx.ID
	Title       string
	Description string
	DueDate     string // ISO date, empty when unset
	Status      string
	Priority    string
	Related     RelatedRef
	Owner       string
	UserID      idx.ID
	WorkspaceID idx.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Note struct {
	ID          idx.ID
	Body        string
	Related     RelatedRef
	Owner       string
	UserID      idx.ID
	WorkspaceID idx.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
