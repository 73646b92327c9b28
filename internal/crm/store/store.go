package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

var (
	// ErrNotFound is returned for missing rows, and for scoped updates or
	// deletes that matched zero rows. A write that silently affects nothing
	// must surface here, never as success.
	ErrNotFound = errors.New("store: not found")
	// ErrAlreadyExists is returned on unique constraint conflicts
	// (duplicate email, duplicate membership).
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Workspaces() Workspaces
	Memberships() Memberships
	Invites() Invites
	PasswordResets() PasswordResets

	Companies() Companies
	Contacts() Contacts
	Deals() Deals
	Tasks() Tasks
	Notes() Notes

	// ApplyMigrations runs the ordered, embedded migration list. Idempotent;
	// call once at startup before serving requests.
	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise. Use it for multi-step flows that must be
	// atomic (workspace + admin membership, consume invite + membership).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id idx.ID) (domain.User, error)

	// GetUserByEmail looks up by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash replaces the stored credential.
	UpdatePasswordHash(ctx context.Context, userID idx.ID, newHash string) error
}

type Workspaces interface {
	GetWorkspaceByID(ctx context.Context, id idx.ID) (domain.Workspace, error)
	CreateWorkspace(ctx context.Context, w domain.Workspace) error
}

type Memberships interface {
	// CreateMembership inserts a membership. ErrAlreadyExists when the
	// (user, workspace) pair already has one.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// GetMembership returns the membership for a (user, workspace) pair.
	GetMembership(ctx context.Context, userID, workspaceID idx.ID) (domain.Membership, error)

	// ListUserWorkspaces returns the workspaces a user belongs to, joined
	// with the member's role, ordered by workspace creation time ascending.
	ListUserWorkspaces(ctx context.Context, userID idx.ID) ([]domain.UserWorkspace, error)

	// ListWorkspaceMembers returns all members of a workspace joined with
	// their user rows, ordered by email.
	ListWorkspaceMembers(ctx context.Context, workspaceID idx.ID) ([]domain.Member, error)
}

type Invites interface {
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetInviteByToken returns an invite by its raw token regardless of
	// consumption state; callers check Consumed().
	GetInviteByToken(ctx context.Context, token string) (domain.Invite, error)

	// GetLatestPendingInviteByEmail returns the most recently issued
	// unconsumed invite for an email.
	GetLatestPendingInviteByEmail(ctx context.Context, email string) (domain.Invite, error)

	// MarkInviteAccepted sets accepted_at. ErrNotFound if already consumed,
	// so an invite can be consumed at most once even under races.
	MarkInviteAccepted(ctx context.Context, inviteID idx.ID) error

	// DeleteConsumedInvitesBefore removes invites accepted before the cutoff
	// (housekeeping).
	DeleteConsumedInvitesBefore(ctx context.Context, cutoff time.Time) error
}

type PasswordResets interface {
	CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error

	GetPasswordResetByToken(ctx context.Context, token string) (domain.PasswordReset, error)

	// MarkPasswordResetUsed sets used_at. ErrNotFound if already consumed.
	MarkPasswordResetUsed(ctx context.Context, resetID idx.ID) error

	// DeletePasswordResetsBefore removes tokens created before the cutoff
	// (housekeeping; expired tokens are useless either way).
	DeletePasswordResetsBefore(ctx context.Context, cutoff time.Time) error
}

// The record repos share the same scoped contract: updates and deletes match
// on both id and workspace, and report ErrNotFound when zero rows matched.
// Lists filter by workspace before any search predicate is applied.

type Companies interface {
	InsertCompany(ctx context.Context, c domain.Company) error
	UpdateCompany(ctx context.Context, c domain.Company) error
	DeleteCompany(ctx context.Context, workspaceID, id idx.ID) error
	GetCompanyByID(ctx context.Context, workspaceID, id idx.ID) (domain.Company, error)
	ListCompanies(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Company, error)
	DeleteWorkspaceCompanies(ctx context.Context, workspaceID idx.ID) error
}

type Contacts interface {
	InsertContact(ctx context.Context, c domain.Contact) error
	UpdateContact(ctx context.Context, c domain.Contact) error
	DeleteContact(ctx context.Context, workspaceID, id idx.ID) error
	GetContactByID(ctx context.Context, workspaceID, id idx.ID) (domain.Contact, error)
	ListContacts(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Contact, error)
	DeleteWorkspaceContacts(ctx context.Context, workspaceID idx.ID) error
}

type Deals interface {
	InsertDeal(ctx context.Context, d domain.Deal) error
	UpdateDeal(ctx context.Context, d domain.Deal) error
	DeleteDeal(ctx context.Context, workspaceID, id idx.ID) error
	GetDealByID(ctx context.Context, workspaceID, id idx.ID) (domain.Deal, error)
	ListDeals(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Deal, error)
	DeleteWorkspaceDeals(ctx context.Context, workspaceID idx.ID) error
}

type Tasks interface {
	InsertTask(ctx context.Context, t domain.Task) error
	UpdateTask(ctx context.Context, t domain.Task) error
	DeleteTask(ctx context.Context, workspaceID, id idx.ID) error
	GetTaskByID(ctx context.Context, workspaceID, id idx.ID) (domain.Task, error)
	ListTasks(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Task, error)
	DeleteWorkspaceTasks(ctx context.Context, workspaceID idx.ID) error
}

type Notes interface {
	InsertNote(ctx context.Context, n domain.Note) error
	UpdateNote(ctx context.Context, n domain.Note) error
	DeleteNote(ctx context.Context, workspaceID, id idx.ID) error
	GetNoteByID(ctx context.Context, workspaceID, id idx.ID) (domain.Note, error)
	ListNotes(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Note, error)
	DeleteWorkspaceNotes(ctx context.Context, workspaceID idx.ID) error
}
