package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/internal/crm/store"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
	"github.com/aussiebroadwan/litecrm/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *SessionSigner
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService      *service.AuthService
	WorkspaceService *service.WorkspaceService
	RecordService    *service.RecordService
}

func NewRouter(signer *SessionSigner, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvites()
	r.registerWorkspaces()
	r.registerRecords()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with session auth, workspace binding, and a
// per-IP rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		AuthMiddleware(r.signer),
		RequireWorkspace,
		httpx.RateLimitByIP(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Signer: r.signer}

	// Credential endpoints are strict-limited to slow brute force attempts.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/forgot",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InviteHandler{WorkspaceService: r.WorkspaceService}

	// Public preview endpoint; the token is the capability.
	r.Mux.Handle("GET /v1/invites/{token}",
		httpx.Chain(http.HandlerFunc(h.HandlePreview),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerWorkspaces() {
	h := &WorkspaceHandler{
		WorkspaceService: r.WorkspaceService,
		RecordService:    r.RecordService,
		Signer:           r.signer,
	}

	// Listing and creating workspaces only needs a valid session; the
	// session may not be workspace-bound yet.
	r.Mux.Handle("GET /v1/workspaces",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			AuthMiddleware(r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/workspaces",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			AuthMiddleware(r.signer),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/workspaces/switch",
		httpx.Chain(http.HandlerFunc(h.HandleSwitch),
			AuthMiddleware(r.signer),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/workspaces/invites", r.secured(h.HandleMintInvite, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/workspaces/members", r.secured(h.HandleListMembers, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/workspaces/reset", r.secured(h.HandleReset, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/workspaces/seed", r.secured(h.HandleSeed, httpx.ModerateLimit))
}

func (r *Router) registerRecords() {
	companies := &CompaniesHandler{RecordService: r.RecordService}
	contacts := &ContactsHandler{RecordService: r.RecordService}
	deals := &DealsHandler{RecordService: r.RecordService}
	tasks := &TasksHandler{RecordService: r.RecordService}
	notes := &NotesHandler{RecordService: r.RecordService}

	r.Mux.Handle("GET /v1/companies", r.secured(companies.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/companies", r.secured(companies.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/companies/{id}", r.secured(companies.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/companies/{id}", r.secured(companies.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/companies/{id}", r.secured(companies.HandleDelete, httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/contacts", r.secured(contacts.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/contacts", r.secured(contacts.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/contacts/{id}", r.secured(contacts.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/contacts/{id}", r.secured(contacts.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/contacts/{id}", r.secured(contacts.HandleDelete, httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/deals", r.secured(deals.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/deals", r.secured(deals.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/deals/{id}", r.secured(deals.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/deals/{id}", r.secured(deals.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/deals/{id}", r.secured(deals.HandleDelete, httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/tasks", r.secured(tasks.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/tasks", r.secured(tasks.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/tasks/{id}", r.secured(tasks.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/tasks/{id}", r.secured(tasks.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/tasks/{id}", r.secured(tasks.HandleDelete, httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/notes", r.secured(notes.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/notes", r.secured(notes.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/notes/{id}", r.secured(notes.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/notes/{id}", r.secured(notes.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/notes/{id}", r.secured(notes.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
