package http

import (
	"net/http"

	"github.com/aussiebroadwan/litecrm/pkg/httpx"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

// pathID parses the {id} path segment, writing a 400 on garbage. The second
// return is false when the response has already been written.
func pathID(w http.ResponseWriter, r *http.Request) (idx.ID, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "id is not a valid id")
		return idx.Zero, false
	}
	return id, true
}

// parseOptionalID maps an absent id to Zero and rejects malformed ones.
func parseOptionalID(s string) (idx.ID, error) {
	if s == "" {
		return idx.Zero, nil
	}
	return idx.Parse(s)
}

// searchQuery pulls the free-text filter from the query string.
func searchQuery(r *http.Request) string {
	return r.URL.Query().Get("q")
}
