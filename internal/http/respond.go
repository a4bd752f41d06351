package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SantiagoArteche/off-eccom-api/internal/apperr"
	"github.com/SantiagoArteche/off-eccom-api/internal/logx"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps a service error onto the wire. Untagged errors are logged and
// surface as a generic 500.
func writeErr(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logx.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// pageFromQuery parses ?page=&limit= with the collection defaults.
func pageFromQuery(r *http.Request) (pagination.Page, error) {
	page, limit := 1, 10

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Page{}, apperr.BadRequest("Page and limit must be numbers")
		}
		page = n
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Page{}, apperr.BadRequest("Page and limit must be numbers")
		}
		limit = n
	}

	p, err := pagination.New(page, limit)
	if err != nil {
		return pagination.Page{}, apperr.BadRequest(err.Error())
	}
	return p, nil
}
