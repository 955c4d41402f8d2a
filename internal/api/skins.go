package api

import (
	"net/http"
	"strings"

	"github.com/nzvengeance/gw2style/internal/skins"
)

const maxSkinResults = 100

// searchSkins serves autocomplete: ?q= matches names, ?type= restricts or,
// without q, lists a whole type.
func (s *Server) searchSkins(w http.ResponseWriter, r *http.Request) {
	if s.deps.Skins == nil {
		writeError(w, http.StatusServiceUnavailable, "Skin cache not configured")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	skinType := strings.TrimSpace(r.URL.Query().Get("type"))
	limit := queryInt(r, "limit", skins.DefaultSearchLimit)
	if limit > maxSkinResults {
		limit = maxSkinResults
	}

	if q == "" {
		if skinType == "" {
			writeError(w, http.StatusBadRequest, "q or type is required")
			return
		}
		writeJSON(w, http.StatusOK, s.deps.Skins.ByType(skinType))
		return
	}

	writeJSON(w, http.StatusOK, s.deps.Skins.Search(q, skinType, limit))
}

func (s *Server) skinInfo(w http.ResponseWriter, r *http.Request) {
	if s.deps.Skins == nil {
		writeError(w, http.StatusServiceUnavailable, "Skin cache not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Skins.Info())
}
