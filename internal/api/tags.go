package api

import (
	"net/http"
	"strings"

	"github.com/nzvengeance/gw2style/internal/tagging"
)

type generateTagsRequest struct {
	CharacterName string `json:"character_name"`
	TabName       string `json:"tab_name"`
	APIKey        string `json:"api_key"`
}

// generateTags accepts the GW2 API key in the body or as a bearer token.
func (s *Server) generateTags(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tagger == nil {
		writeError(w, http.StatusServiceUnavailable, "Tag generation not configured")
		return
	}

	var req generateTagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.APIKey == "" {
		req.APIKey = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	}

	result, err := s.deps.Tagger.Generate(r.Context(), strings.TrimSpace(req.CharacterName), req.TabName, req.APIKey)
	if err != nil {
		writeFailure(w, err, "tag generation")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type categorizeRequest struct {
	Tags []string `json:"tags"`
}

func (s *Server) categorizeTags(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, tagging.CategorizeTags(req.Tags))
}
