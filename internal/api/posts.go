package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nzvengeance/gw2style/internal/backend"
	"github.com/nzvengeance/gw2style/internal/equipment"
)

func (s *Server) postsConfigured(w http.ResponseWriter) bool {
	if s.deps.Posts == nil {
		writeError(w, http.StatusServiceUnavailable, "Posts backend not configured")
		return false
	}
	return true
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	if !s.postsConfigured(w) {
		return
	}
	page, err := s.deps.Posts.ListPosts(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", backend.DefaultPageSize))
	if err != nil {
		writeFailure(w, err, "listing posts")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) popularPosts(w http.ResponseWriter, r *http.Request) {
	if !s.postsConfigured(w) {
		return
	}
	page, err := s.deps.Posts.PopularPosts(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", backend.DefaultPageSize))
	if err != nil {
		writeFailure(w, err, "listing popular posts")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// searchPosts accepts filter categories as query keys (races=Charr&colors=...)
// and free tags in a comma-joined tags key; both are flattened into one tag
// list for the backend.
func (s *Server) searchPosts(w http.ResponseWriter, r *http.Request) {
	if !s.postsConfigured(w) {
		return
	}
	q := r.URL.Query()

	tags := s.vocab.Tags(s.vocab.Decode(q))
	for _, raw := range q["tags"] {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t != "" && !contains(tags, t) {
				tags = append(tags, t)
			}
		}
	}

	page, err := s.deps.Posts.SearchPosts(r.Context(), backend.SearchQuery{
		Query:  strings.TrimSpace(q.Get("q")),
		Author: strings.TrimSpace(q.Get("author")),
		Tags:   tags,
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", backend.DefaultPageSize),
	})
	if err != nil {
		writeFailure(w, err, "searching posts")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	if !s.postsConfigured(w) {
		return
	}
	post, err := s.deps.Posts.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err, "fetching post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": post})
}

func (s *Server) getPostEquipment(w http.ResponseWriter, r *http.Request) {
	if !s.postsConfigured(w) || !s.equipmentConfigured(w) {
		return
	}
	post, err := s.deps.Posts.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err, "fetching post")
		return
	}
	s.writeDisplay(w, r, post.Equipments)
}

type resolveRequest struct {
	Equipment json.RawMessage `json:"equipment"`
}

// resolveEquipment lays out an equipment blob sent by the client, in any of
// the stored forms.
func (s *Server) resolveEquipment(w http.ResponseWriter, r *http.Request) {
	if !s.equipmentConfigured(w) {
		return
	}
	var req resolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Equipment) == 0 {
		writeError(w, http.StatusBadRequest, "equipment is required")
		return
	}
	s.writeDisplay(w, r, req.Equipment)
}

func (s *Server) equipmentConfigured(w http.ResponseWriter) bool {
	if s.deps.Equipment == nil {
		writeError(w, http.StatusServiceUnavailable, "Equipment resolver not configured")
		return false
	}
	return true
}

func (s *Server) writeDisplay(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	blob, err := equipment.Decode(raw)
	if err != nil {
		if errors.Is(err, equipment.ErrEmptyBlob) {
			writeFailure(w, err, "decoding equipment")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	display, err := s.deps.Equipment.Resolve(r.Context(), blob.Equipment)
	if err != nil {
		writeFailure(w, err, "resolving equipment")
		return
	}
	writeJSON(w, http.StatusOK, display)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
