package api

import (
	"net/http"

	"github.com/nzvengeance/gw2style/internal/filters"
)

// filterView is a filter state plus everything a page needs to render and
// link it.
type filterView struct {
	State       filters.State `json:"state"`
	Query       string        `json:"query"`
	Search      string        `json:"search"`
	Tags        []string      `json:"tags"`
	ActiveCount int           `json:"active_count"`
}

func (s *Server) view(state filters.State) filterView {
	return filterView{
		State:       state,
		Query:       filters.Encode(state).Encode(),
		Search:      s.vocab.SearchParams(state).Encode(),
		Tags:        s.vocab.Tags(state),
		ActiveCount: filters.CountActive(state),
	}
}

// normalize drops unknown categories and cleans values the same way a
// query string would be read.
func (s *Server) normalize(state filters.State) filters.State {
	return s.vocab.Decode(filters.Encode(state))
}

func (s *Server) listFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": s.vocab.Categories(),
	})
}

func (s *Server) normalizeFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.vocab.Decode(r.URL.Query())))
}

type toggleRequest struct {
	State    filters.State `json:"state"`
	Action   string        `json:"action"`
	Category string        `json:"category"`
	Value    string        `json:"value"`
}

func (s *Server) toggleFilter(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := s.normalize(req.State)
	if req.Action != "clear" {
		if _, ok := s.vocab.Category(req.Category); !ok {
			writeError(w, http.StatusBadRequest, "Unknown filter category: "+req.Category)
			return
		}
	}

	switch req.Action {
	case "", "toggle":
		state = s.vocab.Toggle(state, req.Category, req.Value)
	case "remove":
		state = filters.Remove(state, req.Category, req.Value)
	case "clear":
		state = s.vocab.ClearAll()
	default:
		writeError(w, http.StatusBadRequest, "Unknown action: "+req.Action)
		return
	}

	writeJSON(w, http.StatusOK, s.view(state))
}
