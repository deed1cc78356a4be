package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"pictor/internal/database"
	"pictor/internal/search"
	"pictor/internal/vision"
	"pictor/pkg/utils"
)

// SearchHandler evaluates a keyword + filter search.
// POST /api/search
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	var criteria search.Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid JSON body.")
		return
	}

	images, err := search.Evaluate(r.Context(), database.DB, criteria)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Search failed.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, images)
}

type naturalSearchRequest struct {
	Query string `json:"query"`
}

type naturalSearchResponse struct {
	Images   []database.Image  `json:"images"`
	Query    string            `json:"query"`
	Filters  map[string]string `json:"filters"`
	Keywords string            `json:"keywords"`
}

// NaturalSearchHandler runs a free-form sentence through the criteria
// oracle and evaluates the result as a normal search. Oracle failures
// degrade to empty criteria, never to a failed request.
// POST /api/natural-search
func NaturalSearchHandler(w http.ResponseWriter, r *http.Request) {
	var req naturalSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Valid query string is required.")
		return
	}

	criteria, err := extractor.ExtractCriteria(r.Context(), req.Query)
	if err != nil {
		// Extractors degrade internally; an error here means a broken
		// implementation, so still fall back to empty criteria.
		criteria = vision.Criteria{}
	}

	filters, keywords := criteria.Filters()

	images, err := search.Evaluate(r.Context(), database.DB, search.Criteria{
		Query:   keywords,
		Filters: filters,
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Search failed.")
		return
	}

	utils.WriteJSON(w, http.StatusOK, naturalSearchResponse{
		Images:   images,
		Query:    req.Query,
		Filters:  filters,
		Keywords: keywords,
	})
}
