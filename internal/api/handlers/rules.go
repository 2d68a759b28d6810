package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/razor389/sec-queries/internal/ruletable"
)

// RulesHandler exposes the loaded rule table for inspection.
type RulesHandler struct {
	table *ruletable.Table
}

// NewRulesHandler creates a rules handler.
func NewRulesHandler(table *ruletable.Table) *RulesHandler {
	return &RulesHandler{table: table}
}

// GetProfile returns the effective metric keys, segment names and
// categories for a company, overrides applied.
// GET /api/rules/{company}
func (h *RulesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	company := mux.Vars(r)["company"]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"company":    company,
		"metrics":    h.table.MetricKeys(company),
		"segments":   h.table.SegmentNames(company),
		"categories": h.categories(company),
	})
}

func (h *RulesHandler) categories(company string) map[string][]string {
	out := make(map[string][]string, len(ruletable.CategoryOrder))
	for _, category := range ruletable.CategoryOrder {
		out[category] = h.table.CategoryKeys(company, category)
	}
	return out
}
