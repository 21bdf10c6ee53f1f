// Package server exposes a read-only query API over a scraped record
// set and a price snapshot. It never mutates either; re-scraping and
// re-pricing happen out of band.
package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/recipecrawl/internal/extract"
	"github.com/go-scripts/recipecrawl/internal/pricing"
)

// Server serves recipe and pricing queries.
type Server struct {
	addr     string
	records  []extract.Record
	snapshot pricing.Snapshot
}

// New returns a server over the given data.
func New(addr string, records []extract.Record, snapshot pricing.Snapshot) *Server {
	return &Server{addr: addr, records: records, snapshot: snapshot}
}

// ListenAndServe blocks serving the API.
func (s *Server) ListenAndServe() error {
	log.Info("serving query API", "addr", s.addr,
		"recipes", len(s.records), "materials", len(s.snapshot))
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/recipes", s.cors(s.handleRecipes))
	mux.HandleFunc("GET /api/recipes/{id}", s.cors(s.handleRecipe))
	mux.HandleFunc("GET /api/professions", s.cors(s.handleProfessions))
	mux.HandleFunc("GET /api/materials", s.cors(s.handleMaterials))
	mux.HandleFunc("GET /api/materials/{id}", s.cors(s.handleMaterial))
	mux.HandleFunc("POST /api/calculate", s.cors(s.handleCalculate))
	mux.HandleFunc("GET /api/stats", s.cors(s.handleStats))
	mux.HandleFunc("GET /health", s.cors(s.handleHealth))
	return mux
}

func (s *Server) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

type recipeRow struct {
	extract.Record
	ProfitData pricing.ProfitReport `json:"profitData"`
}

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	// "profession" is the canonical parameter; "category" stays as an
	// alias matching the record field name.
	profession := q.Get("profession")
	if profession == "" {
		profession = q.Get("category")
	}
	filter := pricing.Filter{
		Category: profession,
		Search:   q.Get("search"),
	}
	if v := q.Get("min_skill"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinSkill = &n
		}
	}
	if v := q.Get("max_skill"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MaxSkill = &n
		}
	}
	if v := q.Get("min_profit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MinProfit = &n
		}
	}

	matched := pricing.FilterRecords(s.records, filter, s.snapshot)
	if by := q.Get("sort_by"); by != "" {
		matched = pricing.SortRecords(matched, by, q.Get("sort_order"), s.snapshot)
	}

	rows := make([]recipeRow, 0, len(matched))
	for _, rec := range matched {
		rows = append(rows, recipeRow{Record: rec, ProfitData: s.profitData(rec)})
	}
	ok(w, rows)
}

// profitData values the output at its snapshot price; callers wanting
// a custom sale price go through /api/calculate.
func (s *Server) profitData(rec extract.Record) pricing.ProfitReport {
	return pricing.Profit(rec, s.snapshot, pricing.ResultPrice(rec, s.snapshot))
}

type professionSummary struct {
	Name        string `json:"name"`
	RecipeCount int    `json:"recipeCount"`
	MinSkill    int    `json:"minSkill"`
	MaxSkill    int    `json:"maxSkill"`
}

func (s *Server) handleProfessions(w http.ResponseWriter, _ *http.Request) {
	byName := map[string]*professionSummary{}
	for _, rec := range s.records {
		sum, found := byName[rec.Category]
		if !found {
			sum = &professionSummary{
				Name:     rec.Category,
				MinSkill: rec.RequiredSkill,
				MaxSkill: rec.RequiredSkill,
			}
			byName[rec.Category] = sum
		}
		sum.RecipeCount++
		if rec.RequiredSkill < sum.MinSkill {
			sum.MinSkill = rec.RequiredSkill
		}
		if rec.RequiredSkill > sum.MaxSkill {
			sum.MaxSkill = rec.RequiredSkill
		}
	}

	out := make([]professionSummary, 0, len(byName))
	for _, sum := range byName {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	ok(w, out)
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid recipe id")
		return
	}
	for _, rec := range s.records {
		if rec.RecipeID == id {
			ok(w, recipeRow{Record: rec, ProfitData: s.profitData(rec)})
			return
		}
	}
	fail(w, http.StatusNotFound, "recipe not found")
}

func (s *Server) handleMaterials(w http.ResponseWriter, _ *http.Request) {
	ok(w, s.snapshot)
}

func (s *Server) handleMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid item id")
		return
	}
	mat, found := s.snapshot[id]
	if !found {
		fail(w, http.StatusNotFound, "material not found")
		return
	}
	ok(w, mat)
}

type calculateRequest struct {
	RecipeID    int64 `json:"recipeIdentity"`
	ResultPrice int64 `json:"resultPrice"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, rec := range s.records {
		if rec.RecipeID == req.RecipeID {
			ok(w, pricing.Profit(rec, s.snapshot, req.ResultPrice))
			return
		}
	}
	fail(w, http.StatusNotFound, "recipe not found")
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	categories := map[string]int{}
	for _, rec := range s.records {
		categories[rec.Category]++
	}
	ok(w, map[string]any{
		"totalRecipes":   len(s.records),
		"totalMaterials": len(s.snapshot),
		"categories":     categories,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]any{"status": "healthy", "recipes": len(s.records)})
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encoding response", "err", err)
	}
}
