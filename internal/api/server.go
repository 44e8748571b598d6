package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pbaille/taxon/internal/belief"
	"github.com/pbaille/taxon/internal/classifier"
	"github.com/pbaille/taxon/internal/domain"
	"github.com/pbaille/taxon/internal/embedding"
	"github.com/pbaille/taxon/internal/fetcher"
	"github.com/pbaille/taxon/internal/logger"
	"github.com/pbaille/taxon/internal/store"
)

// Server handles HTTP requests for the classification API
type Server struct {
	store      *store.Store
	addr       string
	embedModel string
}

// New creates a new API server
func New(s *store.Store, addr, embedModel string) *Server {
	return &Server{store: s, addr: addr, embedModel: embedModel}
}

// Handler builds the route table. Split out from Run for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Stateless views
	mux.HandleFunc("POST /classify", s.classify)
	mux.HandleFunc("POST /beliefs", s.beliefs)
	mux.HandleFunc("POST /hashes", s.hashes)

	// Stored knowledge bases
	mux.HandleFunc("POST /kb", s.addKB)
	mux.HandleFunc("GET /kb", s.listKBs)
	mux.HandleFunc("GET /kb/{id}", s.getKB)
	mux.HandleFunc("GET /kb/{id}/stats", s.getKBStats)

	// Search
	mux.HandleFunc("GET /search", s.searchEntries)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run starts the HTTP server
func (s *Server) Run() error {
	fmt.Printf("Starting server on %s\n", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TextRequest carries a raw blob, inline or by URL.
type TextRequest struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// resolve returns the raw text, fetching the URL form when needed.
func (t TextRequest) resolve() (string, error) {
	if t.URL != "" {
		return fetcher.Fetch(t.URL)
	}
	return t.Text, nil
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" && req.URL == "" {
		writeError(w, http.StatusBadRequest, "text or url is required")
		return
	}

	raw, err := req.resolve()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	result := classifier.Classify(raw)
	logger.Debug("classified %d entries over %d categories", len(result.Entries), len(result.Stats))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) beliefs(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raw, err := req.resolve()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	entries := belief.Parse(raw)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"beliefs": entries,
		"count":   len(entries),
	})
}

func (s *Server) hashes(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raw, err := req.resolve()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": belief.CountHashIndex(raw)})
}

// AddKBRequest is the request body for importing a knowledge base
type AddKBRequest struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// AddKBResponse is the response for importing a knowledge base
type AddKBResponse struct {
	KB      *domain.KnowledgeBase      `json:"kb"`
	Entries []domain.KnowledgeEntry    `json:"entries"`
	Stats   []domain.CategoryStatistic `json:"stats"`
	Similar []store.SimilarEntry       `json:"similar,omitempty"`
}

func (s *Server) addKB(w http.ResponseWriter, r *http.Request) {
	var req AddKBRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Text == "" && req.URL == "" {
		writeError(w, http.StatusBadRequest, "text or url is required")
		return
	}

	raw, err := TextRequest{Text: req.Text, URL: req.URL}.resolve()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	result := classifier.Classify(raw)

	kb, stored, err := s.store.AddKnowledgeBase(req.Name, raw, result.Entries, result.Stats)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := AddKBResponse{KB: kb, Entries: result.Entries, Stats: result.Stats}

	// Embeddings are best effort: no API key or a failed call just means
	// no similarity suggestions.
	if embSvc, err := embedding.New(s.embedModel); err == nil {
		entries := make([]domain.KnowledgeEntry, len(stored))
		for i, se := range stored {
			entries[i] = se.Entry
		}
		if vectors, err := embSvc.EmbedEntries(entries); err == nil {
			for i, se := range stored {
				s.store.SaveEmbedding(se.RowID, vectors[i], embSvc.Model())
			}
			if len(vectors) > 0 {
				similar, _ := s.store.FindSimilar(vectors[0], 5, stored[0].RowID)
				resp.Similar = similar
			}
		} else {
			logger.Warn("embedding failed: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) getKB(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	kb, err := s.findKB(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "knowledge base not found")
		return
	}

	entries, err := s.store.ListEntries(kb.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kb":      kb,
		"entries": entries,
	})
}

func (s *Server) getKBStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	kb, err := s.findKB(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "knowledge base not found")
		return
	}

	stats, err := s.store.GetStats(kb.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kb_id": kb.ID,
		"stats": stats,
	})
}

// findKB supports id prefix matching like the CLI.
func (s *Server) findKB(id string) (*domain.KnowledgeBase, error) {
	if kb, err := s.store.GetKnowledgeBase(id); err == nil {
		return kb, nil
	}

	kbs, err := s.store.ListKnowledgeBases(100, 0)
	if err != nil {
		return nil, err
	}
	for _, kb := range kbs {
		if strings.HasPrefix(kb.ID, id) {
			return s.store.GetKnowledgeBase(kb.ID)
		}
	}
	return nil, fmt.Errorf("knowledge base not found: %s", id)
}

func (s *Server) listKBs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	kbs, err := s.store.ListKnowledgeBases(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kbs":    kbs,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) searchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	entries, err := s.store.SearchEntries(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"query":   query,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
