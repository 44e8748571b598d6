package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/taxon/internal/domain"
	"github.com/pbaille/taxon/internal/embedding"
)

//go:embed schema.sql
var schema string

// Store handles database operations
type Store struct {
	db *sql.DB
}

// StoredEntry is a classified entry with its storage row id and owning
// knowledge base. RowID is the stable key embeddings hang off of; the
// entry's own ID is only unique by convention.
type StoredEntry struct {
	RowID string                `json:"row_id"`
	KBID  string                `json:"kb_id"`
	Entry domain.KnowledgeEntry `json:"entry"`
}

// SimilarEntry is a nearest-neighbour hit from FindSimilar.
type SimilarEntry struct {
	RowID string          `json:"row_id"`
	KBID  string          `json:"kb_id"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Label domain.Category `json:"label"`
	Score float64         `json:"score"`
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AddKnowledgeBase stores a raw blob together with its classified entries
// and stats snapshot, in one transaction. The returned entries carry their
// new row ids so the caller can attach embeddings.
func (s *Store) AddKnowledgeBase(name, raw string, entries []domain.KnowledgeEntry, stats []domain.CategoryStatistic) (*domain.KnowledgeBase, []StoredEntry, error) {
	kb := &domain.KnowledgeBase{
		ID:        uuid.New().String(),
		Name:      name,
		Raw:       raw,
		CreatedAt: time.Now(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO knowledge_bases (id, name, raw, created_at) VALUES (?, ?, ?, ?)",
		kb.ID, kb.Name, kb.Raw, kb.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert knowledge base: %w", err)
	}

	stored := make([]StoredEntry, 0, len(entries))
	for _, e := range entries {
		rowID := uuid.New().String()
		var score any
		if e.Score != nil {
			score = *e.Score
		}
		_, err = tx.Exec(
			`INSERT INTO entries (id, kb_id, entry_id, name, tags, fingerprint, score, source_format, label)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rowID, kb.ID, e.ID, e.Name, strings.Join(e.Tags, ","), e.Fingerprint, score, string(e.SourceFormat), string(e.Label),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("insert entry: %w", err)
		}
		stored = append(stored, StoredEntry{RowID: rowID, KBID: kb.ID, Entry: e})
	}

	for _, st := range stats {
		_, err = tx.Exec(
			"INSERT INTO stats (kb_id, label, count, percentage) VALUES (?, ?, ?, ?)",
			kb.ID, string(st.Label), st.Count, st.Percentage,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("insert stat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}

	return kb, stored, nil
}

// GetKnowledgeBase retrieves a knowledge base by ID
func (s *Store) GetKnowledgeBase(id string) (*domain.KnowledgeBase, error) {
	var kb domain.KnowledgeBase
	err := s.db.QueryRow(
		"SELECT id, name, raw, created_at FROM knowledge_bases WHERE id = ?",
		id,
	).Scan(&kb.ID, &kb.Name, &kb.Raw, &kb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get knowledge base: %w", err)
	}
	return &kb, nil
}

// ListKnowledgeBases returns recent knowledge bases with pagination. Raw
// text is omitted to keep listings light.
func (s *Store) ListKnowledgeBases(limit, offset int) ([]domain.KnowledgeBase, error) {
	rows, err := s.db.Query(
		"SELECT id, name, created_at FROM knowledge_bases ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}
	defer rows.Close()

	var kbs []domain.KnowledgeBase
	for rows.Next() {
		var kb domain.KnowledgeBase
		if err := rows.Scan(&kb.ID, &kb.Name, &kb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge base: %w", err)
		}
		kbs = append(kbs, kb)
	}

	return kbs, nil
}

// ListEntries returns the classified entries of a knowledge base, in
// insertion order.
func (s *Store) ListEntries(kbID string) ([]StoredEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, kb_id, entry_id, name, tags, fingerprint, score, source_format, label
		 FROM entries WHERE kb_id = ? ORDER BY rowid`,
		kbID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetStats returns the stored stats snapshot of a knowledge base, sorted
// the way the classifier produced it.
func (s *Store) GetStats(kbID string) ([]domain.CategoryStatistic, error) {
	rows, err := s.db.Query(
		"SELECT label, count, percentage FROM stats WHERE kb_id = ?",
		kbID,
	)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	defer rows.Close()

	stats := []domain.CategoryStatistic{}
	for rows.Next() {
		var st domain.CategoryStatistic
		var label string
		if err := rows.Scan(&label, &st.Count, &st.Percentage); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		st.Label = domain.Category(label)
		st.Description = st.Label.Description()
		stats = append(stats, st)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Label < stats[j].Label
	})

	return stats, nil
}

// SearchEntries performs a simple text search over stored entries
func (s *Store) SearchEntries(query string) ([]StoredEntry, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.Query(
		`SELECT id, kb_id, entry_id, name, tags, fingerprint, score, source_format, label
		 FROM entries WHERE entry_id LIKE ? OR name LIKE ? OR tags LIKE ? ORDER BY rowid`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SaveEmbedding stores an entry's vector for later similarity lookups
func (s *Store) SaveEmbedding(entryRowID string, vector []float64, model string) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO embeddings (entry_id, vector, model) VALUES (?, ?, ?)",
		entryRowID, string(data), model,
	)
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// FindSimilar returns the stored entries closest to the given vector by
// cosine similarity, best first. excludeRowID filters the query entry
// itself out of its own results.
func (s *Store) FindSimilar(vector []float64, limit int, excludeRowID string) ([]SimilarEntry, error) {
	rows, err := s.db.Query(
		`SELECT e.id, e.kb_id, e.entry_id, e.name, e.label, em.vector
		 FROM embeddings em JOIN entries e ON e.id = em.entry_id
		 WHERE e.id != ?`,
		excludeRowID,
	)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	defer rows.Close()

	var hits []SimilarEntry
	for rows.Next() {
		var hit SimilarEntry
		var label, raw string
		if err := rows.Scan(&hit.RowID, &hit.KBID, &hit.ID, &hit.Name, &label, &raw); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		hit.Label = domain.Category(label)

		var stored []float64
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			continue
		}
		hit.Score = embedding.CosineSimilarity(vector, stored)
		hits = append(hits, hit)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, nil
}

func scanEntries(rows *sql.Rows) ([]StoredEntry, error) {
	entries := []StoredEntry{}
	for rows.Next() {
		var se StoredEntry
		var tags, sourceFormat, label string
		var score sql.NullFloat64
		err := rows.Scan(&se.RowID, &se.KBID, &se.Entry.ID, &se.Entry.Name, &tags,
			&se.Entry.Fingerprint, &score, &sourceFormat, &label)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if tags != "" {
			se.Entry.Tags = strings.Split(tags, ",")
		}
		if score.Valid {
			v := score.Float64
			se.Entry.Score = &v
		}
		se.Entry.SourceFormat = domain.SourceFormat(sourceFormat)
		se.Entry.Label = domain.Category(label)
		entries = append(entries, se)
	}
	return entries, nil
}
