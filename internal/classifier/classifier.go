// Package classifier turns a raw knowledge-base blob into labeled entries
// and per-category statistics. It is a pure, synchronous pipeline: parse,
// categorize, aggregate. Malformed input degrades to an empty result rather
// than an error, since the text being classified is often mid-edit.
package classifier

import (
	"math"
	"sort"

	"github.com/pbaille/taxon/internal/domain"
)

// Result holds the classified entries and their aggregate statistics.
type Result struct {
	Entries []domain.KnowledgeEntry    `json:"entries"`
	Stats   []domain.CategoryStatistic `json:"stats"`
}

// Classify parses rawText, assigns exactly one label to every entry, and
// aggregates counts per category. It never fails.
func Classify(rawText string) Result {
	entries := ParseEntries(rawText)
	for i := range entries {
		entries[i].Label = Categorize(entries[i].ID, entries[i].Name, entries[i].Tags)
	}
	return Result{Entries: entries, Stats: Aggregate(entries)}
}

// Aggregate groups labeled entries by category. Percentages are rounded to
// one decimal place; zero entries yield zero stats rather than a division
// by zero. Sorted by count descending, ties broken lexically by label.
func Aggregate(entries []domain.KnowledgeEntry) []domain.CategoryStatistic {
	stats := []domain.CategoryStatistic{}
	if len(entries) == 0 {
		return stats
	}

	counts := make(map[domain.Category]int)
	for _, e := range entries {
		counts[e.Label]++
	}

	total := float64(len(entries))
	for label, count := range counts {
		stats = append(stats, domain.CategoryStatistic{
			Label:       label,
			Count:       count,
			Percentage:  math.Round(1000*float64(count)/total) / 10,
			Description: label.Description(),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Label < stats[j].Label
	})

	return stats
}
