package spotlight

import (
	"context"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Item is a quick-search result pointing at an application resource.
type Item struct {
	Label string `json:"label"`
	Link  string `json:"link"`
}

// DataSource serves quick-search results for a query. Modules register one
// per searchable collection.
type DataSource interface {
	Find(ctx context.Context, q string) []Item
}

type Spotlight struct {
	sources []DataSource
}

func New() *Spotlight {
	return &Spotlight{}
}

func (s *Spotlight) Register(src DataSource) {
	s.sources = append(s.sources, src)
}

func (s *Spotlight) Find(ctx context.Context, q string) []Item {
	var result []Item
	for _, src := range s.sources {
		result = append(result, src.Find(ctx, q)...)
	}
	return result
}

// RankItems fuzzy-ranks the given items against the query, case and
// diacritic folded, best matches first. Items that do not match at all are
// dropped.
func RankItems(q string, items []Item) []Item {
	words := make([]string, len(items))
	for i, it := range items {
		words[i] = it.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(q, words)
	sort.Sort(ranks)

	result := make([]Item, 0, len(ranks))
	for _, rank := range ranks {
		result = append(result, items[rank.OriginalIndex])
	}
	return result
}
