package spotlight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	items []Item
}

func (s *staticSource) Find(_ context.Context, q string) []Item {
	return RankItems(q, s.items)
}

func TestSpotlight_Find(t *testing.T) {
	sl := New()
	sl.Register(&staticSource{items: []Item{
		{Label: "Émissions directes", Link: "/taxonomy/issues/EMISSIONSDIRECTES"},
		{Label: "Biodiversity", Link: "/taxonomy/issues/BIODIVERSITY"},
		{Label: "Water usage", Link: "/taxonomy/indicators/WATERUSAGE"},
	}})

	items := sl.Find(context.Background(), "emissions")
	assert.Len(t, items, 1)
	assert.Equal(t, "Émissions directes", items[0].Label)
}

func TestRankItems_BestMatchFirst(t *testing.T) {
	items := []Item{
		{Label: "Governance training hours"},
		{Label: "Training"},
	}
	ranked := RankItems("training", items)
	assert.Len(t, ranked, 2)
	assert.Equal(t, "Training", ranked[0].Label)
}

func TestRankItems_NoMatch(t *testing.T) {
	ranked := RankItems("zzz", []Item{{Label: "Biodiversity"}})
	assert.Empty(t, ranked)
}
