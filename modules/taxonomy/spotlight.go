package taxonomy

import (
	"context"
	"fmt"

	taxonomydomain "github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/spotlight"
)

// entriesDataSource serves taxonomy entries to the quick-search bar.
type entriesDataSource struct {
	taxonomy *services.TaxonomyService
}

func (d *entriesDataSource) Find(ctx context.Context, q string) []spotlight.Item {
	var items []spotlight.Item
	for _, kind := range []taxonomydomain.Kind{
		taxonomydomain.KindStandard,
		taxonomydomain.KindIssue,
		taxonomydomain.KindCriteria,
		taxonomydomain.KindIndicator,
	} {
		names, err := d.taxonomy.Names(ctx, kind)
		if err != nil {
			continue
		}
		for _, name := range names {
			items = append(items, spotlight.Item{
				Label: name,
				Link:  fmt.Sprintf("/taxonomy/%s?q=%s", kind, name),
			})
		}
	}
	return spotlight.RankItems(q, items)
}
