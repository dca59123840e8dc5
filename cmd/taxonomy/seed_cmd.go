package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/configuration"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

//go:embed dataset.json
var embeddedDataset []byte

type seedEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type seedIndicator struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Metric      string `json:"metric"`
	Axis        string `json:"axis"`
	Aggregation string `json:"aggregation"`
	Frequency   string `json:"frequency"`
}

type seedCriteria struct {
	seedEntry
	Indicators []seedIndicator `json:"indicators,omitempty"`
}

type seedIssue struct {
	seedEntry
	Criteria []seedCriteria `json:"criteria,omitempty"`
}

type seedScope struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type seedFramework struct {
	Standard seedEntry   `json:"standard"`
	Scopes   []seedScope `json:"scopes"`
	Issues   []seedIssue `json:"issues,omitempty"`
}

type seedSector struct {
	Name       string   `json:"name"`
	Subsectors []string `json:"subsectors,omitempty"`
}

type seedFile struct {
	Sectors    []seedSector    `json:"sectors"`
	Frameworks []seedFramework `json:"frameworks"`
}

type seedSummary struct {
	Created    int   `json:"created"`
	Reused     int   `json:"reused"`
	Skipped    int   `json:"skipped"`
	DurationMS int64 `json:"duration_ms"`
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the reference taxonomy dataset through the add-and-link pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := embeddedDataset
			if file != "" {
				var err error
				raw, err = os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read dataset: %w", err)
				}
			}
			var data seedFile
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("parse dataset: %w", err)
			}

			conf := configuration.Use()
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			repo := persistence.NewTaxonomyRepository()
			guard := dedup.NewGuardWithThreshold(repo, conf.Taxonomy.SimilarityThreshold)
			svc := services.NewTaxonomyService(repo, guard, eventbus.NewEventPublisher(conf.Logger()))

			start := time.Now()
			summary, err := runSeed(ctx, svc, &data)
			if err != nil {
				return err
			}
			summary.DurationMS = time.Since(start).Milliseconds()
			return writeJSON(summary)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Dataset path (defaults to the embedded reference dataset)")
	return cmd
}

// confirmSeed accepts every ambiguous match: the curated dataset is trusted,
// and reuse-by-name already folds true repeats.
func confirmSeed(_ context.Context, _ string, _ []dedup.Match) (bool, error) {
	return true, nil
}

func runSeed(ctx context.Context, svc *services.TaxonomyService, data *seedFile) (*seedSummary, error) {
	summary := &seedSummary{}

	add := func(cmd services.AddEntryCommand) error {
		res, err := svc.AddEntry(ctx, cmd, confirmSeed)
		if err != nil {
			if errors.Is(err, dedup.ErrAlreadyExists) {
				summary.Skipped++
				return nil
			}
			return fmt.Errorf("add %s %q: %w", cmd.Kind, cmd.Name, err)
		}
		if res.Reused {
			summary.Reused++
		} else {
			summary.Created++
		}
		return nil
	}

	for _, sector := range data.Sectors {
		if err := add(services.AddEntryCommand{Kind: taxonomy.KindSector, Name: sector.Name}); err != nil {
			return nil, err
		}
		for _, sub := range sector.Subsectors {
			err := add(services.AddEntryCommand{
				Kind:       taxonomy.KindSubsector,
				Name:       sub,
				SectorName: sector.Name,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for _, framework := range data.Frameworks {
		for _, rawScope := range framework.Scopes {
			scope := taxonomy.Scope{Kind: taxonomy.ScopeKind(rawScope.Kind), Name: rawScope.Name}
			err := add(services.AddEntryCommand{
				Kind:        taxonomy.KindStandard,
				Name:        framework.Standard.Name,
				Description: framework.Standard.Description,
				Scope:       scope,
			})
			if err != nil {
				return nil, err
			}

			issueScope := scope.WithStandard(framework.Standard.Name)
			for _, issue := range framework.Issues {
				err := add(services.AddEntryCommand{
					Kind:        taxonomy.KindIssue,
					Name:        issue.Name,
					Description: issue.Description,
					Scope:       issueScope,
				})
				if err != nil {
					return nil, err
				}

				criteriaScope := issueScope.WithIssue(issue.Name)
				for _, criteria := range issue.Criteria {
					err := add(services.AddEntryCommand{
						Kind:        taxonomy.KindCriteria,
						Name:        criteria.Name,
						Description: criteria.Description,
						Scope:       criteriaScope,
					})
					if err != nil {
						return nil, err
					}

					indicatorScope := criteriaScope.WithCriteria(criteria.Name)
					for _, indicator := range criteria.Indicators {
						err := add(services.AddEntryCommand{
							Kind:        taxonomy.KindIndicator,
							Name:        indicator.Name,
							Scope:       indicatorScope,
							Unit:        indicator.Unit,
							Metric:      taxonomy.IndicatorKind(indicator.Metric),
							Axis:        taxonomy.Axis(indicator.Axis),
							Aggregation: taxonomy.Aggregation(indicator.Aggregation),
							Frequency:   taxonomy.Frequency(indicator.Frequency),
						})
						if err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}

	return summary, nil
}
