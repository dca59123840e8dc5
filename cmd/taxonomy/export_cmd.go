package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/configuration"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

type exportIndicator struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Metric      string `json:"metric"`
	Axis        string `json:"axis"`
	Aggregation string `json:"aggregation"`
	Frequency   string `json:"frequency"`
}

type exportCriteria struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Indicators  []exportIndicator `json:"indicators"`
}

type exportIssue struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Criteria    []exportCriteria `json:"criteria"`
}

type exportStandard struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Issues      []exportIssue `json:"issues"`
}

type exportRoot struct {
	ScopeKind string           `json:"scope_kind"`
	ScopeName string           `json:"scope_name"`
	Standards []exportStandard `json:"standards"`
}

type exportSector struct {
	Name       string   `json:"name"`
	Subsectors []string `json:"subsectors"`
}

type exportFile struct {
	Sectors []exportSector `json:"sectors"`
	Roots   []exportRoot   `json:"roots"`
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the full taxonomy graph as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out, err := exportGraph(ctx, svc)
			if err != nil {
				return err
			}
			return writeJSON(out)
		},
	}
	return cmd
}

func exportGraph(ctx context.Context, svc *services.TaxonomyService) (*exportFile, error) {
	out := &exportFile{
		Sectors: []exportSector{},
		Roots:   []exportRoot{},
	}

	sectors, err := svc.Sectors(ctx)
	if err != nil {
		return nil, err
	}

	var roots []taxonomy.Scope
	for _, sector := range sectors {
		subsectors, err := svc.Subsectors(ctx, sector.Name)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(subsectors))
		for i, sub := range subsectors {
			names[i] = sub.Name
		}
		out.Sectors = append(out.Sectors, exportSector{Name: sector.Name, Subsectors: names})

		roots = append(roots, taxonomy.SectorScope(sector.Name))
		for _, sub := range subsectors {
			roots = append(roots, taxonomy.SubsectorScope(sub.Name))
		}
	}

	for _, scope := range roots {
		root, err := exportScope(ctx, svc, scope)
		if err != nil {
			return nil, err
		}
		if len(root.Standards) > 0 {
			out.Roots = append(out.Roots, *root)
		}
	}
	return out, nil
}

func exportScope(ctx context.Context, svc *services.TaxonomyService, scope taxonomy.Scope) (*exportRoot, error) {
	root := &exportRoot{
		ScopeKind: string(scope.Kind),
		ScopeName: scope.Name,
		Standards: []exportStandard{},
	}

	standards, err := svc.Children(ctx, taxonomy.KindStandard, scope)
	if err != nil {
		return nil, err
	}
	for _, standard := range standards {
		issueScope := scope.WithStandard(standard.Name)
		issues, err := svc.Children(ctx, taxonomy.KindIssue, issueScope)
		if err != nil {
			return nil, err
		}

		std := exportStandard{
			Code:        standard.Code,
			Name:        standard.Name,
			Description: standard.Description,
			Issues:      []exportIssue{},
		}
		for _, issue := range issues {
			criteriaScope := issueScope.WithIssue(issue.Name)
			criteria, err := svc.Children(ctx, taxonomy.KindCriteria, criteriaScope)
			if err != nil {
				return nil, err
			}

			iss := exportIssue{
				Code:        issue.Code,
				Name:        issue.Name,
				Description: issue.Description,
				Criteria:    []exportCriteria{},
			}
			for _, crit := range criteria {
				indicatorScope := criteriaScope.WithCriteria(crit.Name)
				indicators, err := svc.Children(ctx, taxonomy.KindIndicator, indicatorScope)
				if err != nil {
					return nil, err
				}

				cr := exportCriteria{
					Code:        crit.Code,
					Name:        crit.Name,
					Description: crit.Description,
					Indicators:  []exportIndicator{},
				}
				for _, entry := range indicators {
					ind, err := svc.Indicator(ctx, entry.Code)
					if err != nil {
						return nil, err
					}
					cr.Indicators = append(cr.Indicators, exportIndicator{
						Code:        ind.Code,
						Name:        ind.Name,
						Unit:        ind.Unit,
						Metric:      string(ind.Kind),
						Axis:        string(ind.Axis),
						Aggregation: string(ind.Aggregation),
						Frequency:   string(ind.Frequency),
					})
				}
				iss.Criteria = append(iss.Criteria, cr)
			}
			std.Issues = append(std.Issues, iss)
		}
		root.Standards = append(root.Standards, std)
	}
	return root, nil
}
