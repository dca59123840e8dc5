package persistence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence"
)

func TestTaxonomyRepository_AddAndLink(t *testing.T) {
	env := itfEnv(t)
	repo := persistence.NewTaxonomyRepository()
	ctx := env.Ctx

	require.NoError(t, repo.CreateSector(ctx, taxonomy.Sector{Name: "Energy"}))
	require.NoError(t, repo.CreateSubsector(ctx, taxonomy.Subsector{Name: "Renewables", SectorName: "Energy"}))
	require.NoError(t, repo.CreateStandard(ctx, taxonomy.Standard{Code: "GRI", Name: "GRI"}))

	scope := taxonomy.SectorScope("Energy")
	require.NoError(t, repo.LinkChild(ctx, taxonomy.KindStandard, scope, "GRI"))

	children, err := repo.Children(ctx, taxonomy.KindStandard, scope)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "GRI", children[0].Code)

	// Relinking the same code leaves a single occurrence.
	require.NoError(t, repo.LinkChild(ctx, taxonomy.KindStandard, scope, "GRI"))
	children, err = repo.Children(ctx, taxonomy.KindStandard, scope)
	require.NoError(t, err)
	require.Len(t, children, 1)

	entry, err := repo.FindByName(ctx, taxonomy.KindStandard, "GRI")
	require.NoError(t, err)
	assert.Equal(t, "GRI", entry.Code)

	_, err = repo.FindByName(ctx, taxonomy.KindStandard, "SASB")
	require.ErrorIs(t, err, taxonomy.ErrNotFound)

	names, err := repo.Names(ctx, taxonomy.KindStandard)
	require.NoError(t, err)
	assert.Equal(t, []string{"GRI"}, names)

	subs, err := repo.Subsectors(ctx, "Energy")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Renewables", subs[0].Name)
}

func TestTaxonomyRepository_EmptyScopeYieldsNoChildren(t *testing.T) {
	env := itfEnv(t)
	repo := persistence.NewTaxonomyRepository()

	children, err := repo.Children(env.Ctx, taxonomy.KindStandard, taxonomy.SectorScope("Nowhere"))
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestTaxonomyRepository_IndicatorMetadataRoundTrip(t *testing.T) {
	env := itfEnv(t)
	repo := persistence.NewTaxonomyRepository()
	ctx := env.Ctx

	ind := taxonomy.Indicator{
		Code:        "SCOPE1GHGEMISSIONS",
		Name:        "Scope 1 GHG emissions",
		Unit:        "tCO2e",
		Kind:        taxonomy.IndicatorPrimary,
		Axis:        taxonomy.AxisEnvironment,
		Aggregation: taxonomy.AggregationSum,
		Frequency:   taxonomy.FrequencyAnnual,
	}
	require.NoError(t, repo.CreateIndicator(ctx, ind))

	got, err := repo.Indicator(ctx, ind.Code)
	require.NoError(t, err)
	assert.Equal(t, ind, *got)
}
