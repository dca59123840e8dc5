package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

func newTestService(t *testing.T) (*services.TaxonomyService, *persistence.MemoryTaxonomyRepository) {
	t.Helper()
	repo := persistence.NewMemoryTaxonomyRepository()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := services.NewTaxonomyService(repo, dedup.NewGuard(repo), eventbus.NewEventPublisher(log))
	return svc, repo
}

func issueScope(t *testing.T, svc *services.TaxonomyService) taxonomy.Scope {
	t.Helper()
	ctx := context.Background()

	_, err := svc.AddEntry(ctx, services.AddEntryCommand{Kind: taxonomy.KindSector, Name: "Energy"}, nil)
	require.NoError(t, err)

	scope := taxonomy.SectorScope("Energy")
	_, err = svc.AddEntry(ctx, services.AddEntryCommand{Kind: taxonomy.KindStandard, Name: "GRI", Scope: scope}, nil)
	require.NoError(t, err)

	return scope.WithStandard("GRI")
}

func TestAddEntry_CreatesAndLinks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	scope := issueScope(t, svc)

	res, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind:  taxonomy.KindIssue,
		Name:  "Climate Change",
		Scope: scope,
	}, nil)
	require.NoError(t, err)
	assert.False(t, res.Reused)
	assert.Equal(t, "CLIMATECHANGE", res.Entry.Code)

	children, err := svc.Children(ctx, taxonomy.KindIssue, scope)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Climate Change", children[0].Name)
}

func TestAddEntry_LinkIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	scope := issueScope(t, svc)

	confirm := func(context.Context, string, []dedup.Match) (bool, error) { return true, nil }

	_, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindCriteria, Name: "Water Use", Scope: scope.WithIssue("WATER"),
	}, confirm)
	require.NoError(t, err)

	res, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindCriteria, Name: "Water Use", Scope: scope.WithIssue("WATER"),
	}, confirm)
	require.NoError(t, err)
	assert.True(t, res.Reused)

	children, err := svc.Children(ctx, taxonomy.KindCriteria, scope.WithIssue("WATER"))
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestAddEntry_InvalidScopeWritesNothing(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// Issues need a standard in the scope tuple.
	_, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind:  taxonomy.KindIssue,
		Name:  "Climate Change",
		Scope: taxonomy.SectorScope("Energy"),
	}, nil)
	require.Error(t, err)

	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "TAXONOMY_INVALID_SCOPE", svcErr.Code)

	// The rejected add must not leave an unlinked entity behind.
	_, err = repo.FindByName(ctx, taxonomy.KindIssue, "Climate Change")
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)
}

func TestChildren_UnknownScopeIsEmptyNotError(t *testing.T) {
	svc, _ := newTestService(t)

	children, err := svc.Children(context.Background(), taxonomy.KindStandard, taxonomy.SectorScope("Nowhere"))
	require.NoError(t, err)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}

func TestAddEntry_StrictDuplicateBlockedWithoutCallback(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	scope := issueScope(t, svc)

	_, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindIssue, Name: "Émissions directes", Scope: scope,
	}, nil)
	require.NoError(t, err)

	called := false
	confirm := func(context.Context, string, []dedup.Match) (bool, error) {
		called = true
		return true, nil
	}

	// Case and accent insensitive exact duplicate.
	_, err = svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindIssue, Name: "emissions directes", Scope: scope,
	}, confirm)
	require.ErrorIs(t, err, dedup.ErrAlreadyExists)
	assert.False(t, called)
}

func TestAddEntry_AmbiguousMatchConfirmedProceeds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	scope := issueScope(t, svc)

	_, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindIssue, Name: "Émissions directes", Scope: scope,
	}, nil)
	require.NoError(t, err)

	var seen []dedup.Match
	confirm := func(_ context.Context, _ string, matches []dedup.Match) (bool, error) {
		seen = matches
		return true, nil
	}

	res, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindIssue, Name: "Émissions indirectes", Scope: scope,
	}, confirm)
	require.NoError(t, err)
	assert.False(t, res.Blocked)
	require.NotEmpty(t, seen)
	assert.Equal(t, "Émissions directes", seen[0].Name)

	children, err := svc.Children(ctx, taxonomy.KindIssue, scope)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestAddEntry_AmbiguousMatchDeclinedNothingWritten(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	scope := issueScope(t, svc)

	_, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindIssue, Name: "Émissions directes", Scope: scope,
	}, nil)
	require.NoError(t, err)

	decline := func(context.Context, string, []dedup.Match) (bool, error) { return false, nil }

	res, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindIssue, Name: "Émissions indirectes", Scope: scope,
	}, decline)
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.NotEmpty(t, res.Matches)

	children, err := svc.Children(ctx, taxonomy.KindIssue, scope)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestAddEntry_CodeCollisionWithDifferentNameConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	scope := issueScope(t, svc)

	confirm := func(context.Context, string, []dedup.Match) (bool, error) { return true, nil }

	_, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindCriteria, Name: "water use", Scope: scope.WithIssue("WATER"),
	}, confirm)
	require.NoError(t, err)

	// Same synthesized code WATERUSE, different display name.
	_, err = svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindCriteria, Name: "Wate rUse", Scope: scope.WithIssue("WATER"),
	}, confirm)
	require.Error(t, err)

	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "TAXONOMY_CODE_CONFLICT", svcErr.Code)
}

func TestAddEntry_BlankNameRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddEntry(context.Background(), services.AddEntryCommand{
		Kind: taxonomy.KindSector, Name: "   ",
	}, nil)
	require.Error(t, err)

	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "TAXONOMY_NAME_REQUIRED", svcErr.Code)
}

func TestAddEntry_ConcurrentLinksYieldSingleJunctionEntry(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	scope := issueScope(t, svc)

	_, err := svc.AddEntry(ctx, services.AddEntryCommand{
		Kind: taxonomy.KindIssue, Name: "Biodiversity", Scope: scope,
	}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.LinkChild(ctx, taxonomy.KindIssue, scope, "BIODIVERSITY")
		}()
	}
	wg.Wait()

	children, err := svc.Children(ctx, taxonomy.KindIssue, scope)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestSynthesizeCode(t *testing.T) {
	assert.Equal(t, "CLIMATECHANGE", services.SynthesizeCode("Climate Change"))
	assert.Equal(t, "GRI", services.SynthesizeCode("  gri "))
	assert.Equal(t, "ÉMISSIONSDIRECTES", services.SynthesizeCode("Émissions directes"))
}
