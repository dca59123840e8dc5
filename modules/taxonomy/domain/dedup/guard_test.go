package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
)

type fakeCorpus struct {
	names map[taxonomy.Kind][]string
	err   error
}

func (f *fakeCorpus) Names(_ context.Context, kind taxonomy.Kind) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.names[kind], nil
}

func TestValidateAdd_StrictExactMatchRejectsWithoutCallback(t *testing.T) {
	guard := NewGuard(&fakeCorpus{names: map[taxonomy.Kind][]string{
		taxonomy.KindSector: {"Agriculture", "Energy"},
	}})

	callbackInvoked := false
	ok, err := guard.ValidateAdd(context.Background(), taxonomy.KindSector, "agriculture",
		func(_ context.Context, _ string, _ []Match) (bool, error) {
			callbackInvoked = true
			return true, nil
		})

	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.False(t, callbackInvoked, "exact match must not reach the confirmation callback")
}

func TestValidateAdd_StrictPluralMatchRejects(t *testing.T) {
	guard := NewGuard(&fakeCorpus{names: map[taxonomy.Kind][]string{
		taxonomy.KindIssue: {"Risques"},
	}})

	ok, err := guard.ValidateAdd(context.Background(), taxonomy.KindIssue, "Risque", nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestValidateAdd_PermissiveExactMatchAsksConfirmation(t *testing.T) {
	guard := NewGuard(&fakeCorpus{names: map[taxonomy.Kind][]string{
		taxonomy.KindCriteria: {"CO2 emissions"},
	}})

	var gotMatches []Match
	ok, err := guard.ValidateAdd(context.Background(), taxonomy.KindCriteria, "CO2 emissions",
		func(_ context.Context, _ string, matches []Match) (bool, error) {
			gotMatches = matches
			return true, nil
		})

	require.NoError(t, err)
	assert.True(t, ok, "criteria reuse must be permitted on confirmation")
	require.Len(t, gotMatches, 1)
	assert.Equal(t, 1.0, gotMatches[0].Score)
}

func TestValidateAdd_AmbiguousDeclined(t *testing.T) {
	guard := NewGuard(&fakeCorpus{names: map[taxonomy.Kind][]string{
		taxonomy.KindSector: {"Émissions directes"},
	}})

	ok, err := guard.ValidateAdd(context.Background(), taxonomy.KindSector, "Émissions indirectes",
		func(_ context.Context, _ string, matches []Match) (bool, error) {
			require.Len(t, matches, 1)
			assert.Greater(t, matches[0].Score, 0.3)
			assert.Less(t, matches[0].Score, 1.0)
			return false, nil
		})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateAdd_NoSimilarEntriesProceeds(t *testing.T) {
	guard := NewGuard(&fakeCorpus{names: map[taxonomy.Kind][]string{
		taxonomy.KindStandard: {"ISO 14001"},
	}})

	ok, err := guard.ValidateAdd(context.Background(), taxonomy.KindStandard, "GRI 305",
		func(_ context.Context, _ string, _ []Match) (bool, error) {
			t.Fatal("callback must not be invoked without similar entries")
			return false, nil
		})

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateAdd_NilCallbackProceedsOnAmbiguous(t *testing.T) {
	guard := NewGuard(&fakeCorpus{names: map[taxonomy.Kind][]string{
		taxonomy.KindIndicator: {"Water usage"},
	}})

	ok, err := guard.ValidateAdd(context.Background(), taxonomy.KindIndicator, "Water usage total", nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateAdd_CorpusFailureNeverAllows(t *testing.T) {
	guard := NewGuard(&fakeCorpus{err: errors.New("connection refused")})

	ok, err := guard.ValidateAdd(context.Background(), taxonomy.KindSector, "Energy", nil)
	assert.False(t, ok)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
}

func TestValidateAdd_MatchesSortedBestFirst(t *testing.T) {
	guard := NewGuard(&fakeCorpus{names: map[taxonomy.Kind][]string{
		taxonomy.KindCriteria: {"Water stress", "Water", "Waste"},
	}})

	var gotMatches []Match
	_, err := guard.ValidateAdd(context.Background(), taxonomy.KindCriteria, "Waters",
		func(_ context.Context, _ string, matches []Match) (bool, error) {
			gotMatches = matches
			return false, nil
		})

	require.NoError(t, err)
	require.NotEmpty(t, gotMatches)
	for i := 1; i < len(gotMatches); i++ {
		assert.GreaterOrEqual(t, gotMatches[i-1].Score, gotMatches[i].Score)
	}
}
