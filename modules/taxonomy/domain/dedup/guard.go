package dedup

import (
	"context"
	"sort"

	"github.com/go-faster/errors"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/similarity"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/pkg/serrors"
)

const DefaultThreshold = 0.3

// ErrAlreadyExists signals a strict-policy exact duplicate. The guard never
// invokes the confirmation callback in this case.
var ErrAlreadyExists = serrors.NewError(
	"TAXONOMY_ALREADY_EXISTS",
	"an entry with this name already exists",
	"Taxonomy.Errors.AlreadyExists",
)

// Match is an existing corpus entry similar to the candidate name.
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ConfirmFunc resolves an ambiguous match: it receives the candidate and the
// similar entries, and returns true to add anyway. A nil ConfirmFunc means
// similar-but-not-identical candidates proceed without confirmation.
type ConfirmFunc func(ctx context.Context, candidate string, matches []Match) (bool, error)

// CorpusProvider serves the full unscoped name corpus for a taxonomy level.
type CorpusProvider interface {
	Names(ctx context.Context, kind taxonomy.Kind) ([]string, error)
}

// Guard is the policy layer deciding block/warn/allow for new taxonomy
// entries.
type Guard struct {
	corpus    CorpusProvider
	policies  map[taxonomy.Kind]Policy
	threshold float64
}

func NewGuard(corpus CorpusProvider) *Guard {
	return NewGuardWithThreshold(corpus, DefaultThreshold)
}

func NewGuardWithThreshold(corpus CorpusProvider, threshold float64) *Guard {
	return &Guard{
		corpus:    corpus,
		policies:  DefaultPolicies(),
		threshold: threshold,
	}
}

// ValidateAdd decides whether a new entry with the candidate name may be
// added at the given level. It returns false with ErrAlreadyExists for
// strict-policy exact duplicates, false with a nil error when the user
// declined an ambiguous match, and true when the add may proceed. A corpus
// fetch failure is returned as-is; the caller must not treat it as
// permission to add.
func (g *Guard) ValidateAdd(ctx context.Context, kind taxonomy.Kind, candidate string, confirm ConfirmFunc) (bool, error) {
	names, err := g.corpus.Names(ctx, kind)
	if err != nil {
		return false, errors.Wrap(err, "failed to fetch name corpus")
	}

	matches := g.similar(candidate, names)

	policy, ok := g.policies[kind]
	if !ok {
		policy = PolicyStrict
	}

	if policy == PolicyStrict {
		for _, m := range matches {
			if similarity.EqualFold(candidate, m.Name) {
				return false, ErrAlreadyExists
			}
		}
	}

	if len(matches) == 0 {
		return true, nil
	}
	if confirm == nil {
		return true, nil
	}
	return confirm(ctx, candidate, matches)
}

// similar retains corpus entries scoring above the threshold, best first.
func (g *Guard) similar(candidate string, names []string) []Match {
	var matches []Match
	for _, name := range names {
		score := similarity.Score(candidate, name)
		if score > g.threshold {
			matches = append(matches, Match{Name: name, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
