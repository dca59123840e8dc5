package dedup

import "github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"

// Policy decides how the guard treats a candidate that collides with the
// existing corpus.
type Policy string

const (
	// PolicyStrict hard-rejects exact duplicates. Structural levels keep a
	// clean hierarchy this way.
	PolicyStrict Policy = "strict"
	// PolicyPermissive never hard-rejects: the same measurable quantity
	// legitimately attaches to many scopes, so exact matches only prompt
	// for confirmation.
	PolicyPermissive Policy = "permissive"
)

// DefaultPolicies is the per-level dedup policy table. Sectors, subsectors,
// standards and issues are structural and strictly deduplicated; criteria
// and indicators are reusable across scopes.
func DefaultPolicies() map[taxonomy.Kind]Policy {
	return map[taxonomy.Kind]Policy{
		taxonomy.KindSector:    PolicyStrict,
		taxonomy.KindSubsector: PolicyStrict,
		taxonomy.KindStandard:  PolicyStrict,
		taxonomy.KindIssue:     PolicyStrict,
		taxonomy.KindCriteria:  PolicyPermissive,
		taxonomy.KindIndicator: PolicyPermissive,
	}
}
