package submission

import "strings"

// AccessTier identifies which authorization rule granted access.
type AccessTier string

const (
	// TierPrivileged means a faculty/admin-class group membership matched
	TierPrivileged AccessTier = "privileged"

	// TierOwner means a student accessed their own record
	TierOwner AccessTier = "owner"
)

// Decision is the outcome of one access check.
type Decision struct {
	Allowed bool
	Tier    AccessTier
}

// AccessPolicy decides whether a caller may read a submission record.
type AccessPolicy struct {
	// PrivilegedGroups grant access to any record.
	PrivilegedGroups []string

	// StudentGroup members may access records they own.
	StudentGroup string
}

// DefaultAccessPolicy mirrors the deployed identity pool groups.
func DefaultAccessPolicy() AccessPolicy {
	return AccessPolicy{
		PrivilegedGroups: []string{"Faculty", "Admin"},
		StudentGroup:     "Students",
	}
}

// Decide evaluates the rules in order: privileged group first, then
// student ownership, otherwise deny. Privileged callers are allowed
// regardless of ownership.
func (p AccessPolicy) Decide(claims Claims, record *Record) Decision {
	groups := NormalizeGroups(claims.Groups)

	for _, g := range p.PrivilegedGroups {
		if _, ok := groups[g]; ok {
			return Decision{Allowed: true, Tier: TierPrivileged}
		}
	}

	if _, ok := groups[p.StudentGroup]; ok && record.StudentID == claims.Subject {
		return Decision{Allowed: true, Tier: TierOwner}
	}

	return Decision{}
}

// NormalizeGroups splits a raw group-membership claim into a set. The
// claim may arrive comma-separated or whitespace-separated depending on
// the authorizer, so both are treated as separators.
func NormalizeGroups(raw string) map[string]struct{} {
	groups := make(map[string]struct{})
	if raw == "" {
		return groups
	}
	for _, g := range strings.Fields(strings.ReplaceAll(raw, ",", " ")) {
		groups[strings.TrimSpace(g)] = struct{}{}
	}
	return groups
}
