package rank

import "leadhunt-engine/internal/domain"

// Qualifies reports whether the lead is in a target location, holds a
// target role and sits in the qualifying (non-senior) band.
func (c Criteria) Qualifies(l domain.Lead) bool {
	ok, _ := c.Explain(l)
	return ok
}

// Explain is Qualifies plus the first failed check, for skip logs.
func (c Criteria) Explain(l domain.Lead) (keep bool, reason string) {
	loc := leadLocation(l)
	role := leadRole(l)
	if loc == "" || role == "" {
		return false, "missing_role_or_location"
	}

	if !containsAny(loc, c.TargetLocations) {
		return false, "location"
	}
	if !containsAny(role, c.TargetKeywords) {
		return false, "no_keyword_match"
	}
	if containsAny(role, c.SeniorityKeywords) {
		return false, "seniority"
	}
	if !containsAny(role, c.qualifying()) {
		return false, "not_qualifying"
	}
	return true, ""
}
