package rank

import (
	"sort"

	"leadhunt-engine/internal/domain"
)

const (
	pointsRole       = 5
	pointsQualifying = 3
	pointsLocation   = 4
	pointsCompany    = 2
)

// Score awards points for a target role, an extra bump for the qualifying
// band when the role is not senior, a target location and the presence of
// company enrichment.
func (c Criteria) Score(l domain.Lead) int {
	score := 0
	role := leadRole(l)
	loc := leadLocation(l)

	if role != "" && containsAny(role, c.TargetKeywords) {
		score += pointsRole
		if containsAny(role, c.qualifying()) && !containsAny(role, c.SeniorityKeywords) {
			score += pointsQualifying
		}
	}
	if loc != "" && containsAny(loc, c.TargetLocations) {
		score += pointsLocation
	}
	if l.Company != nil {
		score += pointsCompany
	}
	return score
}

// Apply sets Score on a copy of every lead.
func Apply(s Scorer, leads []domain.Lead) []domain.Lead {
	out := make([]domain.Lead, len(leads))
	for i, l := range leads {
		l = l.Clone()
		v := s.Score(l)
		l.Score = &v
		out[i] = l
	}
	return out
}

// SortByScore orders leads by descending score, keeping input order among
// ties. Unscored leads count as zero.
func SortByScore(leads []domain.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return scoreOf(leads[i]) > scoreOf(leads[j])
	})
}

func scoreOf(l domain.Lead) int {
	if l.Score == nil {
		return 0
	}
	return *l.Score
}
