package rank

import (
	"reflect"
	"testing"

	"leadhunt-engine/internal/domain"
)

func pmCriteria() Criteria {
	return NewCriteria(
		[]string{"new york, ny"},
		[]string{"Product Manager"},
		nil,
		[]string{"Senior"},
	)
}

func TestQualifies(t *testing.T) {
	c := pmCriteria()
	tests := []struct {
		name   string
		lead   domain.Lead
		want   bool
		reason string
	}{
		{"mid level pm", domain.Lead{Role: "Product Manager", LocationRaw: "New York, NY"}, true, ""},
		{"senior pm", domain.Lead{Role: "Senior Product Manager", LocationRaw: "New York, NY"}, false, "seniority"},
		{"wrong city", domain.Lead{Role: "Product Manager", LocationRaw: "Austin, TX"}, false, "location"},
		{"wrong role", domain.Lead{Role: "Software Engineer", LocationRaw: "New York, NY"}, false, "no_keyword_match"},
		{"empty role", domain.Lead{LocationRaw: "New York, NY"}, false, "missing_role_or_location"},
		{"empty location", domain.Lead{Role: "Product Manager"}, false, "missing_role_or_location"},
		{"normalized wins", domain.Lead{Role: "product manager", LocationRaw: "x", LocationNormalized: "Brooklyn, New York, NY"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Qualifies(tt.lead); got != tt.want {
				t.Errorf("Qualifies = %v, want %v", got, tt.want)
			}
			if _, reason := c.Explain(tt.lead); reason != tt.reason {
				t.Errorf("reason = %q, want %q", reason, tt.reason)
			}
		})
	}
}

func TestQualifyingBandIsSeparateFromTargets(t *testing.T) {
	c := NewCriteria(
		[]string{"new york, ny"},
		[]string{"Manager"},
		[]string{"Product Manager"},
		[]string{"Director"},
	)
	if !c.Qualifies(domain.Lead{Role: "Product Manager", LocationRaw: "New York, NY"}) {
		t.Fatalf("product manager should qualify")
	}
	if c.Qualifies(domain.Lead{Role: "Engineering Manager", LocationRaw: "New York, NY"}) {
		t.Fatalf("engineering manager is a target but not qualifying")
	}
}

func TestScore(t *testing.T) {
	c := pmCriteria()
	company := &domain.CompanyProfile{Name: "Acme"}
	tests := []struct {
		name string
		lead domain.Lead
		want int
	}{
		{"full house", domain.Lead{Role: "Product Manager", LocationRaw: "New York, NY", Company: company}, 14},
		{"senior", domain.Lead{Role: "Senior Product Manager", LocationRaw: "New York, NY", Company: company}, 11},
		{"no company", domain.Lead{Role: "Product Manager", LocationRaw: "New York, NY"}, 12},
		{"location only", domain.Lead{Role: "Chef", LocationRaw: "New York, NY"}, 4},
		{"unmatched", domain.Lead{Role: "Chef", LocationRaw: "Paris"}, 0},
		{"empty", domain.Lead{}, 0},
	}
	for _, tt := range tests {
		if got := c.Score(tt.lead); got != tt.want {
			t.Errorf("%s: Score = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestApplyAndSortByScoreIsStable(t *testing.T) {
	c := pmCriteria()
	leads := []domain.Lead{
		{Name: "a", Role: "Chef", LocationRaw: "New York, NY"},
		{Name: "b", Role: "Product Manager", LocationRaw: "New York, NY"},
		{Name: "c", Role: "Baker", LocationRaw: "New York, NY"},
		{Name: "d", Role: "Product Manager", LocationRaw: "New York, NY"},
	}
	scored := Apply(c, leads)
	if leads[0].Score != nil {
		t.Fatalf("Apply mutated its input")
	}
	SortByScore(scored)

	var names []string
	for _, l := range scored {
		names = append(names, l.Name)
	}
	if want := []string{"b", "d", "a", "c"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
}
