package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	vOnce sync.Once
	vInst *validator.Validate
)

func structValidator() *validator.Validate {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report yaml key names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("yaml")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" {
				return fld.Name
			}
			return tag
		})
		vInst = v
	})
	return vInst
}

// Validate checks field constraints and returns every violation at once.
func Validate(cfg Config) error {
	err := structValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			lines = append(lines, fmt.Sprintf("%s failed %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			lines = append(lines, fmt.Sprintf("%s failed %s", ns, fe.Tag()))
		}
	}
	return errors.New("config validation failed:\n- " + strings.Join(lines, "\n- "))
}

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy (trimmed, deduplicated
// lists, merged company maps) plus errors and softer warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Targets.Keywords = trimList(out.Targets.Keywords)
	out.Targets.Locations = trimList(out.Targets.Locations)
	out.Targets.QualifyingKeywords = trimList(out.Targets.QualifyingKeywords)
	out.Targets.SeniorityKeywords = trimList(out.Targets.SeniorityKeywords)
	out.Targets.Schools = trimList(out.Targets.Schools)
	out.Sources.Keywords = trimList(out.Sources.Keywords)

	if len(out.Targets.Locations) == 0 && out.Targets.LocationPairs != "" {
		out.Targets.Locations = SplitLocationPairs(out.Targets.LocationPairs)
	}

	var err error
	out.Sources.Greenhouse.Companies, err = mergeCompanyMap(out.Sources.Greenhouse.Companies, out.Sources.Greenhouse.CompanyMap)
	if err != nil {
		res.addErr("sources.greenhouse.company_map: %v", err)
	}
	out.Sources.Lever.Companies, err = mergeCompanyMap(out.Sources.Lever.Companies, out.Sources.Lever.CompanyMap)
	if err != nil {
		res.addErr("sources.lever.company_map: %v", err)
	}

	if err := Validate(out); err != nil {
		res.addErr("%v", err)
	}

	// ---- softer rules ----

	if out.Search.PeopleSearch && len(out.Targets.Locations) == 0 {
		res.addErr("search.people_search needs at least one targets.locations entry")
	}
	if out.Search.AlumniSearch && len(out.Targets.Schools) == 0 {
		res.addWarn("search.alumni_search is on but targets.schools is empty; nothing to search.")
	}
	if !out.Search.PeopleSearch && !out.Search.AlumniSearch &&
		!out.Sources.Greenhouse.Enabled && !out.Sources.Lever.Enabled {
		res.addWarn("no sources enabled: turn on people_search, alumni_search, Greenhouse or Lever")
	}
	if out.Sources.Greenhouse.Enabled && len(out.Sources.Greenhouse.Companies) == 0 {
		res.addWarn("greenhouse is enabled but has no companies")
	}
	if out.Sources.Lever.Enabled && len(out.Sources.Lever.Companies) == 0 {
		res.addWarn("lever is enabled but has no companies")
	}
	if len(out.Targets.SeniorityKeywords) == 0 {
		res.addWarn("targets.seniority_keywords is empty; senior roles will qualify.")
	}
	if out.App.ScheduleMinutes > 0 && out.App.ScheduleMinutes < 15 {
		res.addWarn("app.schedule_minutes is very low (%d) and may exhaust search quota.", out.App.ScheduleMinutes)
	}

	// simple conflict check
	senior := map[string]bool{}
	for _, s := range out.Targets.SeniorityKeywords {
		senior[strings.ToLower(s)] = true
	}
	for _, k := range out.Targets.QualifyingKeywords {
		if senior[strings.ToLower(k)] {
			res.addWarn("keyword appears in both qualifying and seniority lists: %q", k)
		}
	}

	return out, res
}
