package rules

import (
	"slices"
	"strings"
)

// DefaultRuleSet names the rules that are not part of any explicit rule set.
const DefaultRuleSet = "default"

// CascadeMode controls whether validation continues after the first failure.
type CascadeMode int

const (
	// CascadeContinue reports every failure.
	CascadeContinue CascadeMode = iota

	// CascadeStop reports only the first failure.
	CascadeStop
)

// Options customizes the strategy for a single validation run.
type Options func(*Strategy)

// Strategy selects which rules a validator runs. The zero value runs every
// property in the default rule set and reports every failure.
type Strategy struct {
	properties     []string
	ruleSets       []string
	allRuleSets    bool
	includeDefault bool
	cascade        CascadeMode
}

// NewStrategy builds a strategy from opts, skipping nil entries.
func NewStrategy(opts ...Options) *Strategy {
	s := &Strategy{}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// IncludeProperties restricts validation to the given property paths and
// anything nested beneath them.
func (s *Strategy) IncludeProperties(paths ...string) *Strategy {
	s.properties = append(s.properties, paths...)

	return s
}

// IncludeRuleSets runs the named rule sets instead of the default one.
func (s *Strategy) IncludeRuleSets(names ...string) *Strategy {
	s.ruleSets = append(s.ruleSets, names...)

	return s
}

// IncludeAllRuleSets runs every rule regardless of rule set.
func (s *Strategy) IncludeAllRuleSets() *Strategy {
	s.allRuleSets = true

	return s
}

// IncludeRulesNotInRuleSet adds the default rule set to explicitly selected ones.
func (s *Strategy) IncludeRulesNotInRuleSet() *Strategy {
	s.includeDefault = true

	return s
}

// StopOnFirstFailure sets CascadeStop.
func (s *Strategy) StopOnFirstFailure() *Strategy {
	s.cascade = CascadeStop

	return s
}

// Properties returns the selected property paths; empty means all.
func (s *Strategy) Properties() []string {
	return slices.Clone(s.properties)
}

// Cascade returns the cascade mode.
func (s *Strategy) Cascade() CascadeMode {
	return s.cascade
}

// IncludesProperty reports whether a rule on path should run.
func (s *Strategy) IncludesProperty(path string) bool {
	if len(s.properties) == 0 {
		return true
	}

	for _, p := range s.properties {
		if path == p ||
			strings.HasPrefix(path, p+".") ||
			strings.HasPrefix(path, p+"[") {
			return true
		}
	}

	return false
}

// IncludesRuleSet reports whether rules in set should run. The empty string
// is treated as DefaultRuleSet.
func (s *Strategy) IncludesRuleSet(set string) bool {
	if set == "" {
		set = DefaultRuleSet
	}

	if s.allRuleSets {
		return true
	}

	if len(s.ruleSets) == 0 {
		return set == DefaultRuleSet
	}

	if set == DefaultRuleSet && s.includeDefault {
		return true
	}

	return slices.Contains(s.ruleSets, set)
}

// Apply filters result down to the failures this strategy allows. Backends
// that cannot select rules up front use it after running everything.
func (s *Strategy) Apply(result *Result) *Result {
	if result == nil {
		return &Result{}
	}

	out := &Result{}

	for _, failure := range result.Failures {
		if !s.IncludesProperty(failure.PropertyName) {
			continue
		}

		out.Failures = append(out.Failures, failure)

		if s.cascade == CascadeStop {
			break
		}
	}

	return out
}
