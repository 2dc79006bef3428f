// Package rules provides a YAML-based rules engine that assigns categories to
// imported transactions by matching merchant names.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexchiri/budget-snap/internal/transform"
)

//go:embed rules.yaml
var embeddedRules []byte

// MatchType defines how patterns are matched against merchant names.
type MatchType string

const (
	// MatchTypeExact requires the pattern to match the whole merchant exactly.
	MatchTypeExact MatchType = "exact"
	// MatchTypeContains requires the pattern to be a substring of the merchant.
	MatchTypeContains MatchType = "contains"
)

// Rule maps a merchant pattern to a category. Construct via NewRule or YAML
// loading; both validate all invariants.
type Rule struct {
	Name      string    `yaml:"name"`
	Pattern   string    `yaml:"pattern"`
	MatchType MatchType `yaml:"match_type"`
	Priority  int       `yaml:"priority"`
	Category  string    `yaml:"category"`
	IsIncome  bool      `yaml:"is_income"`
}

// NewRule creates a validated rule.
func NewRule(name, pattern string, matchType MatchType, priority int, category string, isIncome bool) (*Rule, error) {
	r := Rule{
		Name:      name,
		Pattern:   pattern,
		MatchType: matchType,
		Priority:  priority,
		Category:  category,
		IsIncome:  isIncome,
	}
	if err := validateRule(r); err != nil {
		return nil, err
	}
	return &r, nil
}

func validateRule(r Rule) error {
	if r.Priority < 0 || r.Priority > 999 {
		return fmt.Errorf("priority must be in [0,999], got %d", r.Priority)
	}
	if r.MatchType != MatchTypeExact && r.MatchType != MatchTypeContains {
		return fmt.Errorf("invalid match_type %q (must be 'exact' or 'contains')", r.MatchType)
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("category cannot be empty")
	}
	return nil
}

// ruleSet is the top-level YAML structure.
type ruleSet struct {
	Rules []Rule `yaml:"rules"`
}

// MatchResult is the outcome of applying a rule to a merchant.
type MatchResult struct {
	Category string
	IsIncome bool
	RuleName string // For debugging.
}

// Engine performs rule matching on merchant names.
type Engine struct {
	rules []Rule // Sorted by priority, highest first.
}

// NewEngine creates a rules engine from YAML data.
func NewEngine(rulesData []byte) (*Engine, error) {
	var rs ruleSet
	if err := yaml.Unmarshal(rulesData, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	for i, rule := range rs.Rules {
		if err := validateRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rule.Name, err)
		}
	}

	// Stable sort preserves YAML file order for equal priorities, which keeps
	// matching deterministic.
	sorted := make([]Rule, len(rs.Rules))
	copy(sorted, rs.Rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	return &Engine{rules: sorted}, nil
}

// LoadEmbedded loads the embedded rules.yaml file.
func LoadEmbedded() (*Engine, error) {
	engine, err := NewEngine(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules: %w", err)
	}
	return engine, nil
}

// LoadFromFile loads rules from a filesystem path.
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	engine, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return engine, nil
}

// Match applies rules to a merchant name and returns the first match in
// priority order. Merchant and patterns are compared in normalized form
// (lowercased, diacritics stripped). Returns (nil, false) when nothing
// matches.
func (e *Engine) Match(merchant string) (*MatchResult, bool) {
	normalized := transform.NormalizeMerchant(merchant)

	for _, rule := range e.rules {
		pattern := transform.NormalizeMerchant(rule.Pattern)

		matched := false
		switch rule.MatchType {
		case MatchTypeExact:
			matched = normalized == pattern
		case MatchTypeContains:
			matched = strings.Contains(normalized, pattern)
		}

		if matched {
			return &MatchResult{
				Category: rule.Category,
				IsIncome: rule.IsIncome,
				RuleName: rule.Name,
			}, true
		}
	}

	return nil, false
}

// Rules returns a copy of the rules in priority order, for inspection.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
