package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewEngine(t *testing.T) {
	yaml := `
rules:
  - name: coffee
    pattern: starbucks
    match_type: contains
    priority: 400
    category: Coffee
  - name: groceries
    pattern: whole foods
    match_type: contains
    priority: 500
    category: Groceries
`
	engine, err := NewEngine([]byte(yaml))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	rules := engine.Rules()
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Name != "groceries" {
		t.Errorf("highest-priority rule = %q, want groceries", rules[0].Name)
	}
}

func TestNewEngine_InvalidRules(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad yaml", yaml: "rules:\n  - name: [broken"},
		{name: "priority out of range", yaml: "rules:\n  - {name: r, pattern: x, match_type: exact, priority: 1000, category: C}"},
		{name: "bad match type", yaml: "rules:\n  - {name: r, pattern: x, match_type: regex, priority: 1, category: C}"},
		{name: "empty pattern", yaml: "rules:\n  - {name: r, pattern: '', match_type: exact, priority: 1, category: C}"},
		{name: "empty category", yaml: "rules:\n  - {name: r, pattern: x, match_type: exact, priority: 1, category: ''}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine([]byte(tt.yaml)); err == nil {
				t.Error("NewEngine() expected error")
			}
		})
	}
}

func TestMatch(t *testing.T) {
	yaml := `
rules:
  - name: coffee-generic
    pattern: coffee
    match_type: contains
    priority: 300
    category: Coffee
  - name: netflix
    pattern: netflix
    match_type: exact
    priority: 400
    category: Subscriptions
  - name: payroll
    pattern: payroll
    match_type: contains
    priority: 900
    category: Income
    is_income: true
`
	engine, err := NewEngine([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		merchant     string
		wantMatch    bool
		wantCategory string
		wantIncome   bool
	}{
		{name: "contains match", merchant: "Blue Bottle Coffee", wantMatch: true, wantCategory: "Coffee"},
		{name: "exact match", merchant: "NETFLIX", wantMatch: true, wantCategory: "Subscriptions"},
		{name: "exact does not match substring", merchant: "Netflix Inc", wantMatch: false},
		{name: "income flag carried", merchant: "ACME PAYROLL DEP", wantMatch: true, wantCategory: "Income", wantIncome: true},
		{name: "diacritics normalized", merchant: "Café Coffee Day", wantMatch: true, wantCategory: "Coffee"},
		{name: "no match", merchant: "Hardware Store", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := engine.Match(tt.merchant)
			if ok != tt.wantMatch {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.merchant, ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if result.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", result.Category, tt.wantCategory)
			}
			if result.IsIncome != tt.wantIncome {
				t.Errorf("is_income = %v, want %v", result.IsIncome, tt.wantIncome)
			}
		})
	}
}

func TestMatch_PriorityOrder(t *testing.T) {
	yaml := `
rules:
  - name: generic
    pattern: uber
    match_type: contains
    priority: 400
    category: Transport
  - name: specific
    pattern: uber eats
    match_type: contains
    priority: 450
    category: Dining
`
	engine, err := NewEngine([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}

	result, ok := engine.Match("UBER EATS SF")
	if !ok {
		t.Fatal("expected a match")
	}
	if result.RuleName != "specific" {
		t.Errorf("matched rule = %q, want the higher-priority rule", result.RuleName)
	}
}

func TestMatch_StableTieBreak(t *testing.T) {
	yaml := `
rules:
  - name: first
    pattern: shop
    match_type: contains
    priority: 100
    category: A
  - name: second
    pattern: shop
    match_type: contains
    priority: 100
    category: B
`
	engine, err := NewEngine([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}

	result, ok := engine.Match("Coffee Shop")
	if !ok {
		t.Fatal("expected a match")
	}
	if result.RuleName != "first" {
		t.Errorf("tie broken to %q, want file order (first)", result.RuleName)
	}
}

func TestLoadEmbedded(t *testing.T) {
	engine, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	if len(engine.Rules()) == 0 {
		t.Error("embedded rules are empty")
	}

	result, ok := engine.Match("WHOLE FOODS MKT #123")
	if !ok || result.Category != "Groceries" {
		t.Errorf("Match(whole foods) = %+v, %v; want Groceries", result, ok)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules:\n  - {name: r, pattern: zoo, match_type: exact, priority: 1, category: Fun}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	engine, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if _, ok := engine.Match("Zoo"); !ok {
		t.Error("rule from file did not match")
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromFile() expected error for missing file")
	}
}

func TestNewRule_Validation(t *testing.T) {
	if _, err := NewRule("ok", "x", MatchTypeExact, 10, "C", false); err != nil {
		t.Errorf("NewRule() unexpected error = %v", err)
	}
	if _, err := NewRule("bad", "x", MatchTypeExact, -1, "C", false); err == nil {
		t.Error("NewRule() expected error for negative priority")
	}
}
