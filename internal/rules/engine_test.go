package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
)

func TestNewEngine_ValidRules(t *testing.T) {
	rulesYAML := `
rules:
  - name: "Test Rule"
    pattern: "rewe"
    match_type: "contains"
    priority: 100
    category: "groceries"
    merchant_name: "REWE"
`
	engine, err := NewEngine([]byte(rulesYAML))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if len(engine.rules) != 1 {
		t.Errorf("NewEngine() rules count = %d, want 1", len(engine.rules))
	}

	rule := engine.rules[0]
	if rule.Name != "Test Rule" {
		t.Errorf("rule.Name = %s, want Test Rule", rule.Name)
	}
	if rule.Priority != 100 {
		t.Errorf("rule.Priority = %d, want 100", rule.Priority)
	}
	if rule.MerchantName != "REWE" {
		t.Errorf("rule.MerchantName = %s, want REWE", rule.MerchantName)
	}
}

func TestNewEngine_InvalidCategory(t *testing.T) {
	rulesYAML := `
rules:
  - name: "Invalid Category"
    pattern: "rewe"
    match_type: "contains"
    priority: 100
    category: "invalid_category"
`
	_, err := NewEngine([]byte(rulesYAML))
	if err == nil {
		t.Error("NewEngine() expected error for invalid category")
	}
}

func TestNewEngine_InvalidPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority string
	}{
		{"negative priority", "-1"},
		{"priority too high", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rulesYAML := `
rules:
  - name: "Invalid Priority"
    pattern: "rewe"
    match_type: "contains"
    priority: ` + tt.priority + `
    category: "groceries"
`
			_, err := NewEngine([]byte(rulesYAML))
			if err == nil {
				t.Errorf("NewEngine() expected error for %s", tt.name)
			}
		})
	}
}

func TestNewEngine_InvalidMatchType(t *testing.T) {
	rulesYAML := `
rules:
  - name: "Invalid Match Type"
    pattern: "rewe"
    match_type: "regex"
    priority: 100
    category: "groceries"
`
	_, err := NewEngine([]byte(rulesYAML))
	if err == nil {
		t.Error("NewEngine() expected error for invalid match_type")
	}
}

func TestNewEngine_EmptyPattern(t *testing.T) {
	rulesYAML := `
rules:
  - name: "Empty Pattern"
    pattern: "   "
    match_type: "contains"
    priority: 100
    category: "groceries"
`
	_, err := NewEngine([]byte(rulesYAML))
	if err == nil {
		t.Error("NewEngine() expected error for empty pattern")
	}
}

func TestNewEngine_MalformedYAML(t *testing.T) {
	_, err := NewEngine([]byte("rules:\n  - name: [unclosed"))
	if err == nil {
		t.Error("NewEngine() expected error for malformed YAML")
	}
}

func TestNewRule(t *testing.T) {
	rule, err := NewRule("REWE", "rewe", MatchTypeContains, 100, "groceries", "REWE")
	if err != nil {
		t.Fatalf("NewRule() error = %v", err)
	}
	if rule.Pattern != "rewe" {
		t.Errorf("rule.Pattern = %s, want rewe", rule.Pattern)
	}

	if _, err := NewRule("bad", "rewe", MatchTypeContains, 100, "nonsense", ""); err == nil {
		t.Error("NewRule() expected error for invalid category")
	}
}

func TestEngine_Match(t *testing.T) {
	rulesYAML := `
rules:
  - name: "Exact Stadtwerke"
    pattern: "stadtwerke bonn"
    match_type: "exact"
    priority: 200
    category: "utilities"
    merchant_name: "Stadtwerke Bonn"
  - name: "Any Stadtwerke"
    pattern: "stadtwerke"
    match_type: "contains"
    priority: 100
    category: "utilities"
    merchant_name: "Stadtwerke"
  - name: "Groceries"
    pattern: "rewe"
    match_type: "contains"
    priority: 100
    category: "groceries"
    merchant_name: "REWE"
`
	engine, err := NewEngine([]byte(rulesYAML))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	tests := []struct {
		name         string
		key          string
		wantMatch    bool
		wantCategory domain.Category
		wantRule     string
	}{
		{
			name:         "exact rule wins over contains by priority",
			key:          "stadtwerke bonn",
			wantMatch:    true,
			wantCategory: domain.CategoryUtilities,
			wantRule:     "Exact Stadtwerke",
		},
		{
			name:         "contains fallback",
			key:          "stadtwerke muensterland abschlag",
			wantMatch:    true,
			wantCategory: domain.CategoryUtilities,
			wantRule:     "Any Stadtwerke",
		},
		{
			name:         "substring of larger key",
			key:          "rewe sagt danke filiale",
			wantMatch:    true,
			wantCategory: domain.CategoryGroceries,
			wantRule:     "Groceries",
		},
		{
			name:      "no rule matches",
			key:       "unbekannter haendler",
			wantMatch: false,
		},
		{
			name:      "empty key never matches",
			key:       "",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := engine.Match(tt.key)
			if ok != tt.wantMatch {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.key, ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if result.Category != tt.wantCategory {
				t.Errorf("Match(%q) category = %s, want %s", tt.key, result.Category, tt.wantCategory)
			}
			if result.RuleName != tt.wantRule {
				t.Errorf("Match(%q) rule = %s, want %s", tt.key, result.RuleName, tt.wantRule)
			}
		})
	}
}

func TestLoadEmbedded(t *testing.T) {
	engine, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}

	if len(engine.GetRules()) == 0 {
		t.Fatal("LoadEmbedded() returned no rules")
	}

	result, ok := engine.Match("rewe sagt danke")
	if !ok {
		t.Fatal("embedded rules should categorize a REWE key")
	}
	if result.Category != domain.CategoryGroceries {
		t.Errorf("REWE category = %s, want groceries", result.Category)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
rules:
  - name: "Custom"
    pattern: "baeckerei"
    match_type: "contains"
    priority: 10
    category: "groceries"
    merchant_name: "Bäckerei"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	engine, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if _, ok := engine.Match("baeckerei schmidt"); !ok {
		t.Error("custom rule did not match")
	}

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFromFile() expected error for missing file")
	}
}
