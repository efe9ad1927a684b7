package normalize

import "strings"

// Registry holds the installer-family rules in registration order.
type Registry struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRegistry creates a registry with all default rules.
func NewRegistry() *Registry {
	return NewRegistryWithRules(NewMSIRule())
}

// NewRegistryWithRules creates a registry with custom rules (for testing).
func NewRegistryWithRules(rules ...Rule) *Registry {
	r := &Registry{byID: make(map[string]Rule)}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// Register adds a rule. A rule with an existing ID replaces the old one in place.
func (r *Registry) Register(rule Rule) {
	if _, exists := r.byID[rule.ID()]; exists {
		for i, old := range r.rules {
			if old.ID() == rule.ID() {
				r.rules[i] = rule
			}
		}
	} else {
		r.rules = append(r.rules, rule)
	}
	r.byID[rule.ID()] = rule
}

// List returns all rule IDs in registration order.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		ids = append(ids, rule.ID())
	}
	return ids
}

// Normalize applies the first matching rule. Commands no rule claims are
// returned unchanged.
func (r *Registry) Normalize(command string) string {
	for _, rule := range r.rules {
		if rule.Matches(command) {
			return rule.Rewrite(command)
		}
	}
	return command
}

// Match returns the ID of the rule that claims command, or "".
func (r *Registry) Match(command string) string {
	for _, rule := range r.rules {
		if rule.Matches(command) {
			return rule.ID()
		}
	}
	return ""
}

var defaultRegistry = NewRegistry()

// Normalize rewrites command with the default rules.
func Normalize(command string) string {
	return defaultRegistry.Normalize(command)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
