package goquery

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docscout"
)

var _ docscout.SiteRegistry = (*Registry)(nil)

// Registry holds site rules in match order. The default rule always comes
// last, so Match never returns nil.
type Registry struct {
	rules    []docscout.SiteRule
	fallback docscout.SiteRule
}

// NewRegistry returns a registry that tries rules in order before the
// default rule.
func NewRegistry(rules ...docscout.SiteRule) *Registry {
	return &Registry{
		rules:    rules,
		fallback: &DefaultRule{},
	}
}

// NewDefaultRegistry returns the standard rule set: Storybook, GitHub Pages,
// then one rule per known framework.
func NewDefaultRegistry(converter docscout.Converter, logger *slog.Logger) *Registry {
	detector := NewDetector()
	rules := []docscout.SiteRule{
		&StorybookRule{Converter: converter, Logger: logger},
		&GitHubPagesRule{},
	}
	for _, f := range Frameworks {
		rules = append(rules, NewFrameworkRule(f, detector))
	}
	return NewRegistry(rules...)
}

// Register appends a rule ahead of the default rule.
func (r *Registry) Register(rule docscout.SiteRule) {
	r.rules = append(r.rules, rule)
}

// Match returns the first rule that detects the page.
func (r *Registry) Match(ctx context.Context, page docscout.Page, html string) docscout.SiteRule {
	for _, rule := range r.rules {
		if rule.Detect(ctx, page, html) {
			return rule
		}
	}
	return r.fallback
}

// Rules returns all rules in match order, the default rule last.
func (r *Registry) Rules() []docscout.SiteRule {
	rules := make([]docscout.SiteRule, 0, len(r.rules)+1)
	rules = append(rules, r.rules...)
	return append(rules, r.fallback)
}
