// Package template implements the small interpreter used to render
// indexer definition strings: path expressions, conditionals, boolean
// operators, range expansion and a handful of date helpers.
package template

import "time"

// Context is the per-row evaluation environment. It holds three disjoint
// namespaces plus a couple of convenience top-level aliases (Keywords,
// Categories) mirrored from Query for legacy definitions.
type Context struct {
	Query  map[string]any
	Config map[string]any
	Result map[string]any

	// Now is the instant used to derive Today/Yesterday/Tomorrow. It
	// defaults to time.Now() (process-local time, per the documented
	// decision to prefer local time over UTC).
	Now time.Time
}

// NewContext builds a context with empty namespaces ready for population.
func NewContext() *Context {
	return &Context{
		Query:  map[string]any{},
		Config: map[string]any{},
		Result: map[string]any{},
		Now:    time.Now(),
	}
}

// Clone produces a context sharing Query/Config but with an independent
// Result map, matching the "cloned per row, Result starts empty and
// accumulates" lifecycle described for TemplateContext.
func (c *Context) Clone() *Context {
	clone := &Context{
		Query:  c.Query,
		Config: c.Config,
		Result: map[string]any{},
		Now:    c.Now,
	}
	return clone
}

func dateParts(t time.Time) map[string]any {
	return map[string]any{
		"Year":  t.Format("2006"),
		"Month": t.Format("01"),
		"Day":   t.Format("02"),
	}
}

// today/yesterday/tomorrow are computed lazily from Now so they reflect
// whatever instant the context was built with.
func (c *Context) today() map[string]any    { return dateParts(c.Now) }
func (c *Context) yesterday() map[string]any { return dateParts(c.Now.AddDate(0, 0, -1)) }
func (c *Context) tomorrow() map[string]any  { return dateParts(c.Now.AddDate(0, 0, 1)) }
