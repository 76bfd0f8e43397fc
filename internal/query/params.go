// Package query executes saved questions and browses the server catalog.
package query

import (
	"sort"

	"github.com/mbrcli/mbr/internal/api"
)

// bindParameters validates values against a question's declared
// parameters and builds the execution bindings. Declarations are keyed
// by slug. Validation completes before any binding is returned, and
// bindings follow declaration order.
func bindParameters(declared []api.Parameter, values map[string]string) ([]api.ParameterBinding, error) {
	bySlug := make(map[string]api.Parameter, len(declared))
	accepted := make([]string, 0, len(declared))
	for _, p := range declared {
		slug := parameterSlug(p)
		bySlug[slug] = p
		accepted = append(accepted, slug)
	}
	sort.Strings(accepted)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := bySlug[name]; !ok {
			return nil, &UnknownParameterError{Name: name, Accepted: accepted}
		}
	}

	for _, p := range declared {
		if !p.Required {
			continue
		}
		if _, ok := values[parameterSlug(p)]; !ok {
			return nil, &MissingParameterError{Name: parameterSlug(p)}
		}
	}

	if len(values) == 0 {
		return nil, nil
	}
	bindings := make([]api.ParameterBinding, 0, len(values))
	for _, p := range declared {
		value, ok := values[parameterSlug(p)]
		if !ok {
			continue
		}
		bindings = append(bindings, api.ParameterBinding{
			ID:     p.ID,
			Type:   p.Type,
			Target: p.Target,
			Value:  value,
		})
	}
	return bindings, nil
}

// parameterSlug is the user-facing name of a declared parameter. Some
// servers omit the slug, in which case the display name stands in.
func parameterSlug(p api.Parameter) string {
	if p.Slug != "" {
		return p.Slug
	}
	return p.Name
}
