package backend

import "github.com/papercomputeco/aviary/pkg/llm"

// StaticResolver resolves selectors from a fixed map.
type StaticResolver map[Selector]Backend

func (r StaticResolver) Resolve(sel Selector) (Backend, error) {
	if !sel.Valid() {
		return Backend{}, unknownSelector(string(sel))
	}

	b, ok := r[sel]
	if !ok || b.URL == "" {
		return Backend{}, &llm.ConfigurationError{
			Field:  "backend",
			Value:  string(sel),
			Reason: "no URL configured",
		}
	}

	b.Name = sel
	return b, nil
}
