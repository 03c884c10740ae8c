// Package models decides which model identifiers may be streamed.
package models

import (
	"strings"

	"github.com/papercomputeco/aviary/pkg/llm"
)

// UnsupportedReason is reported when a model is outside the supported family.
const UnsupportedReason = "streaming is currently only supported for aviary models"

// Validator reports whether a model identifier belongs to the family this
// client can stream.
type Validator interface {
	Supports(model string) bool
}

// FamilyValidator accepts any non-empty model identifier that is not
// addressed to a foreign provider. Foreign models are written as
// "<provider>://<name>" (e.g. "openai://gpt-4").
//
// When Prefixes is non-empty the identifier must additionally start with one
// of them (e.g. "meta-llama/").
type FamilyValidator struct {
	Prefixes []string
}

// NewFamilyValidator returns a FamilyValidator restricted to prefixes. Empty
// entries are ignored.
func NewFamilyValidator(prefixes ...string) *FamilyValidator {
	kept := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return &FamilyValidator{Prefixes: kept}
}

func (v *FamilyValidator) Supports(model string) bool {
	model = strings.TrimSpace(model)
	if model == "" || strings.Contains(model, "://") {
		return false
	}

	if len(v.Prefixes) == 0 {
		return true
	}

	for _, p := range v.Prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// Check returns a *llm.ConfigurationError when v does not support model.
func Check(v Validator, model string) error {
	if v.Supports(model) {
		return nil
	}
	return &llm.ConfigurationError{
		Field:  "model",
		Value:  model,
		Reason: UnsupportedReason,
	}
}
