// Package pagebuilder resolves and renders the sections of a custom product
// page template. Every section has interchangeable variants; the renderer only
// picks one and fills its props, it never fails on a missing field.
package pagebuilder

import (
	"fmt"

	"github.com/jwalitptl/admin-console/pkg/errors"
)

type Section string

const (
	SectionImages   Section = "product-images"
	SectionDetails  Section = "product-details"
	SectionHowToUse Section = "how-to-use"
	SectionReviews  Section = "reviews"
)

// MaxSpan is the width of the layout grid.
const MaxSpan = 12

// variants lists each section's variants; the first is the default.
var variants = map[Section][]string{
	SectionImages:   {"carousel", "grid", "thumbnail-rail", "stacked"},
	SectionDetails:  {"classic", "split", "minimal", "pack-picker"},
	SectionHowToUse: {"steps", "accordion", "timeline"},
	SectionReviews:  {"list", "cards", "summary"},
}

// Component is one placed section of a template.
type Component struct {
	ID      string  `json:"id"`
	Section Section `json:"section"`
	Variant string  `json:"variant,omitempty"`
	Span    int     `json:"span,omitempty"`
}

// ComponentSettings are the editor's per-component overrides.
type ComponentSettings struct {
	Variant string `json:"variant,omitempty"`
}

// Settings are keyed by component id.
type Settings map[string]ComponentSettings

func Sections() []Section {
	return []Section{SectionImages, SectionDetails, SectionHowToUse, SectionReviews}
}

// Variants returns the variants registered for s.
func Variants(s Section) []string {
	return append([]string(nil), variants[s]...)
}

func DefaultVariant(s Section) string {
	if v := variants[s]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Resolve picks the variant to render: the settings override, then the
// component's own variant, then the default. Unknown names resolve to the
// default.
func Resolve(c Component, s Settings) string {
	chosen := c.Variant
	if set, ok := s[c.ID]; ok && set.Variant != "" {
		chosen = set.Variant
	}
	for _, v := range variants[c.Section] {
		if v == chosen {
			return v
		}
	}
	return DefaultVariant(c.Section)
}

func validate(c Component) error {
	if _, ok := variants[c.Section]; !ok {
		return errors.NewValidation("section", fmt.Sprintf("unknown section %q", c.Section))
	}
	return nil
}

func clampSpan(span int) int {
	if span <= 0 || span > MaxSpan {
		return MaxSpan
	}
	return span
}
