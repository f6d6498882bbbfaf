package ordinals

import "strings"

// Kind is the derived content classification of an inscription. It drives
// fallback naming, collection attribution, and the content strategy.
type Kind string

const (
	KindStandard    Kind = "standard"
	KindInteractive Kind = "interactive"
	KindText        Kind = "text"
	KindSVG         Kind = "svg"
)

// Classification tags one raw inscription. Derived per fetch, never stored.
type Classification struct {
	Kind       Kind
	Collection string
}

type rule struct {
	match      func(RawInscription) bool
	kind       Kind
	collection string
}

func titleContains(substr string) func(RawInscription) bool {
	return func(r RawInscription) bool {
		return strings.Contains(strings.ToLower(r.Title), substr) ||
			strings.Contains(strings.ToLower(r.CollectionID), substr)
	}
}

func contentTypeContains(substrs ...string) func(RawInscription) bool {
	return func(r RawInscription) bool {
		ct := strings.ToLower(r.ContentType)
		for _, s := range substrs {
			if strings.Contains(ct, s) {
				return true
			}
		}
		return false
	}
}

// classificationRules is evaluated in order; the first matching rule wins.
// Known-collection rules come before content-type family rules so a named
// collection keeps its attribution regardless of media type. The table is
// data: extending classification means appending a rule here.
var classificationRules = []rule{
	{match: titleContains("bitcoin punk"), kind: KindStandard, collection: "Bitcoin Punks"},
	{match: titleContains("ordinal punk"), kind: KindStandard, collection: "Ordinal Punks"},
	{match: titleContains("taproot wizard"), kind: KindStandard, collection: "Taproot Wizards"},
	{match: titleContains("bitcoin frog"), kind: KindStandard, collection: "Bitcoin Frogs"},
	{match: titleContains("nodemonke"), kind: KindStandard, collection: "NodeMonkes"},
	{match: titleContains("bitmap"), kind: KindText, collection: "Bitmap"},
	{match: contentTypeContains("html", "javascript"), kind: KindInteractive},
	{match: contentTypeContains("svg"), kind: KindSVG},
	{match: contentTypeContains("text"), kind: KindText},
}

// Classify derives the classification tag for one raw inscription. Anything
// no rule claims is a standard image-like inscription.
func Classify(raw RawInscription) Classification {
	for _, r := range classificationRules {
		if r.match(raw) {
			return Classification{Kind: r.kind, Collection: r.collection}
		}
	}
	return Classification{Kind: KindStandard}
}

// fallbackCollection labels inscriptions whose source supplied no collection.
func fallbackCollection(c Classification) string {
	if c.Collection != "" {
		return c.Collection
	}
	switch c.Kind {
	case KindInteractive:
		return "Interactive Inscriptions"
	case KindText:
		return "Text Inscriptions"
	case KindSVG:
		return "SVG Inscriptions"
	default:
		return "Inscriptions"
	}
}
