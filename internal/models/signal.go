package models

import "strings"

// SignalKind classifies a normalized gift-buying signal.
type SignalKind string

const (
	// SignalExclusion marks a tag the recipient must not receive ("no:<tag>").
	SignalExclusion SignalKind = "exclusion"
	// SignalAllergen marks an allergen exclusion ("allergen:no:<tag>").
	SignalAllergen SignalKind = "allergen"
	// SignalInterest is a soft interest preference ("interest:<tag>").
	SignalInterest SignalKind = "interest"
	// SignalStyle is a soft style preference ("style:<tag>").
	SignalStyle SignalKind = "style"
	// SignalTheme is a soft theme preference ("theme:<tag>").
	SignalTheme SignalKind = "theme"
	// SignalConstraint is a free-form hard constraint with no known prefix.
	SignalConstraint SignalKind = "constraint"
)

// Signal is one parsed gift-buying signal. Signals are parsed once at the
// LLM/catalog boundary; internal scoring matches on Kind/Tag instead of
// re-splitting prefix strings.
type Signal struct {
	Kind SignalKind `json:"kind"`
	Tag  string     `json:"tag"`
}

// ParseSignal converts a raw prefixed string ("interest:tea", "no:fragrance",
// "allergen:no:nuts") into a Signal. Unknown shapes become SignalConstraint.
func ParseSignal(raw string) Signal {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "allergen:no:"):
		return Signal{Kind: SignalAllergen, Tag: strings.TrimPrefix(raw, "allergen:no:")}
	case strings.HasPrefix(raw, "no:"):
		return Signal{Kind: SignalExclusion, Tag: strings.TrimPrefix(raw, "no:")}
	case strings.HasPrefix(raw, "interest:"):
		return Signal{Kind: SignalInterest, Tag: strings.TrimPrefix(raw, "interest:")}
	case strings.HasPrefix(raw, "style:"):
		return Signal{Kind: SignalStyle, Tag: strings.TrimPrefix(raw, "style:")}
	case strings.HasPrefix(raw, "theme:"):
		return Signal{Kind: SignalTheme, Tag: strings.TrimPrefix(raw, "theme:")}
	default:
		return Signal{Kind: SignalConstraint, Tag: raw}
	}
}

// ParseSignals parses a slice of raw strings, dropping empties.
func ParseSignals(raw []string) []Signal {
	signals := make([]Signal, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		signals = append(signals, ParseSignal(r))
	}
	return signals
}

// String renders the signal back into its wire form. Catalog product tags
// use the same form, so tag matching compares against String().
func (s Signal) String() string {
	switch s.Kind {
	case SignalExclusion:
		return "no:" + s.Tag
	case SignalAllergen:
		return "allergen:no:" + s.Tag
	case SignalInterest:
		return "interest:" + s.Tag
	case SignalStyle:
		return "style:" + s.Tag
	case SignalTheme:
		return "theme:" + s.Tag
	default:
		return s.Tag
	}
}

// IsExclusion reports whether the signal forbids matching items outright.
func (s Signal) IsExclusion() bool {
	return s.Kind == SignalExclusion || s.Kind == SignalAllergen
}
