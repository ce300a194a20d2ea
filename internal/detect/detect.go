// Package detect provides a simple, deterministic, concurrency-safe
// commitment classifier for agent-authored support messages. It is
// intentionally small and dependency-free, but engineered with
// production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - Clear, documented types and functional options (Option pattern)
//   - Unicode-aware, case-insensitive substring matching
//   - Immutable rule set after construction (safe for concurrent use)
//   - Deterministic evaluation: a fixed priority order, first match wins
//
// The classifier is a heuristic pattern matcher, not an NLU model. It covers
// three language variants (Russian Cyrillic, Uzbek Latin, Uzbek Cyrillic)
// plus an English fallback set. Rules are evaluated strictly in the order
// time > action > vague, so a concrete time promise is never downgraded to a
// vague one even when both patterns occur in the same message.
package detect

import (
	"strings"

	"golang.org/x/text/language"
)

// Type is the kind of commitment a matched rule produces.
type Type string

const (
	// TypeTime marks a concrete time expression ("in 10 minutes").
	TypeTime Type = "time"
	// TypeAction marks a future-tense action promise with no timeframe.
	TypeAction Type = "action"
	// TypeVague marks a deferral with no resolvable timeframe ("hold on").
	TypeVague Type = "vague"
)

// Detection is the classifier verdict for a single message text.
type Detection struct {
	// HasCommitment is false when no rule matched.
	HasCommitment bool
	// Type is the kind of promise detected (valid only when HasCommitment).
	Type Type
	// IsVague is true for deferrals with no resolvable timeframe.
	IsVague bool
	// MatchedText is the literal sub-string that triggered detection,
	// lowercased. For time rules it is widened to cover an adjacent numeric
	// count ("через 10 минут" rather than just "минут").
	MatchedText string
	// TimeframeHint is the matched phrase handed to the deadline resolver.
	// Empty for action and vague detections.
	TimeframeHint string
	// Variant is the language variant whose rule matched.
	Variant language.Tag
}

// Rule is a single tagged matcher: a lowercase pattern plus the detection it
// produces. Rules are value objects; the priority of a rule is its position
// in the variant's rule list, never an attribute of the rule itself.
//
// NeedsNumber restricts unit-word patterns ("минут", "soat") to matches that
// sit next to a digit run, so that "минуточку" is not mistaken for a concrete
// time expression.
type Rule struct {
	Pattern     string
	Type        Type
	Vague       bool
	NeedsNumber bool
}

// Variant groups the rules for one language/script.
type Variant struct {
	Tag Language

	// Time, Action, Vague hold the rules in intra-group order. Groups are
	// always evaluated time first, then action, then vague.
	Time   []Rule
	Action []Rule
	Vague  []Rule
}

// Language tags the script variants the classifier understands.
type Language = language.Tag

// Well-known variant tags. Uzbek is carried in both scripts because agents
// freely mix them in the same channel.
var (
	LangRussian     = language.MustParse("ru")
	LangUzbekLatin  = language.MustParse("uz-Latn")
	LangUzbekCyrill = language.MustParse("uz-Cyrl")
	LangEnglish     = language.English
)

// minInputRunes is the shortest input that can ever match. Anything shorter
// is noise ("ok", "да") and never a promise.
const minInputRunes = 5

// ----------------------------------------------------------------------------
// Options

// Option customizes a Classifier under construction.
type Option func(*Classifier)

// WithVariants replaces the built-in rule set. The slice is used as given;
// callers must not mutate it afterwards.
func WithVariants(vs []Variant) Option {
	return func(c *Classifier) {
		if len(vs) > 0 {
			c.variants = vs
		}
	}
}

// WithExtraRules appends rules of the given type to the variant with the
// given tag, keeping the built-in set intact. Unknown tags are added as a
// new variant evaluated after the built-ins.
func WithExtraRules(tag Language, typ Type, patterns ...string) Option {
	return func(c *Classifier) {
		rules := make([]Rule, 0, len(patterns))
		for _, p := range patterns {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			rules = append(rules, Rule{Pattern: p, Type: typ, Vague: typ == TypeVague})
		}
		if len(rules) == 0 {
			return
		}
		for i := range c.variants {
			if c.variants[i].Tag == tag {
				c.variants[i] = appendRules(c.variants[i], typ, rules)
				return
			}
		}
		v := Variant{Tag: tag}
		c.variants = append(c.variants, appendRules(v, typ, rules))
	}
}

func appendRules(v Variant, typ Type, rules []Rule) Variant {
	switch typ {
	case TypeTime:
		v.Time = append(v.Time, rules...)
	case TypeAction:
		v.Action = append(v.Action, rules...)
	case TypeVague:
		v.Vague = append(v.Vague, rules...)
	}
	return v
}

// ----------------------------------------------------------------------------
// Classifier

// Classifier evaluates the rule set over message text. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	variants []Variant
}

// New builds a Classifier with the built-in rule set, applying options.
func New(opts ...Option) *Classifier {
	c := &Classifier{variants: builtinVariants()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RuleCount returns the total number of rules, for diagnostics.
func (c *Classifier) RuleCount() int {
	n := 0
	for _, v := range c.variants {
		n += len(v.Time) + len(v.Action) + len(v.Vague)
	}
	return n
}

// Variants returns the language tags carried by this classifier, in
// evaluation order.
func (c *Classifier) Variants() []Language {
	out := make([]Language, 0, len(c.variants))
	for _, v := range c.variants {
		out = append(out, v.Tag)
	}
	return out
}

// Classify runs the rule set over text and returns the verdict.
//
// Matching is case-insensitive and substring-based. Rules are evaluated in a
// fixed priority order: all time rules across every variant, then all action
// rules, then all vague rules; within a group, variants keep their declared
// order. The first matching rule determines the result even if later, more
// specific patterns would also match.
//
// Empty input and input shorter than 5 runes never match. Classify never
// fails; unmatched text simply yields HasCommitment == false.
func (c *Classifier) Classify(text string) Detection {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minInputRunes {
		return Detection{}
	}
	lower := strings.ToLower(trimmed)

	// time > action > vague, across every variant.
	for _, group := range []func(Variant) []Rule{
		func(v Variant) []Rule { return v.Time },
		func(v Variant) []Rule { return v.Action },
		func(v Variant) []Rule { return v.Vague },
	} {
		for _, v := range c.variants {
			for _, r := range group(v) {
				d, ok := matchRule(lower, r, v.Tag)
				if ok {
					return d
				}
			}
		}
	}
	return Detection{}
}

// matchRule attempts a single rule against the lowercased input.
func matchRule(lower string, r Rule, tag Language) (Detection, bool) {
	idx := strings.Index(lower, r.Pattern)
	if idx < 0 {
		return Detection{}, false
	}

	start, end := idx, idx+len(r.Pattern)
	if r.Type == TypeTime {
		var sawNumber bool
		start, end, sawNumber = widenTimeMatch(lower, start, end)
		if r.NeedsNumber && !sawNumber {
			return Detection{}, false
		}
	}
	matched := lower[start:end]

	d := Detection{
		HasCommitment: true,
		Type:          r.Type,
		IsVague:       r.Vague,
		MatchedText:   matched,
		Variant:       tag,
	}
	if r.Type == TypeTime {
		d.TimeframeHint = matched
	}
	return d, true
}

// widenTimeMatch expands a time match to cover a preceding digit run ("10
// минут" rather than just "минут"). The scan is purely lexical: it walks left
// over at most two short non-digit tokens until it hits a run of digits, then
// right to the end of the current token. It reports whether a digit run was
// folded in.
func widenTimeMatch(lower string, start, end int) (int, int, bool) {
	i := start
	words := 0
	sawDigits := false
	for i > 0 && !sawDigits && words < 3 {
		j := i
		for j > 0 && lower[j-1] == ' ' {
			j--
		}
		if j == i || j == 0 {
			break
		}
		k := j
		for k > 0 && lower[k-1] != ' ' {
			k--
		}
		tok := lower[k:j]
		if isDigits(tok) {
			sawDigits = true
			i = k
			continue
		}
		// Short connective ("через", "in", "za"); stop at anything longer.
		if len([]rune(tok)) > 6 {
			break
		}
		words++
		i = k
	}
	if !sawDigits {
		return start, end, false
	}
	for i < start && lower[i] == ' ' {
		i++
	}
	// Finish the current token on the right ("минут" -> "минуты").
	j := end
	for j < len(lower) && lower[j] != ' ' && lower[j] != '.' && lower[j] != ',' && lower[j] != '!' && lower[j] != '?' {
		j++
	}
	return i, j, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
