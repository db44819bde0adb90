package extract

import (
	"regexp"
	"strings"

	"monoscope/internal/catalog"
)

// DefaultComponentsKey is the config array PatternExtractor reads UI
// components from when no other key is set.
const DefaultComponentsKey = "livewire"

// TextExtractor recovers facts from source text. The regex implementation is
// heuristic; a real parser can replace it without touching the index or the
// query engine.
type TextExtractor interface {
	// UIComponents returns the keys registered in the package config's
	// component array, in source order.
	UIComponents(configText string) []string

	// Relationships returns the association targets declared in a model.
	Relationships(modelText string) catalog.RelationshipSet

	// UsesTrait reports whether source text pulls in trait.
	UsesTrait(sourceText, trait string) bool
}

// PatternExtractor is the regex-backed TextExtractor. The zero value reads
// components from the DefaultComponentsKey array.
type PatternExtractor struct {
	componentsOpen *regexp.Regexp
}

var _ TextExtractor = PatternExtractor{}

// NewPatternExtractor returns a PatternExtractor reading UI components from
// the componentsKey array. An empty key means DefaultComponentsKey.
func NewPatternExtractor(componentsKey string) PatternExtractor {
	if componentsKey == "" {
		componentsKey = DefaultComponentsKey
	}
	return PatternExtractor{componentsOpen: arrayOpener(componentsKey)}
}

func arrayOpener(key string) *regexp.Regexp {
	return regexp.MustCompile(`['"]` + regexp.QuoteMeta(key) + `['"]\s*=>\s*\[`)
}

var (
	defaultComponentsOpen = arrayOpener(DefaultComponentsKey)
	quotedKey             = regexp.MustCompile(`['"]([^'"\n]+)['"]\s*=>`)

	belongsToCall = regexp.MustCompile(`\bbelongsTo\(\s*([^)]*?)\s*\)`)
	hasManyCall   = regexp.MustCompile(`\bhasMany\(\s*([^)]*?)\s*\)`)
	morphToCall   = regexp.MustCompile(`\bmorphTo\(`)
	morphManyCall = regexp.MustCompile(`\bmorphMany\(\s*([^)]*?)\s*\)`)
)

// UIComponents finds the component array and collects the quoted keys of its
// top-level `'key' => value` entries. Values that are themselves arrays are
// skipped over rather than scanned for keys.
func (x PatternExtractor) UIComponents(configText string) []string {
	opener := x.componentsOpen
	if opener == nil {
		opener = defaultComponentsOpen
	}
	loc := opener.FindStringIndex(configText)
	if loc == nil {
		return nil
	}

	block, ok := bracketBlock(configText[loc[1]:])
	if !ok {
		return nil
	}

	var keys []string
	for _, m := range quotedKey.FindAllStringSubmatch(topLevel(block), -1) {
		keys = append(keys, m[1])
	}
	return keys
}

// Relationships runs one independent pass per relationship kind.
func (PatternExtractor) Relationships(modelText string) catalog.RelationshipSet {
	rels := catalog.RelationshipSet{
		BelongsTo: callArgs(belongsToCall, modelText),
		HasMany:   callArgs(hasManyCall, modelText),
		MorphTo:   []string{},
		MorphMany: callArgs(morphManyCall, modelText),
	}
	if morphToCall.MatchString(modelText) {
		rels.MorphTo = append(rels.MorphTo, catalog.MorphToSentinel)
	}
	return rels
}

// UsesTrait is a plain substring test for "use <trait>" or "use Has<trait>".
func (PatternExtractor) UsesTrait(sourceText, trait string) bool {
	if trait == "" {
		return false
	}
	return strings.Contains(sourceText, "use "+trait) ||
		strings.Contains(sourceText, "use Has"+trait)
}

func callArgs(re *regexp.Regexp, text string) []string {
	out := []string{}
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if arg := strings.TrimSpace(m[1]); arg != "" {
			out = append(out, arg)
		}
	}
	return out
}

// bracketBlock returns the text up to the bracket closing an already opened
// '['. Brackets inside quoted strings are ignored.
func bracketBlock(s string) (string, bool) {
	depth := 1
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return "", false
}

// topLevel blanks out nested [...] groups so only depth-zero entries remain.
func topLevel(block string) string {
	var b strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(block); i++ {
		c := block[i]
		if quote != 0 {
			if depth == 0 {
				b.WriteByte(c)
			}
			if c == '\\' && i+1 < len(block) {
				i++
				if depth == 0 {
					b.WriteByte(block[i])
				}
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '[':
			depth++
			continue
		case ']':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 {
			b.WriteByte(c)
		}
	}
	return b.String()
}
