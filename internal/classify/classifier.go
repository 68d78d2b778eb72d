package classify

import (
	"regexp"
	"strings"

	"github.com/sells-group/address-precision/internal/model"
)

var (
	punctRe      = regexp.MustCompile(`[^a-z0-9#\- ]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

type compiledRule struct {
	rule KeywordRule
	re   *regexp.Regexp
}

// Classifier decides whether an address line denotes a multi-unit dwelling.
// It is deterministic, does no I/O, and is safe for concurrent use.
type Classifier struct {
	high         []compiledRule
	medium       []compiledRule
	positional   []compiledRule
	hashRule     KeywordRule
	hashRe       *regexp.Regexp
	exclusionRe  *regexp.Regexp
	streetTypes  map[string]bool
	directionals map[string]bool
}

// NewClassifier compiles the given rule table. Call once and reuse.
func NewClassifier(rules Rules) *Classifier {
	c := &Classifier{
		hashRule:     rules.Hash,
		hashRe:       regexp.MustCompile(`#\s*([a-z0-9][a-z0-9\-]*)`),
		streetTypes:  toSet(rules.StreetTypes),
		directionals: toSet(rules.Directionals),
	}
	for _, r := range rules.High {
		// High-tier keywords only count with a trailing unit token.
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(r.Keyword) + `\b[\s#]*([a-z0-9][a-z0-9\-]*)`)
		c.high = append(c.high, compiledRule{rule: r, re: re})
	}
	for _, r := range rules.Medium {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(r.Keyword) + `\b(?:[\s#]*([a-z0-9][a-z0-9\-]*))?`)
		c.medium = append(c.medium, compiledRule{rule: r, re: re})
	}
	for _, r := range rules.Positional {
		// Position words are unit markers only at the tail of the line.
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(r.Keyword) + `\b(?:\s+([a-z0-9][a-z0-9\-]*))?\s*$`)
		c.positional = append(c.positional, compiledRule{rule: r, re: re})
	}
	if len(rules.Exclusions) > 0 {
		quoted := make([]string, len(rules.Exclusions))
		for i, w := range rules.Exclusions {
			quoted[i] = regexp.QuoteMeta(w)
		}
		c.exclusionRe = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return c
}

// Classify runs the pattern table over one address line. Empty or
// unparseable input yields an unknown verdict; an address with no unit
// signal yields a house verdict at confidence zero.
func (c *Classifier) Classify(text string) model.ApartmentVerdict {
	norm := normalize(text)
	if norm == "" {
		return model.ApartmentVerdict{ApartmentType: model.ApartmentTypeUnknown}
	}

	excluded := c.exclusionRe != nil && c.exclusionRe.MatchString(norm)

	if v, ok := c.matchTier(norm, c.high, "high"); ok {
		return v
	}
	if v, ok := c.matchTier(norm, c.medium, "medium"); ok {
		return v
	}
	if m := c.hashRe.FindStringSubmatch(norm); m != nil {
		return model.ApartmentVerdict{
			IsApartment:    true,
			ApartmentType:  c.hashRule.Type,
			UnitToken:      strings.ToUpper(m[1]),
			Confidence:     c.hashRule.Confidence,
			MatchedPattern: "hash",
		}
	}
	if v, ok := c.matchTier(norm, c.positional, "positional"); ok {
		// An exclusion word downgrades a bare position match: "rear" on a
		// duplex listing describes the building, not a rentable unit.
		if excluded {
			return model.ApartmentVerdict{ApartmentType: model.ApartmentTypeHouse}
		}
		return v
	}
	return model.ApartmentVerdict{ApartmentType: model.ApartmentTypeHouse}
}

// matchTier finds the tier match closest to the end of the line, skipping
// street-name artifacts.
func (c *Classifier) matchTier(norm string, tier []compiledRule, tierName string) (model.ApartmentVerdict, bool) {
	bestStart := -1
	var best model.ApartmentVerdict
	for _, cr := range tier {
		for _, idx := range cr.re.FindAllStringSubmatchIndex(norm, -1) {
			token := ""
			tokenEnd := -1
			if len(idx) >= 4 && idx[2] >= 0 {
				token = norm[idx[2]:idx[3]]
				tokenEnd = idx[3]
			}
			if c.isStreetArtifact(norm, token, tokenEnd) {
				continue
			}
			if idx[0] > bestStart {
				bestStart = idx[0]
				best = model.ApartmentVerdict{
					IsApartment:    true,
					ApartmentType:  cr.rule.Type,
					UnitToken:      strings.ToUpper(token),
					Confidence:     cr.rule.Confidence,
					MatchedPattern: tierName + ":" + cr.rule.Keyword,
				}
			}
		}
	}
	return best, bestStart >= 0
}

// isStreetArtifact reports whether a keyword hit is really part of the
// street name: the captured token is itself a street type ("Unit Street"),
// or the token is a directional followed by a street type ("Unit North
// Street"). A trailing bare directional ("Apt N") stays a unit token.
func (c *Classifier) isStreetArtifact(norm, token string, tokenEnd int) bool {
	if token == "" {
		return false
	}
	if c.streetTypes[token] {
		return true
	}
	if c.directionals[token] {
		return c.streetTypes[nextWord(norm, tokenEnd)]
	}
	return false
}

// nextWord returns the first space-delimited word at or after from.
func nextWord(s string, from int) string {
	rest := strings.TrimLeft(s[from:], " ")
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		return rest[:i]
	}
	return rest
}

// normalize lowercases and strips punctuation while preserving `#`, hyphens
// and digit/letter adjacency such as "12A".
func normalize(text string) string {
	s := strings.ToLower(text)
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
