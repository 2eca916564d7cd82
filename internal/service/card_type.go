package service

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// cardName is one enumerated name with the spellings that identify it.
type cardName struct {
	canonical string
	aliases   []string
}

// Card networks, in priority order.
var cardNetworks = []cardName{
	{canonical: "Visa", aliases: []string{"visa"}},
	{canonical: "MasterCard", aliases: []string{"mastercard", "master card"}},
	{canonical: "American Express", aliases: []string{"american express", "amex"}},
	{canonical: "RuPay", aliases: []string{"rupay"}},
	{canonical: "Discover", aliases: []string{"discover"}},
	{canonical: "Diners Club", aliases: []string{"diners club"}},
	{canonical: "JCB", aliases: []string{"jcb"}},
	{canonical: "Maestro", aliases: []string{"maestro"}},
	{canonical: "UnionPay", aliases: []string{"unionpay", "union pay"}},
}

// Card tiers, in priority order. Independent of the network: a "Visa
// Signature" card is network Visa and tier Signature.
var cardTiers = []cardName{
	{canonical: "Platinum", aliases: []string{"platinum"}},
	{canonical: "Signature", aliases: []string{"signature"}},
	{canonical: "Infinite", aliases: []string{"infinite"}},
	{canonical: "Titanium", aliases: []string{"titanium"}},
	{canonical: "Gold", aliases: []string{"gold"}},
	{canonical: "Silver", aliases: []string{"silver"}},
	{canonical: "Classic", aliases: []string{"classic"}},
	{canonical: "Rewards", aliases: []string{"rewards"}},
	{canonical: "World Elite", aliases: []string{"world elite"}},
	{canonical: "Premier", aliases: []string{"premier"}},
}

// keywordClassifier picks the first enumerated name present in a text as a
// whole word. An Aho-Corasick pass finds every candidate alias in one scan;
// only the candidates are then checked for word boundaries.
type keywordClassifier struct {
	names    []cardName
	matcher  *ahocorasick.Matcher
	aliasOf  []int            // dictionary index -> index into names
	wordRe   []*regexp.Regexp // dictionary index -> whole-word check
	patterns []string
}

func newKeywordClassifier(names []cardName) *keywordClassifier {
	c := &keywordClassifier{names: names}
	for i, name := range names {
		for _, alias := range name.aliases {
			alias = strings.ToLower(alias)
			c.patterns = append(c.patterns, alias)
			c.aliasOf = append(c.aliasOf, i)
			c.wordRe = append(c.wordRe, wholeWord(alias))
		}
	}
	c.matcher = ahocorasick.NewStringMatcher(c.patterns)
	return c
}

func wholeWord(alias string) *regexp.Regexp {
	parts := strings.Fields(alias)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}

// Classify returns the canonical spelling of the highest-priority name found
// in text, or "" when none is present.
func (c *keywordClassifier) Classify(text string) string {
	if text == "" {
		return ""
	}

	// whitespace is folded so "Master\nCard" still reaches the word check
	folded := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	hits := c.matcher.MatchThreadSafe([]byte(folded))
	if len(hits) == 0 {
		return ""
	}

	candidates := make(map[int][]int, len(hits))
	for _, idx := range hits {
		if idx < 0 || idx >= len(c.aliasOf) {
			continue
		}
		owner := c.aliasOf[idx]
		candidates[owner] = append(candidates[owner], idx)
	}

	for i, name := range c.names {
		for _, idx := range candidates[i] {
			if c.wordRe[idx].MatchString(text) {
				return name.canonical
			}
		}
	}
	return ""
}
