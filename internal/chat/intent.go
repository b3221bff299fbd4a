package chat

import (
	"regexp"
	"strings"

	"FinSight/internal/models"
)

// Classifier decides which handler should answer a question and what entity,
// if any, it targets. Classification is a fixed, ordered rule list: the first
// matching rule wins, so a question matching both the specific-identifier and
// the tabular vocabulary is classified by the more specific rule.
type Classifier struct{}

// NewClassifier creates a new Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

var (
	// "ISIN for X", "identifier of X", "what is the isin for X"
	specificIdentifierRe = regexp.MustCompile(`(?i)\b(?:isin|identifier|security\s+(?:id|code))\s+(?:for|of)\s+(.+?)\s*[?.!]*\s*$`)

	// "what are the isins", "list all identifiers"
	generalIdentifierRe = regexp.MustCompile(`(?i)\b(?:isins?|identifiers?)\b`)

	// table/column vocabulary
	tabularRe = regexp.MustCompile(`(?i)\b(?:total|value|how\s+many|how\s+much|quantity|price|percentage|weight|shares?|holdings?)\b`)

	// the noun phrase following the trigger
	tabularTargetRe = regexp.MustCompile(`(?i)\b(?:of|for|in)\s+(.+?)\s*[?.!]*\s*$`)
)

// Classify inspects the question text and returns the matched Intent.
// Matching is case-insensitive throughout.
func (c *Classifier) Classify(question string) models.Intent {
	q := strings.TrimSpace(question)

	if m := specificIdentifierRe.FindStringSubmatch(q); m != nil {
		return models.Intent{
			Kind:       models.IntentIdentifierLookupSpecific,
			TargetHint: cleanHint(m[1]),
		}
	}

	if generalIdentifierRe.MatchString(q) {
		return models.Intent{Kind: models.IntentIdentifierLookupGeneral}
	}

	if tabularRe.MatchString(q) {
		intent := models.Intent{Kind: models.IntentTabularLookup}
		if m := tabularTargetRe.FindStringSubmatch(q); m != nil {
			intent.TargetHint = cleanHint(m[1])
		}
		return intent
	}

	return models.Intent{Kind: models.IntentUnrecognized}
}

// cleanHint trims quoting and leading articles from an extracted target
// fragment.
func cleanHint(hint string) string {
	hint = strings.TrimSpace(hint)
	hint = strings.Trim(hint, `"'`)
	for _, article := range []string{"the ", "The ", "THE "} {
		hint = strings.TrimPrefix(hint, article)
	}
	return strings.TrimSpace(hint)
}
