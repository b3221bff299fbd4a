package chat

import (
	"fmt"
	"strconv"
	"strings"

	"FinSight/internal/models"
)

// Provider labels identify which handler produced an answer. They are
// diagnostic only and never drive control flow.
const (
	ProviderSecurities = "securities_handler"
	ProviderTabular    = "tabular_handler"
	ProviderSystem     = "system"
)

// The query handlers are pure functions of (entity store, question, intent):
// identical inputs always produce identical answers, and absence of data is
// reported as a normal answer, never as an error.

// HandleSpecificIdentifier answers "what is the identifier for X" questions
// by case-insensitive substring match of the target hint against security
// names. Multiple matches produce a disambiguation list, zero matches a
// "not found" answer.
func HandleSpecificIdentifier(store *models.EntityStore, intent models.Intent) models.Answer {
	matches := matchByName(store, intent.TargetHint)

	switch len(matches) {
	case 0:
		return models.Answer{
			Text:     fmt.Sprintf("No security matching %q was found in this document.", intent.TargetHint),
			Provider: ProviderSecurities,
		}
	case 1:
		sec := matches[0]
		text := fmt.Sprintf("%s has no identifier recorded in this document.", sec.Name)
		if sec.HasIdentifier() {
			text = fmt.Sprintf("The ISIN for %s is %s.", sec.Name, *sec.Identifier)
		}
		return models.Answer{Text: text, MatchedSecurities: matches, Provider: ProviderSecurities}
	default:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Multiple securities match %q:\n", intent.TargetHint))
		for _, sec := range matches {
			if sec.HasIdentifier() {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", sec.Name, *sec.Identifier))
			} else {
				sb.WriteString(fmt.Sprintf("- %s: no identifier recorded\n", sec.Name))
			}
		}
		return models.Answer{Text: strings.TrimRight(sb.String(), "\n"), MatchedSecurities: matches, Provider: ProviderSecurities}
	}
}

// HandleGeneralIdentifier lists every identifier in the store, each paired
// with its security's name, in insertion order.
func HandleGeneralIdentifier(store *models.EntityStore) models.Answer {
	withIDs := store.SecuritiesWithIdentifiers()
	if len(withIDs) == 0 {
		return models.Answer{
			Text:     "No identifiers were found in this document.",
			Provider: ProviderSecurities,
		}
	}

	var sb strings.Builder
	sb.WriteString("The following identifiers were found:\n")
	for _, sec := range withIDs {
		name := sec.Name
		if name == "" {
			name = "(unnamed security)"
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, *sec.Identifier))
	}
	return models.Answer{Text: strings.TrimRight(sb.String(), "\n"), MatchedSecurities: withIDs, Provider: ProviderSecurities}
}

// HandleTabularLookup reports the numeric field the question asks about for
// the securities matching the target hint. A matched security without the
// requested figure gets an explicit "not recorded" answer instead of a guess.
func HandleTabularLookup(store *models.EntityStore, question string, intent models.Intent) models.Answer {
	field := inferField(question)

	if intent.TargetHint == "" {
		// No named target: the only aggregate we answer is the total of the
		// recorded values.
		if field == "value" && strings.Contains(strings.ToLower(question), "total") {
			return totalValueAnswer(store)
		}
		return models.Answer{
			Text:     "Please name the security you are asking about.",
			Provider: ProviderTabular,
		}
	}

	matches := matchByName(store, intent.TargetHint)
	if len(matches) == 0 {
		return models.Answer{
			Text:     fmt.Sprintf("No security matching %q was found in this document.", intent.TargetHint),
			Provider: ProviderTabular,
		}
	}

	var sb strings.Builder
	for _, sec := range matches {
		v := fieldValue(sec, field)
		if v == nil {
			sb.WriteString(fmt.Sprintf("The %s for %s is not recorded in this document.\n", field, sec.Name))
			continue
		}
		if field == "percentage" {
			sb.WriteString(fmt.Sprintf("The %s for %s is %s%%.\n", field, sec.Name, formatNumber(*v)))
		} else {
			sb.WriteString(fmt.Sprintf("The %s for %s is %s.\n", field, sec.Name, formatNumber(*v)))
		}
	}
	return models.Answer{Text: strings.TrimRight(sb.String(), "\n"), MatchedSecurities: matches, Provider: ProviderTabular}
}

// matchByName returns the securities whose name contains the hint,
// case-insensitively, in insertion order. An empty hint matches nothing.
func matchByName(store *models.EntityStore, hint string) []models.Security {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return nil
	}
	var matches []models.Security
	for _, sec := range store.Securities {
		if strings.Contains(strings.ToLower(sec.Name), hint) {
			matches = append(matches, sec)
		}
	}
	return matches
}

// inferField picks the numeric field the question asks about from its
// vocabulary; "value" is the default.
func inferField(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "how many") || strings.Contains(q, "quantity") || strings.Contains(q, "shares") || strings.Contains(q, "units"):
		return "quantity"
	case strings.Contains(q, "price"):
		return "price"
	case strings.Contains(q, "percentage") || strings.Contains(q, "percent") || strings.Contains(q, "weight"):
		return "percentage"
	default:
		return "value"
	}
}

func fieldValue(sec models.Security, field string) *float64 {
	switch field {
	case "quantity":
		return sec.Quantity
	case "price":
		return sec.Price
	case "percentage":
		return sec.Percentage
	default:
		return sec.Value
	}
}

func totalValueAnswer(store *models.EntityStore) models.Answer {
	var total float64
	counted := 0
	for _, sec := range store.Securities {
		if sec.Value != nil {
			total += *sec.Value
			counted++
		}
	}
	if counted == 0 {
		return models.Answer{
			Text:     "No values are recorded in this document.",
			Provider: ProviderTabular,
		}
	}
	return models.Answer{
		Text:     fmt.Sprintf("The total recorded value across %d securities is %s.", counted, formatNumber(total)),
		Provider: ProviderTabular,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
