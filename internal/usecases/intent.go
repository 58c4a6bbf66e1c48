package usecases

import (
	"strings"

	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
)

// IntentRule maps keywords to an intent. A question matches when it contains any keyword.
type IntentRule struct {
	Keywords []string
	Intent   entities.Intent
}

// IntentRules are evaluated in order and the first match wins.
// Questions matching no rule get the overview.
var IntentRules = []IntentRule{
	{Keywords: []string{"generation", "power"}, Intent: entities.IntentGeneration},
	{Keywords: []string{"price", "spot"}, Intent: entities.IntentPrice},
	{Keywords: []string{"renewable"}, Intent: entities.IntentRenewable},
	{Keywords: []string{"carbon", "emission"}, Intent: entities.IntentCarbon},
}

// ClassifyIntent picks the intent of a question by case-insensitive keyword match
func ClassifyIntent(question string) entities.Intent {
	q := strings.ToLower(question)
	for _, rule := range IntentRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(q, keyword) {
				return rule.Intent
			}
		}
	}
	return entities.IntentOverview
}

// dataNeeds lists the categories an intent's answer is built from
type dataNeeds struct {
	generation bool
	prices     bool
	emissions  bool
}

func needsFor(intent entities.Intent) dataNeeds {
	switch intent {
	case entities.IntentGeneration, entities.IntentRenewable:
		return dataNeeds{generation: true}
	case entities.IntentPrice:
		return dataNeeds{prices: true}
	case entities.IntentCarbon:
		// the carbon answer quotes the renewable share
		return dataNeeds{generation: true, emissions: true}
	default:
		return dataNeeds{generation: true, prices: true, emissions: true}
	}
}
