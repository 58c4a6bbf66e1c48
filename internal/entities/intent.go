package entities

import "strings"

// Intent is the classified purpose of a user's question
type Intent string

const (
	IntentGeneration Intent = "generation"
	IntentPrice      Intent = "price"
	IntentRenewable  Intent = "renewable"
	IntentCarbon     Intent = "carbon"
	IntentOverview   Intent = "overview"
)

// Intents lists every intent
var Intents = []Intent{IntentGeneration, IntentPrice, IntentRenewable, IntentCarbon, IntentOverview}

// ParseIntent maps a name to an Intent, ignoring case and surrounding space
func ParseIntent(name string) (Intent, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, intent := range Intents {
		if string(intent) == name {
			return intent, true
		}
	}
	return "", false
}
