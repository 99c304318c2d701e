// Package triage produces offline, rule-based advice for a symptom
// description. It is used when no live model reply can be obtained.
package triage

import (
	"regexp"
	"strings"
)

const (
	EmergencyAdvice = "Your description contains potential emergency symptoms. Please call your local emergency number or go to the nearest emergency department immediately."

	FeverAdvice    = "Hydrate well and consider acetaminophen per label dosing if appropriate for you."
	ThroatAdvice   = "Warm fluids, rest, and consider honey or lozenges. Monitor breathing difficulty."
	HeadacheAdvice = "Limit screen time, rest in a dark room, and hydrate. Track triggers."

	ClarifyingQuestion = "Could you share onset, severity (1–10), location, and any triggers or relieving factors?"

	SafetyNote = "If symptoms worsen, persist beyond 48–72 hours, or you have underlying conditions, seek in-person medical care."
)

// RedFlags are the phrases that short-circuit to EmergencyAdvice.
var RedFlags = []string{
	"chest pain",
	"shortness of breath",
	"severe bleeding",
	"loss of consciousness",
	"stroke",
	"numbness on one side",
	"suicidal",
}

var feverPattern = regexp.MustCompile(`\b(fever|temperature|38\.?[0-9]?|high temp)\b`)

type rule struct {
	match  func(lower string) bool
	advice string
}

// rules are evaluated in order; every match contributes its advice.
var rules = []rule{
	{
		match:  feverPattern.MatchString,
		advice: FeverAdvice,
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "cough") || strings.Contains(lower, "throat")
		},
		advice: ThroatAdvice,
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "headache")
		},
		advice: HeadacheAdvice,
	},
}

// IsUrgent reports whether text contains any red-flag phrase.
func IsUrgent(text string) bool {
	lower := strings.ToLower(text)
	for _, flag := range RedFlags {
		if strings.Contains(lower, flag) {
			return true
		}
	}
	return false
}

// Analyze maps a symptom description to advisory text. It is pure and
// never returns an empty string.
func Analyze(text string) string {
	if IsUrgent(text) {
		return EmergencyAdvice
	}

	lower := strings.ToLower(text)
	var suggestions []string
	for _, r := range rules {
		if r.match(lower) {
			suggestions = append(suggestions, r.advice)
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, ClarifyingQuestion)
	}

	return strings.Join(append(suggestions, SafetyNote), " ")
}
