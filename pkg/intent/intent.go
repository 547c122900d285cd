// Package intent maps chat messages to a small, fixed set of support intents
// using keyword heuristics.
package intent

import (
	"strings"
	"unicode"
)

const (
	SupportRequest = "support_request"
	Greeting       = "greeting"
	PricingInquiry = "pricing_inquiry"
	AccountHelp    = "account_help"
	GeneralInquiry = "general_inquiry"
	FileOnly       = "file_only"
	Error          = "error"
)

// Result is the outcome of classifying a single message.
type Result struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   []string `json:"entities"`
}

type rule struct {
	intent     string
	keywords   []string
	confidence float64
	entities   []string
}

// Rules are checked in order; the first rule with a matching keyword wins.
var rules = []rule{
	{intent: SupportRequest, keywords: []string{"help", "support", "problem", "issue"}, confidence: 0.9, entities: []string{"help", "support"}},
	{intent: Greeting, keywords: []string{"hello", "hi", "hey"}, confidence: 0.95},
	{intent: PricingInquiry, keywords: []string{"pricing", "cost", "price", "plan"}, confidence: 0.85, entities: []string{"pricing"}},
	{intent: AccountHelp, keywords: []string{"account", "login", "password"}, confidence: 0.88, entities: []string{"account"}},
}

const generalConfidence = 0.7

// Classifier detects intent from message text.
//
// By default a keyword matches anywhere in the lower-cased text, so "this"
// triggers the greeting keyword "hi". Setting WordBoundary restricts matches
// to whole words.
type Classifier struct {
	WordBoundary bool
}

// Classify returns the intent for text. Callers skip classification for empty
// messages and use FileOnly instead.
func (c Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)
	var words map[string]struct{}
	if c.WordBoundary {
		words = tokenize(lower)
	}

	for _, r := range rules {
		if c.matches(lower, words, r.keywords) {
			return Result{
				Intent:     r.intent,
				Confidence: r.confidence,
				Entities:   append([]string{}, r.entities...),
			}
		}
	}
	return Result{Intent: GeneralInquiry, Confidence: generalConfidence, Entities: []string{}}
}

func (c Classifier) matches(lower string, words map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if c.WordBoundary {
			if _, ok := words[kw]; ok {
				return true
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ForMessage classifies message, or returns FileOnly when it is empty.
func (c Classifier) ForMessage(message string) Result {
	if message == "" {
		return FileOnlyResult()
	}
	return c.Classify(message)
}

// FileOnlyResult is used when a request carries no message text.
func FileOnlyResult() Result {
	return Result{Intent: FileOnly, Confidence: 1.0, Entities: []string{}}
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
