package guard

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category names a sensitivity class.
type Category string

const (
	CategoryNone         Category = ""
	CategoryPolitical    Category = "political"
	CategoryHealthSafety Category = "health_safety"
)

// Reason strings recorded on flagged work items.
const (
	ReasonPolitical    = "Content contains political keywords requiring peer review"
	ReasonHealthSafety = "Content contains health/safety keywords requiring peer review"
)

// Keywords holds the sensitivity term sets.
type Keywords struct {
	Political    []string
	HealthSafety []string
}

// DefaultKeywords returns the built-in editorial term sets.
func DefaultKeywords() Keywords {
	return Keywords{
		Political: []string{
			"election", "president", "congress", "senate", "parliament",
			"government", "minister", "policy", "vote", "campaign",
			"democrat", "republican", "legislation",
		},
		HealthSafety: []string{
			"vaccine", "covid", "disease", "medical", "health",
			"medicine", "treatment", "cure", "pandemic", "virus",
			"safety", "toxic", "outbreak",
		},
	}
}

// Subject is the view of a work item the evaluator reads.
type Subject struct {
	Content                 string
	RequiresSecondaryReview bool
	SecondaryReviewReason   string
}

// Decision is the evaluator's verdict for one subject.
type Decision struct {
	// Required reports whether secondary review is required after evaluation.
	Required bool
	// Changed is true when the subject was not flagged before and now is.
	Changed  bool
	Category Category
	Reason   string
}

// Evaluator classifies content against fixed keyword sets. It is immutable
// and safe for concurrent use.
type Evaluator struct {
	political    []string
	healthSafety []string
}

// NewEvaluator builds an evaluator with case-folded keyword sets.
func NewEvaluator(keywords Keywords) *Evaluator {
	caser := cases.Fold()
	return &Evaluator{
		political:    foldAll(caser, keywords.Political),
		healthSafety: foldAll(caser, keywords.HealthSafety),
	}
}

// Classify returns the first matching category for content. Political terms
// are checked before health/safety terms.
func (e *Evaluator) Classify(content string) (Category, string) {
	if e == nil || strings.TrimSpace(content) == "" {
		return CategoryNone, ""
	}
	// Caser keeps internal state, so String is not safe for concurrent use.
	folded := cases.Fold().String(content)
	if containsAny(folded, e.political) {
		return CategoryPolitical, ReasonPolitical
	}
	if containsAny(folded, e.healthSafety) {
		return CategoryHealthSafety, ReasonHealthSafety
	}
	return CategoryNone, ""
}

// Evaluate applies the sticky secondary-review rule. An already-flagged
// subject stays flagged with its original reason.
func (e *Evaluator) Evaluate(subject Subject) Decision {
	if subject.RequiresSecondaryReview {
		return Decision{Required: true, Reason: subject.SecondaryReviewReason}
	}
	category, reason := e.Classify(subject.Content)
	if category == CategoryNone {
		return Decision{}
	}
	return Decision{Required: true, Changed: true, Category: category, Reason: reason}
}

func foldAll(caser cases.Caser, terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		out = append(out, caser.String(term))
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
