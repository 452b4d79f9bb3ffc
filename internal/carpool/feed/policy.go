package feed

import "strings"

// Policy classifies message text as allowed or objectionable. Classification
// is a pure function of the text: case-insensitive keyword matching, no
// side effects, so the projector can re-run it on every recompute.
type Policy struct {
	keywords []string
}

// DefaultKeywords is the stock blocklist. Matching is substring-based, so
// spacing or punctuation around a term does not defeat it.
var DefaultKeywords = []string{
	"fuck",
	"shit",
	"bitch",
	"asshole",
	"bastard",
	"dickhead",
	"slut",
	"whore",
	"nigger",
	"faggot",
	"cunt",
	"kill yourself",
	"kys",
}

// NewPolicy builds a policy from the given keywords, or DefaultKeywords
// when none are supplied.
func NewPolicy(keywords ...string) *Policy {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Policy{keywords: lowered}
}

// Objectionable reports whether text contains any blocked keyword.
func (p *Policy) Objectionable(text string) bool {
	lowered := strings.ToLower(text)
	for _, k := range p.keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}
