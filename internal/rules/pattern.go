package rules

import (
	"regexp"
	"strings"

	"covidbot/internal/nlp"
)

// wildcardPOS are tags whose tokens carry no matching signal at all;
// they become optional wildcards so any phrasing slots in.
var wildcardPOS = map[string]bool{
	"MD": true, "PRP": true, "PRP$": true, "RB": true,
}

// optionalPOS are tags whose tokens help a match but must not be required.
var optionalPOS = map[string]bool{
	"VBZ": true, "DT": true, "VBP": true, "TO": true,
}

// interrogativePOS are question words; the token is kept but anything may
// precede it.
var interrogativePOS = map[string]bool{
	"WP": true, "WDT": true, "WRB": true,
}

var auxiliaryHave = map[string]bool{"have": true, "has": true, "had": true}

var punctuationToken = regexp.MustCompile(`^[^\w/]+$`)

// GeneratePattern turns an annotated expression into a trigger pattern.
// Function words become wildcards or optional tokens, slash-separated words
// become alternations, and punctuation is dropped, so the trigger matches
// natural rephrasings of the original expression.
func GeneratePattern(tokens []nlp.Token) string {
	var parts []string
	for _, token := range tokens {
		word := strings.ToLower(token.Word)
		switch {
		case wildcardPOS[token.POS]:
			parts = append(parts, "[*]")
		case token.POS == "VBP" && auxiliaryHave[strings.ToLower(token.Lemma)]:
			parts = append(parts, "[*]")
		case optionalPOS[token.POS]:
			parts = append(parts, "["+word+"]")
		case interrogativePOS[token.POS]:
			parts = append(parts, "[*] "+word)
		case strings.Contains(word, "/"):
			parts = append(parts, "("+strings.ReplaceAll(word, "/", "|")+")")
		case punctuationToken.MatchString(word):
			continue
		default:
			parts = append(parts, word)
		}
	}
	pattern := strings.Join(parts, " ")
	return strings.ReplaceAll(pattern, "-", "")
}
