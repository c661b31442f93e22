package nlp

import (
	_ "embed"
	"strings"
)

//go:embed stopwords.txt
var stopwordsRaw string

// stopwords is the english stopword set, loaded from the embedded list.
var stopwords = func() map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Split(stopwordsRaw, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			words[w] = true
		}
	}
	return words
}()
