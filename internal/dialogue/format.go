package dialogue

import (
	"fmt"
	"strings"

	"covidbot/internal/models"
)

// Delimiters embedded in synthesized rule replies.
const (
	// SuggestionDelimiter separates suggested questions in a menu reply.
	SuggestionDelimiter = "(*)"
	// ClarificationDelimiter separates subtopic names in a clarification
	// reply.
	ClarificationDelimiter = "#*#"
)

const (
	maxSuggestions    = 4
	maxClarifications = 3
)

// FormatClarification renders a clarification reply as a numbered subtopic
// list the user can answer.
func FormatClarification(reply string) string {
	var b strings.Builder
	b.WriteString("Can you tell me 🤓 which of these *topic* your question is about 👇:\n\n")
	items := strings.Split(reply, ClarificationDelimiter)
	if len(items) > maxClarifications {
		items = items[:maxClarifications]
	}
	for i, item := range items {
		// The synthesized menu already numbers its entries; strip that
		// so the number stays outside the italic span.
		item = strings.ReplaceAll(item, fmt.Sprintf("%d. ", i+1), "")
		fmt.Fprintf(&b, "%d. _%s_\n", i+1, item)
	}
	return b.String()
}

// FormatSuggestions renders a suggestion reply as a numbered question list.
func FormatSuggestions(reply string) string {
	items := strings.Split(reply, SuggestionDelimiter)
	if len(items) > maxSuggestions {
		items = items[:maxSuggestions]
	}

	var lines []string
	for i, item := range items {
		if len(strings.TrimSpace(item)) <= 1 {
			continue
		}
		item = strings.ReplaceAll(item, fmt.Sprintf("%d. ", i+1), "")
		item = strings.ReplaceAll(item, "\n", "")
		lines = append(lines, fmt.Sprintf("%d. _%s_\n", i+1, item))
	}

	var b strings.Builder
	if len(lines) > 1 {
		b.WriteString("I found some similar *questions* 🤓, maybe ask any of these 👇:\n\n")
	} else if len(lines) == 1 {
		b.WriteString("I found a similar *question* 🤓, maybe ask this 👇:\n\n")
	}
	for _, line := range lines {
		b.WriteString(line)
	}
	return b.String()
}

// FormatAnswer renders a resolved Q&A entry: the answer text followed by its
// attached links, each labelled by media type.
func FormatAnswer(qa *models.QuestionAnswer) string {
	var b strings.Builder
	b.WriteString(qa.Answer)
	if len(qa.MoreDetails) > 0 {
		b.WriteString("\n\n*More Details:* \n")
		for _, link := range qa.MoreDetails {
			fmt.Fprintf(&b, "%s: _%s_\n", ClassifyLink(link), link)
		}
	}
	return b.String()
}

// ClassifyLink labels a URI by its media type, judged from the extension and
// a few hosting keywords.
func ClassifyLink(link string) string {
	switch {
	case hasSuffix(link, "png", "jpg", "jpeg"):
		return "Image"
	case strings.Contains(link, "youtube") || hasSuffix(link, "mkv", "mov", "mp4"):
		return "Video"
	case hasSuffix(link, "pdf"):
		return "PDF"
	case hasSuffix(link, "doc", "docx"):
		return "Document"
	default:
		return "WebPage"
	}
}

func hasSuffix(link string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(link, suffix) {
			return true
		}
	}
	return false
}
