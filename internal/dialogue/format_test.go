package dialogue

import (
	"strings"
	"testing"

	"covidbot/internal/models"
)

func TestFormatSuggestions(t *testing.T) {
	reply := "1. Should I wear a mask?(*)2. How do I wash a mask?"
	got := FormatSuggestions(reply)

	if !strings.HasPrefix(got, "I found some similar *questions*") {
		t.Errorf("FormatSuggestions() = %q, want plural header", got)
	}
	if !strings.Contains(got, "1. _Should I wear a mask?_\n") {
		t.Errorf("FormatSuggestions() missing first item:\n%s", got)
	}
	if !strings.Contains(got, "2. _How do I wash a mask?_\n") {
		t.Errorf("FormatSuggestions() missing second item:\n%s", got)
	}
}

func TestFormatSuggestions_Single(t *testing.T) {
	got := FormatSuggestions("1. Should I wear a mask?(*)")

	if !strings.HasPrefix(got, "I found a similar *question*") {
		t.Errorf("FormatSuggestions() = %q, want singular header", got)
	}
	if strings.Count(got, "_") != 2 {
		t.Errorf("FormatSuggestions() = %q, want exactly one italic item", got)
	}
}

func TestFormatSuggestions_CapsAtFour(t *testing.T) {
	reply := "1. A1(*)2. B2(*)3. C3(*)4. D4(*)5. E5"
	got := FormatSuggestions(reply)

	if strings.Contains(got, "E5") {
		t.Errorf("FormatSuggestions() kept a fifth item:\n%s", got)
	}
	if !strings.Contains(got, "4. _D4_") {
		t.Errorf("FormatSuggestions() dropped the fourth item:\n%s", got)
	}
}

func TestFormatClarification(t *testing.T) {
	reply := "1. Masks#*#2. Vaccines#*#3. Talk to human"
	got := FormatClarification(reply)

	if !strings.HasPrefix(got, "Can you tell me") {
		t.Errorf("FormatClarification() = %q, want clarification header", got)
	}
	for _, want := range []string{"1. _Masks_\n", "2. _Vaccines_\n", "3. _Talk to human_\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatClarification() missing %q:\n%s", want, got)
		}
	}
}

func TestFormatAnswer(t *testing.T) {
	qa := &models.QuestionAnswer{
		Answer: "Yes, masks reduce transmission.",
		MoreDetails: []string{
			"https://example.org/mask-guide.pdf",
			"https://youtube.com/watch?v=abc",
			"https://example.org/poster.png",
			"https://example.org/advice",
		},
	}
	got := FormatAnswer(qa)

	if !strings.HasPrefix(got, "Yes, masks reduce transmission.") {
		t.Errorf("FormatAnswer() = %q, want answer first", got)
	}
	if !strings.Contains(got, "*More Details:* \n") {
		t.Errorf("FormatAnswer() missing details header:\n%s", got)
	}
	for _, want := range []string{
		"PDF: _https://example.org/mask-guide.pdf_",
		"Video: _https://youtube.com/watch?v=abc_",
		"Image: _https://example.org/poster.png_",
		"WebPage: _https://example.org/advice_",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatAnswer() missing %q:\n%s", want, got)
		}
	}
}

func TestFormatAnswer_NoDetails(t *testing.T) {
	qa := &models.QuestionAnswer{Answer: "Stay home if you feel sick."}
	if got := FormatAnswer(qa); got != "Stay home if you feel sick." {
		t.Errorf("FormatAnswer() = %q, want bare answer", got)
	}
}

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://a.org/x.jpg", "Image"},
		{"https://a.org/x.jpeg", "Image"},
		{"https://a.org/clip.mp4", "Video"},
		{"https://a.org/clip.mov", "Video"},
		{"https://youtube.com/v", "Video"},
		{"https://a.org/doc.pdf", "PDF"},
		{"https://a.org/notes.docx", "Document"},
		{"https://a.org/page", "WebPage"},
	}
	for _, tt := range tests {
		if got := ClassifyLink(tt.link); got != tt.want {
			t.Errorf("ClassifyLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
