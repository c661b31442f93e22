// Package nlp is a client for the CoreNLP annotation server. The server
// tokenizes text and tags each token with its part of speech and lemma; this
// package turns that into the keyword sets and annotated expressions the
// ranking and rule engines consume.
package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Token is one annotated token from the NLP server.
type Token struct {
	Word  string `json:"word"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
}

type annotateResponse struct {
	Sentences []struct {
		Tokens []Token `json:"tokens"`
	} `json:"sentences"`
}

// contentPOS are the part-of-speech tags considered content-bearing for
// keyword extraction (nouns, adjectives, verb forms).
var contentPOS = map[string]bool{
	"NN": true, "NNS": true, "NNP": true, "NNPS": true,
	"JJ": true,
	"VB": true, "VBN": true, "VBZ": true, "VBP": true, "VBG": true,
}

// auxiliaryLemmas are excluded from keywords even when tagged as verbs.
var auxiliaryLemmas = map[string]bool{"be": true, "have": true}

// specialChars matches everything outside word characters and whitespace.
var specialChars = regexp.MustCompile(`[^\w\s]`)

// Client calls the CoreNLP annotation server.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates an annotation client for the given server URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// cleanQuery normalizes text before it is sent to the annotation server:
// sentence punctuation becomes spaces and remaining special characters are
// dropped so the server sees a single flat token stream.
func cleanQuery(text string) string {
	replacer := strings.NewReplacer(".", " ", ",", " ", "(", "", ")", "")
	return specialChars.ReplaceAllString(replacer.Replace(text), "")
}

// annotate posts the text and decodes the server's sentence/token response.
func (c *Client) annotate(ctx context.Context, text string) (*annotateResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("annotation server returned %d: %s", resp.StatusCode, body)
	}

	var decoded annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode annotation response: %w", err)
	}
	return &decoded, nil
}

// ExtractKeywords returns the lowercase lemmas of the content-bearing tokens
// in the query, excluding stopwords and auxiliary verbs. Duplicates are left
// to the caller.
func (c *Client) ExtractKeywords(ctx context.Context, query string) ([]string, error) {
	response, err := c.annotate(ctx, cleanQuery(query))
	if err != nil {
		return nil, err
	}

	var keywords []string
	for _, sentence := range response.Sentences {
		for _, token := range sentence.Tokens {
			if !contentPOS[token.POS] {
				continue
			}
			lemma := strings.ToLower(token.Lemma)
			if stopwords[lemma] || auxiliaryLemmas[lemma] {
				continue
			}
			keywords = append(keywords, lemma)
		}
	}
	return keywords, nil
}

// Annotate returns the annotated tokens of the expression's first sentence,
// with the expression lowercased and question marks removed so the tokens
// can feed pattern generation directly.
func (c *Client) Annotate(ctx context.Context, expression string) ([]Token, error) {
	cleaned := strings.ReplaceAll(strings.ToLower(cleanQuery(expression)), "?", "")
	response, err := c.annotate(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if len(response.Sentences) == 0 {
		return nil, nil
	}
	return response.Sentences[0].Tokens, nil
}
