package usermodel

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// KeywordModel is a keyword-frequency classifier.
//
// It scores a page by counting occurrences of each category's keywords in
// the page text and normalizing the counts to sum to 1. It is deliberately
// small: the engine's decisioning only depends on the Model contract, not
// on classifier quality.
type KeywordModel struct {
	categories []modelCategory
	keywords   map[string][]int // keyword -> category indexes
}

type modelCategory struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type modelDefinition struct {
	Version    int             `json:"version"`
	Categories []modelCategory `json:"categories"`
}

// NewKeywordModel creates an uninitialized keyword model.
func NewKeywordModel() *KeywordModel {
	return &KeywordModel{}
}

// InitializePageClassifier loads a model definition of the form:
//
//	{"version": 1, "categories": [{"name": "sports", "keywords": ["match", …]}, …]}
//
// Category order in the definition fixes the score-vector layout.
func (m *KeywordModel) InitializePageClassifier(raw string) error {
	var def modelDefinition
	if err := json.Unmarshal([]byte(raw), &def); err != nil {
		return fmt.Errorf("parse user model: %w", err)
	}

	if len(def.Categories) == 0 {
		return fmt.Errorf("user model defines no categories")
	}

	keywords := make(map[string][]int)
	for i, category := range def.Categories {
		if category.Name == "" {
			return fmt.Errorf("user model category %d has no name", i)
		}
		for _, keyword := range category.Keywords {
			normalized := strings.ToLower(keyword)
			keywords[normalized] = append(keywords[normalized], i)
		}
	}

	m.categories = def.Categories
	m.keywords = keywords

	return nil
}

// IsInitialized reports whether a model definition has been loaded.
func (m *KeywordModel) IsInitialized() bool {
	return len(m.categories) > 0
}

// ClassifyPage scores the page text against every category.
//
// The returned vector has one entry per category, summing to 1 when any
// keyword matched and all zeros otherwise.
func (m *KeywordModel) ClassifyPage(html string) PageScore {
	scores := make(PageScore, len(m.categories))
	if len(m.categories) == 0 {
		return scores
	}

	total := 0.0
	for _, word := range tokenize(html) {
		for _, index := range m.keywords[word] {
			scores[index]++
			total++
		}
	}

	if total > 0 {
		for i := range scores {
			scores[i] /= total
		}
	}

	return scores
}

// WinningCategory returns the highest-scoring category name.
//
// Ties resolve to the category declared first. A vector whose length does
// not match the category count returns "".
func (m *KeywordModel) WinningCategory(scores PageScore) string {
	if len(scores) == 0 || len(scores) != len(m.categories) {
		return ""
	}

	winner := 0
	for i, score := range scores {
		if score > scores[winner] {
			winner = i
		}
	}

	return m.categories[winner].Name
}

// tokenize lowercases the page, strips markup, and splits into words.
func tokenize(html string) []string {
	var text strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			text.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			text.WriteRune(r)
		}
	}

	return strings.FieldsFunc(strings.ToLower(text.String()), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
