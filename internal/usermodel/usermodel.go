// Package usermodel wraps the page classifier behind a small interface.
//
// The engine only needs two operations from the classifier: turn a page's
// HTML into a vector of per-category probabilities, and turn such a vector
// (or an element-wise sum of several) back into a winning category name.
// The production classifier is supplied by the host; KeywordModel is the
// reference implementation used by the harness and the CLI.
package usermodel

// PageScore is a vector of per-category probabilities for one page.
//
// All scores produced by the same model instance have the same length
// (the model's category count). The engine treats a length mismatch
// across history entries as a sentinel for a model reload.
type PageScore []float64

// Model is the page-classifier contract consumed by the engine.
//
// InitializePageClassifier must be called with the model JSON before any
// classification; IsInitialized reports whether that succeeded. A Model
// is used from the engine goroutine only.
type Model interface {
	// InitializePageClassifier loads the serialized classifier.
	InitializePageClassifier(json string) error

	// IsInitialized reports whether the classifier has been loaded.
	IsInitialized() bool

	// ClassifyPage scores a page's HTML against every category.
	ClassifyPage(html string) PageScore

	// WinningCategory returns the category with the highest score,
	// or "" if the vector is empty or does not match the category count.
	WinningCategory(scores PageScore) string
}
