package ads

import (
	"github.com/roach88/admill/internal/searchproviders"
	"github.com/roach88/admill/internal/usermodel"
)

// ClassifyPage scores a visited page, records the score in the rolling
// history, updates the single-page winner, and caches the vector for
// load-event enrichment.
func (e *Engine) ClassifyPage(url, html string) {
	if !e.IsInitialized() {
		return
	}

	e.TestShoppingData(url)
	e.TestSearchState(url)

	score := e.userModel.ClassifyPage(html)
	e.client.AppendPageScoreToHistory(score)

	e.lastPageClassification = e.userModel.WinningCategory(score)

	e.cachePageScore(url, score)
}

// WinnerOverTimeCategory sums the page-score history element-wise and
// returns the winning category of the sum.
//
// Returns "" when the history is empty or any entry's length differs
// from the newest entry's — the sentinel for a history spanning a model
// reload.
func (e *Engine) WinnerOverTimeCategory() string {
	history := e.client.PageScoreHistory()
	if len(history) == 0 {
		return ""
	}

	count := len(history[0])

	sum := make(usermodel.PageScore, count)
	for _, scores := range history {
		if len(scores) != count {
			return ""
		}

		for i, score := range scores {
			sum[i] += score
		}
	}

	return e.userModel.WinningCategory(sum)
}

// cachePageScore remembers the most recent score vector for a URL.
func (e *Engine) cachePageScore(url string, score usermodel.PageScore) {
	e.pageScoreCache[url] = score
}

// TestShoppingData flags shopping activity for recognized shopping
// hostnames and unflags it otherwise.
func (e *Engine) TestShoppingData(url string) {
	if !e.IsInitialized() {
		return
	}

	var components URLComponents
	if !e.host.GetURLComponents(url, &components) {
		return
	}

	if components.Hostname == "www.amazon.com" {
		e.client.FlagShoppingState(url, 1.0)
	} else {
		e.client.UnflagShoppingState()
	}
}

// TestSearchState flags search activity for recognized search providers
// and unflags it otherwise.
func (e *Engine) TestSearchState(url string) {
	if !e.IsInitialized() {
		return
	}

	var components URLComponents
	if !e.host.GetURLComponents(url, &components) {
		return
	}

	if searchproviders.IsSearchEngine(components.Hostname) {
		e.client.FlagSearchState(url, 1.0)
	} else {
		e.client.UnflagSearchState(url)
	}
}
