// Package searchproviders recognizes well-known search-engine hostnames.
//
// The engine uses this table to decide whether a focused page counts as
// search activity. Matching is by hostname only; paths and query strings
// are deliberately ignored.
package searchproviders

import "strings"

// Provider describes one search engine.
type Provider struct {
	Name      string
	Hostnames []string
}

// Providers is the recognition table, in no significant order.
var Providers = []Provider{
	{Name: "Google", Hostnames: []string{"www.google.com", "google.com"}},
	{Name: "Bing", Hostnames: []string{"www.bing.com", "bing.com"}},
	{Name: "DuckDuckGo", Hostnames: []string{"duckduckgo.com", "www.duckduckgo.com"}},
	{Name: "Yahoo", Hostnames: []string{"search.yahoo.com"}},
	{Name: "Qwant", Hostnames: []string{"www.qwant.com", "qwant.com"}},
	{Name: "StartPage", Hostnames: []string{"www.startpage.com", "startpage.com"}},
	{Name: "Ecosia", Hostnames: []string{"www.ecosia.org", "ecosia.org"}},
	{Name: "Baidu", Hostnames: []string{"www.baidu.com"}},
	{Name: "Yandex", Hostnames: []string{"yandex.com", "www.yandex.com"}},
	{Name: "Infogalactic", Hostnames: []string{"infogalactic.com"}},
	{Name: "Wolfram Alpha", Hostnames: []string{"www.wolframalpha.com"}},
	{Name: "Semantic Scholar", Hostnames: []string{"www.semanticscholar.org"}},
}

var hostnames = buildIndex()

func buildIndex() map[string]bool {
	index := make(map[string]bool)
	for _, provider := range Providers {
		for _, hostname := range provider.Hostnames {
			index[strings.ToLower(hostname)] = true
		}
	}
	return index
}

// IsSearchEngine reports whether the hostname belongs to a known provider.
func IsSearchEngine(hostname string) bool {
	return hostnames[strings.ToLower(hostname)]
}
