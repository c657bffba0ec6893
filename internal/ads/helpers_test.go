package ads_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/admill/internal/ads"
	"github.com/roach88/admill/internal/catalog"
	"github.com/roach88/admill/internal/harness"
)

// testModel classifies tennis pages into a three-level category so the
// serving tests can exercise category fallback.
const testModel = `{
	"version": 1,
	"categories": [
		{"name": "sports-tennis-doubles", "keywords": ["tennis"]},
		{"name": "technology-computing", "keywords": ["compiler"]}
	]
}`

func testAd(uuid string) catalog.AdInfo {
	return catalog.AdInfo{
		UUID:             uuid,
		CreativeSetID:    "cs-" + uuid,
		Advertiser:       "Acme",
		NotificationText: "New racquets",
		NotificationURL:  "https://acme.example/" + uuid,
	}
}

// bundleJSON serializes a category map into bundle JSON the host can
// deliver as a downloaded catalog.
func bundleJSON(t *testing.T, categories map[string][]catalog.AdInfo) string {
	t.Helper()

	raw, err := json.Marshal(catalog.BundleState{
		CatalogID:  "catalog-1",
		Categories: categories,
	})
	require.NoError(t, err)
	return string(raw)
}

// newHost returns a scripted host carrying the test model.
func newHost() *harness.ScriptedHost {
	host := harness.NewScriptedHost()
	host.UserModelJSON = testModel
	return host
}

// newInitializedEngine initializes an engine against the host and
// delivers a catalog holding the given categories.
func newInitializedEngine(t *testing.T, host *harness.ScriptedHost, categories map[string][]catalog.AdInfo) *ads.Engine {
	t.Helper()

	engine := ads.New(host, ads.WithRand(rand.New(rand.NewSource(1))))
	engine.Initialize()
	require.True(t, engine.IsInitialized())

	if categories != nil {
		host.AdsByCategory = categories
		engine.OnCatalogDownloaded(ads.Success, bundleJSON(t, categories))
		require.NotEmpty(t, engine.Bundle().CatalogID())
	}

	return engine
}

// adCategories builds a category map literal.
func adCategories(category string, ads ...catalog.AdInfo) map[string][]catalog.AdInfo {
	return map[string][]catalog.AdInfo{category: ads}
}

// classifyTennisPage drives one classification so the winner-over-time
// category resolves to sports-tennis-doubles.
func classifyTennisPage(engine *ads.Engine) {
	engine.ClassifyPage("https://example.com/tennis", "tennis tennis tennis")
}
