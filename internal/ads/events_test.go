package ads_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/admill/internal/ads"
)

// loadRecords filters the host's event stream down to load records.
func loadRecords(records []string) []string {
	var loads []string
	for _, record := range records {
		if strings.Contains(record, `"type":"load"`) {
			loads = append(loads, record)
		}
	}
	return loads
}

// TestLoadEvent_EmissionGuard tests the inherited guard: records are
// produced only when the parser reports failure while exposing an
// http(s) scheme.
func TestLoadEvent_EmissionGuard(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	// Parser succeeds: no record.
	engine.TabUpdated(1, "https://parsed.example/", true, false)
	assert.Empty(t, loadRecords(host.EventRecords))

	// Parser fails with a non-http scheme: no record.
	host.ScriptURL("ftp://files.example/", ads.URLComponents{Scheme: "ftp"}, false)
	engine.TabUpdated(1, "ftp://files.example/", true, false)
	assert.Empty(t, loadRecords(host.EventRecords))

	// Parser fails while exposing an https scheme: record emitted.
	host.ScriptLoadableURL("https://loadable.example/page")
	engine.TabUpdated(1, "https://loadable.example/page", true, false)

	loads := loadRecords(host.EventRecords)
	require.Len(t, loads, 1)
	assert.Contains(t, loads[0], `"tabUrl":"https://loadable.example/page"`)
	assert.Contains(t, loads[0], `"tabType":"click"`)
}

// TestLoadEvent_SearchTabType tests that search activity switches the
// tab type.
func TestLoadEvent_SearchTabType(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	engine.TestSearchState("https://www.google.com/search?q=x")

	host.ScriptLoadableURL("https://loadable.example/")
	engine.TabUpdated(1, "https://loadable.example/", true, false)

	loads := loadRecords(host.EventRecords)
	require.Len(t, loads, 1)
	assert.Contains(t, loads[0], `"tabType":"search"`)
}

// TestLoadEvent_PageScoreEnrichment tests that a cached classification
// enriches later load records for the same URL.
func TestLoadEvent_PageScoreEnrichment(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	url := "https://loadable.example/tennis"
	host.ScriptLoadableURL(url)

	engine.TabUpdated(1, url, true, false)
	engine.ClassifyPage(url, "tennis")
	engine.TabUpdated(1, url, true, false)

	loads := loadRecords(host.EventRecords)
	require.Len(t, loads, 2)

	assert.NotContains(t, loads[0], "pageScore")
	assert.Contains(t, loads[0], `"tabClassification":[]`)

	assert.Contains(t, loads[1], `"pageScore":[1,0]`)
	assert.Contains(t, loads[1], `"tabClassification":["sports","tennis","doubles"]`)
}

// TestEasterEgg tests the forced serve on the testing URL, and its
// cool-down window.
func TestEasterEgg(t *testing.T) {
	host := newHost()
	host.UserModelJSON = testModel

	engine := ads.New(host, ads.WithTesting(true))
	engine.Initialize()
	require.True(t, engine.IsInitialized())

	host.AdsByCategory = adCategories("sports", testAd("u1"))
	engine.OnCatalogDownloaded(ads.Success, bundleJSON(t, adCategories("sports", testAd("u1"))))

	classifyTennisPage(engine)

	// Preconditions that would block an unforced serve.
	engine.OnMediaPlaying(1)

	host.ScriptLoadableURL("https://www.iab.com/")
	engine.TabUpdated(1, "https://www.iab.com/", true, false)

	require.Len(t, host.Notifications, 1)

	// Within the cool-down the egg does not fire again.
	engine.TabUpdated(1, "https://www.iab.com/", true, false)
	assert.Len(t, host.Notifications, 1)

	// Past the cool-down it does.
	host.Advance(31 * time.Second)
	engine.TabUpdated(1, "https://www.iab.com/", true, false)
	assert.Len(t, host.Notifications, 2)
}

// TestEasterEgg_DisabledOutsideTesting tests that production builds
// ignore the testing URL.
func TestEasterEgg_DisabledOutsideTesting(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, adCategories("sports", testAd("u1")))

	classifyTennisPage(engine)

	host.ScriptLoadableURL("https://www.iab.com/")
	engine.TabUpdated(1, "https://www.iab.com/", true, false)

	assert.Empty(t, host.Notifications)
}

// TestSettingsEvent_Payload tests the settings record contents.
func TestSettingsEvent_Payload(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)
	_ = engine

	require.NotEmpty(t, host.EventRecords)
	settings := host.EventRecords[0]
	assert.Contains(t, settings, `"type":"settings"`)
	assert.Contains(t, settings, `"notifications":{"available":true}`)
	assert.Contains(t, settings, `"place":"unknown"`)
	assert.Contains(t, settings, `"locale":"en"`)
	assert.Contains(t, settings, `"adsPerDay":20`)
	assert.Contains(t, settings, `"adsPerHour":2`)
}
