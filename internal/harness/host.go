// Package harness drives the engine deterministically for tests and the
// CLI: a fully scripted host, a YAML scenario format, and golden-file
// trace comparison.
package harness

import (
	"net/url"
	"time"

	"github.com/roach88/admill/internal/ads"
	"github.com/roach88/admill/internal/catalog"
	"github.com/roach88/admill/internal/localeutil"
)

// ScriptedHost is a deterministic in-memory ads.Host.
//
// Every asynchronous host call completes synchronously on the caller's
// goroutine, which matches the engine's single-threaded model. The zero
// value is not usable; use NewScriptedHost.
type ScriptedHost struct {
	// Facts the engine reads.
	AdsEnabled             bool
	NotificationsAvailable bool
	Locales                []string
	AdsLocale              string
	SSID                   string
	AdsPerHour             uint64
	AdsPerDay              uint64

	// Canned payloads.
	UserModelJSON    string
	UserModelResult  ads.Result
	SampleBundleJSON string
	SampleBundleRes  ads.Result
	CatalogJSON      string
	Schemas          map[string]string
	AdsByCategory    map[string][]catalog.AdInfo

	// Persistence.
	Blobs    map[string]string
	FailLoad bool
	FailSave bool

	// Scheduling.
	FailTimers  bool
	nextTimerID uint32
	timers      map[uint32]uint64

	// Captured outputs.
	EventRecords     []string
	Notifications    []ads.NotificationInfo
	CatalogDownloads int
	IdleThreshold    int

	clock      time.Time
	urlScripts map[string]urlScript
}

type urlScript struct {
	components ads.URLComponents
	ok         bool
}

// NewScriptedHost creates a host with serving-friendly defaults: ads
// enabled, notifications available, English locale, two ads per hour.
func NewScriptedHost() *ScriptedHost {
	return &ScriptedHost{
		AdsEnabled:             true,
		NotificationsAvailable: true,
		Locales:                []string{"en", "fr_FR"},
		AdsLocale:              "en_US",
		AdsPerHour:             2,
		AdsPerDay:              20,
		Schemas: map[string]string{
			"bundle-schema.json": catalog.DefaultBundleSchema,
		},
		AdsByCategory: make(map[string][]catalog.AdInfo),
		Blobs:         make(map[string]string),
		timers:        make(map[uint32]uint64),
		clock:         time.Date(2019, 3, 12, 10, 0, 0, 0, time.UTC),
		urlScripts:    make(map[string]urlScript),
	}
}

// ScriptURL fixes the URL-parser response for a URL. Unscripted URLs
// parse through net/url and report success.
func (h *ScriptedHost) ScriptURL(raw string, components ads.URLComponents, ok bool) {
	h.urlScripts[raw] = urlScript{components: components, ok: ok}
}

// ScriptLoadableURL scripts a URL so the engine records load events for
// it: the parser reports failure while still exposing the components.
func (h *ScriptedHost) ScriptLoadableURL(raw string) {
	parsed, err := url.Parse(raw)
	if err != nil {
		h.ScriptURL(raw, ads.URLComponents{URL: raw}, false)
		return
	}

	h.ScriptURL(raw, ads.URLComponents{
		URL:      raw,
		Scheme:   parsed.Scheme,
		Hostname: parsed.Hostname(),
		Port:     parsed.Port(),
		Query:    parsed.RawQuery,
		Fragment: parsed.Fragment,
	}, false)
}

// Advance moves the host clock forward.
func (h *ScriptedHost) Advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

// ActiveTimers returns the ids of pending timers, in creation order.
func (h *ScriptedHost) ActiveTimers() []uint32 {
	ids := make([]uint32, 0, len(h.timers))
	for id := uint32(1); id <= h.nextTimerID; id++ {
		if _, ok := h.timers[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// TimerDelay returns the delay a pending timer was armed with.
func (h *ScriptedHost) TimerDelay(id uint32) (uint64, bool) {
	delay, ok := h.timers[id]
	return delay, ok
}

func (h *ScriptedHost) IsAdsEnabled() bool             { return h.AdsEnabled }
func (h *ScriptedHost) IsNotificationsAvailable() bool { return h.NotificationsAvailable }
func (h *ScriptedHost) GetLocales() []string           { return h.Locales }
func (h *ScriptedHost) GetAdsLocale() string           { return h.AdsLocale }

func (h *ScriptedHost) GetCountryCode(locale string) string {
	return localeutil.CountryCode(locale)
}

func (h *ScriptedHost) Load(name string, callback func(ads.Result, string)) {
	value, ok := h.Blobs[name]
	if h.FailLoad || !ok {
		callback(ads.Failed, "")
		return
	}
	callback(ads.Success, value)
}

func (h *ScriptedHost) Save(name, value string, callback func(ads.Result)) {
	if h.FailSave {
		callback(ads.Failed)
		return
	}
	h.Blobs[name] = value
	callback(ads.Success)
}

func (h *ScriptedHost) LoadUserModelForLocale(_ string, callback func(ads.Result, string)) {
	callback(h.UserModelResult, h.UserModelJSON)
}

func (h *ScriptedHost) DownloadCatalog() {
	h.CatalogDownloads++
}

func (h *ScriptedHost) GetAds(region, category string, callback func(ads.Result, string, string, []catalog.AdInfo)) {
	found := h.AdsByCategory[category]
	if len(found) == 0 {
		callback(ads.Failed, region, category, nil)
		return
	}
	callback(ads.Success, region, category, found)
}

func (h *ScriptedHost) LoadSampleBundle(callback func(ads.Result, string)) {
	callback(h.SampleBundleRes, h.SampleBundleJSON)
}

func (h *ScriptedHost) LoadJsonSchema(name string) string {
	return h.Schemas[name]
}

func (h *ScriptedHost) ShowNotification(info ads.NotificationInfo) {
	h.Notifications = append(h.Notifications, info)
}

func (h *ScriptedHost) GetURLComponents(raw string, components *ads.URLComponents) bool {
	if script, ok := h.urlScripts[raw]; ok {
		*components = script.components
		return script.ok
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	*components = ads.URLComponents{
		URL:      raw,
		Scheme:   parsed.Scheme,
		Hostname: parsed.Hostname(),
		Port:     parsed.Port(),
		Query:    parsed.RawQuery,
		Fragment: parsed.Fragment,
	}
	return true
}

func (h *ScriptedHost) GetSSID() string { return h.SSID }

func (h *ScriptedHost) Now() time.Time { return h.clock }

func (h *ScriptedHost) SetTimer(delaySeconds uint64) uint32 {
	if h.FailTimers {
		return 0
	}

	h.nextTimerID++
	h.timers[h.nextTimerID] = delaySeconds
	return h.nextTimerID
}

func (h *ScriptedHost) KillTimer(id uint32) {
	delete(h.timers, id)
}

func (h *ScriptedHost) SetIdleThreshold(seconds int) {
	h.IdleThreshold = seconds
}

func (h *ScriptedHost) GetAdsPerHour() uint64 { return h.AdsPerHour }
func (h *ScriptedHost) GetAdsPerDay() uint64  { return h.AdsPerDay }

func (h *ScriptedHost) EventLog(json string) {
	h.EventRecords = append(h.EventRecords, json)
}
