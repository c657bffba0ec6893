package harness

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/admill/internal/ads"
	"github.com/roach88/admill/internal/catalog"
)

// Scenario is a scripted engine session: host facts, canned payloads,
// and an ordered list of steps.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden trace file is
	// named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Seed fixes the engine's random source. Defaults to 1.
	Seed int64 `yaml:"seed,omitempty"`

	// Testing enables testing-only engine behavior (easter egg).
	Testing bool `yaml:"testing,omitempty"`

	// Locales overrides the host's locale list.
	Locales []string `yaml:"locales,omitempty"`

	// AdsPerHour / AdsPerDay override the serving configuration.
	AdsPerHour *uint64 `yaml:"ads_per_hour,omitempty"`
	AdsPerDay  *uint64 `yaml:"ads_per_day,omitempty"`

	// UserModel is the classifier definition JSON.
	UserModel string `yaml:"user_model"`

	// Catalog is bundle JSON delivered right after initialization. Its
	// categories also back the host's per-category ad lookups.
	Catalog string `yaml:"catalog,omitempty"`

	// SampleBundle is bundle JSON served by LoadSampleBundle.
	SampleBundle string `yaml:"sample_bundle,omitempty"`

	// LoadableURLs lists URLs the host scripts so the engine records
	// load events for them.
	LoadableURLs []string `yaml:"loadable_urls,omitempty"`

	// Steps is the ordered session script.
	Steps []Step `yaml:"steps"`
}

// Step is one scripted engine call.
//
// Actions: initialize, deinitialize, foreground, background, idle,
// un_idle, media_playing, media_stopped, tab_updated, tab_closed,
// classify, change_locale, check_ready_ad_serve, serve_sample_ad,
// notification_shown, notification_result, fire_timer, advance_clock,
// remove_all_history, save_cached_info.
type Step struct {
	Action string `yaml:"action"`

	TabID     int32  `yaml:"tab_id,omitempty"`
	URL       string `yaml:"url,omitempty"`
	HTML      string `yaml:"html,omitempty"`
	Active    bool   `yaml:"active,omitempty"`
	Incognito bool   `yaml:"incognito,omitempty"`
	Forced    bool   `yaml:"forced,omitempty"`
	Seconds   int64  `yaml:"seconds,omitempty"`
	Slot      string `yaml:"slot,omitempty"`   // "collect" | "sustain"
	Result    string `yaml:"result,omitempty"` // "clicked" | "dismissed" | "timeout"
	Locale    string `yaml:"locale,omitempty"`
}

// RunResult captures everything observable from a scenario run.
type RunResult struct {
	Host   *ScriptedHost
	Engine *ads.Engine
}

// EventRecords returns the emitted event stream, in order.
func (r *RunResult) EventRecords() []string {
	return r.Host.EventRecords
}

// Notifications returns the notifications shipped to the host, in order.
func (r *RunResult) Notifications() []ads.NotificationInfo {
	return r.Host.Notifications
}

// LoadScenario reads and parses a scenario file, rejecting unknown
// fields so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var scenario Scenario
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario has no name")
	}
	if scenario.UserModel == "" {
		return nil, fmt.Errorf("scenario %q has no user_model", scenario.Name)
	}

	return &scenario, nil
}

// Run executes a scenario: builds a scripted host, initializes the
// engine, delivers the catalog, then replays every step.
func Run(scenario *Scenario) (*RunResult, error) {
	host := NewScriptedHost()
	host.UserModelJSON = scenario.UserModel
	host.SampleBundleJSON = scenario.SampleBundle

	if scenario.Locales != nil {
		host.Locales = scenario.Locales
	}
	if scenario.AdsPerHour != nil {
		host.AdsPerHour = *scenario.AdsPerHour
	}
	if scenario.AdsPerDay != nil {
		host.AdsPerDay = *scenario.AdsPerDay
	}
	for _, raw := range scenario.LoadableURLs {
		host.ScriptLoadableURL(raw)
	}

	if scenario.Catalog != "" {
		state, err := catalog.ParseBundle(scenario.Catalog, catalog.DefaultBundleSchema)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		host.AdsByCategory = state.Categories
		host.CatalogJSON = scenario.Catalog
	}

	seed := scenario.Seed
	if seed == 0 {
		seed = 1
	}

	engine := ads.New(host,
		ads.WithRand(rand.New(rand.NewSource(seed))),
		ads.WithTesting(scenario.Testing),
	)

	engine.Initialize()

	if host.CatalogJSON != "" {
		engine.OnCatalogDownloaded(ads.Success, host.CatalogJSON)
	}

	result := &RunResult{Host: host, Engine: engine}

	for i, step := range scenario.Steps {
		if err := apply(result, step); err != nil {
			return nil, fmt.Errorf("scenario %q step %d (%s): %w", scenario.Name, i, step.Action, err)
		}
	}

	return result, nil
}

func apply(r *RunResult, step Step) error {
	engine, host := r.Engine, r.Host

	switch step.Action {
	case "initialize":
		engine.Initialize()
	case "deinitialize":
		engine.Deinitialize()
	case "foreground":
		engine.OnForeground()
	case "background":
		engine.OnBackground()
	case "idle":
		engine.OnIdle()
	case "un_idle":
		engine.OnUnIdle()
	case "media_playing":
		engine.OnMediaPlaying(step.TabID)
	case "media_stopped":
		engine.OnMediaStopped(step.TabID)
	case "tab_updated":
		engine.TabUpdated(step.TabID, step.URL, step.Active, step.Incognito)
	case "tab_closed":
		engine.TabClosed(step.TabID)
	case "classify":
		engine.ClassifyPage(step.URL, step.HTML)
	case "change_locale":
		engine.ChangeLocale(step.Locale)
	case "check_ready_ad_serve":
		engine.CheckReadyAdServe(step.Forced)
	case "serve_sample_ad":
		engine.ServeSampleAd()
	case "notification_shown":
		engine.OnNotificationShown(engine.LastShownNotification())
	case "notification_result":
		result, err := notificationResult(step.Result)
		if err != nil {
			return err
		}
		engine.OnNotificationResult(engine.LastShownNotification(), result)
	case "fire_timer":
		id, err := timerID(engine, step.Slot)
		if err != nil {
			return err
		}
		engine.OnTimer(id)
	case "advance_clock":
		host.Advance(time.Duration(step.Seconds) * time.Second)
	case "remove_all_history":
		engine.RemoveAllHistory()
	case "save_cached_info":
		engine.SaveCachedInfo()
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	return nil
}

func notificationResult(name string) (ads.NotificationResult, error) {
	switch name {
	case "clicked":
		return ads.NotificationClicked, nil
	case "dismissed":
		return ads.NotificationDismissed, nil
	case "timeout":
		return ads.NotificationTimeout, nil
	default:
		return 0, fmt.Errorf("unknown notification result %q", name)
	}
}

func timerID(engine *ads.Engine, slot string) (uint32, error) {
	switch slot {
	case "collect":
		return engine.CollectActivityTimerID(), nil
	case "sustain":
		return engine.SustainAdInteractionTimerID(), nil
	default:
		return 0, fmt.Errorf("unknown timer slot %q", slot)
	}
}
