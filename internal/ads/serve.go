package ads

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/admill/internal/catalog"
)

// CheckReadyAdServe runs the ad-serving gate. Unless forced, the engine
// must be in the foreground with no media playing and within its serving
// allowance; the winner-over-time category then drives ad selection.
func (e *Engine) CheckReadyAdServe(forced bool) {
	if !e.IsInitialized() {
		return
	}

	if !forced {
		if !e.IsForeground() {
			slog.Info("notification not made", "reason", "not in foreground")
			return
		}

		if e.IsMediaPlaying() {
			slog.Info("notification not made", "reason", "media playing in browser")
			return
		}

		if !e.IsAllowedToShowAds() {
			slog.Info("notification not made", "reason", "not allowed based on history")
			return
		}
	}

	category := e.WinnerOverTimeCategory()
	e.ServeAdFromCategory(category)
}

// IsAllowedToShowAds evaluates the rolling serving allowance: the hourly
// cap, the daily cap, and a minimum spacing between consecutive shows.
//
// The daily cap is evaluated over the hour window; see DESIGN.md (open
// questions) before changing it.
func (e *Engine) IsAllowedToShowAds() bool {
	hourWindow := uint64(OneHourInSeconds)
	hourAllowed := e.host.GetAdsPerHour()
	if hourAllowed == 0 {
		return false
	}
	respectsHourLimit := e.historyRespectsRollingTimeConstraint(hourWindow, hourAllowed)

	dayWindow := uint64(OneHourInSeconds)
	dayAllowed := e.host.GetAdsPerDay()
	respectsDayLimit := e.historyRespectsRollingTimeConstraint(dayWindow, dayAllowed)

	minimumWaitTime := hourWindow / hourAllowed
	respectsMinimumWaitTime := e.historyRespectsRollingTimeConstraint(minimumWaitTime, 0)

	return respectsHourLimit &&
		respectsDayLimit &&
		respectsMinimumWaitTime
}

// historyRespectsRollingTimeConstraint counts ads shown within the
// window and compares against the allowance.
func (e *Engine) historyRespectsRollingTimeConstraint(windowSeconds, allowed uint64) bool {
	now := uint64(e.host.Now().Unix())

	var recent uint64
	for _, shown := range e.client.AdsShownHistory() {
		if now-shown < windowSeconds {
			recent++
		}
	}

	return recent <= allowed
}

// ServeAdFromCategory requests ads for the winner category in the
// client's region. Serving silently stops when no catalog is loaded or
// the category is empty.
func (e *Engine) ServeAdFromCategory(category string) {
	if e.bundle.CatalogID() == "" {
		slog.Info("notification not made", "reason", "no ad catalog")
		return
	}

	if category == "" {
		slog.Info("notification not made", "reason", "no ad for winner-over-time category")
		return
	}

	locale := e.host.GetAdsLocale()
	region := e.host.GetCountryCode(locale)

	e.host.GetAds(region, category, e.OnGetAds)
}

// OnGetAds handles a per-category ad lookup. A failed lookup retries
// with the category truncated at its last hyphen until no hyphen
// remains; an exhausted fallback gives up. The pick is a uniformly
// random unseen ad, clearing the seen marks for the result set once
// every ad in it has been seen.
func (e *Engine) OnGetAds(result Result, region, category string, ads []catalog.AdInfo) {
	if result != Success {
		if pos := strings.LastIndex(category, "-"); pos != -1 {
			parent := category[:pos]

			slog.Warn("no ads found for category, trying broader category",
				"category", category,
				"parent", parent,
			)

			e.host.GetAds(region, parent, e.OnGetAds)
			return
		}

		if len(ads) == 0 {
			slog.Warn("no ads found for category", "category", category)
			return
		}
	}

	unseen := e.unseenAds(ads)
	if len(unseen) == 0 {
		e.client.ResetAdsUUIDSeen(ads)

		unseen = e.unseenAds(ads)
		if len(unseen) == 0 {
			slog.Info("notification not made", "reason", "no ads for category", "category", category)
			return
		}
	}

	ad := unseen[e.rand.Intn(len(unseen))]
	e.ShowAd(ad, category)
}

// unseenAds filters out ads whose uuid carries a seen mark.
func (e *Engine) unseenAds(ads []catalog.AdInfo) []catalog.AdInfo {
	seen := e.client.AdsUUIDSeen()

	unseen := make([]catalog.AdInfo, 0, len(ads))
	for _, ad := range ads {
		if seen[ad.UUID] != 0 {
			continue
		}
		unseen = append(unseen, ad)
	}

	return unseen
}

// ShowAd validates the ad, ships a notification to the host, remembers
// it for the sustain check, and records the show time. Reports whether
// the ad was shown.
func (e *Engine) ShowAd(ad catalog.AdInfo, category string) bool {
	if !ad.IsValid() {
		slog.Warn("notification not made", "reason", "incomplete ad information", "uuid", ad.UUID)
		return false
	}

	info := NotificationInfo{
		UUID:          ad.UUID,
		CreativeSetID: ad.CreativeSetID,
		Advertiser:    ad.Advertiser,
		Category:      category,
		Text:          ad.NotificationText,
		URL:           ad.NotificationURL,
	}

	e.lastShownNotification = info

	e.host.ShowNotification(info)

	e.client.AppendCurrentTimeToAdsShownHistory()

	return true
}

// ServeSampleAd serves one ad from the host's sample bundle, bypassing
// the serving gate. Diagnostic path.
func (e *Engine) ServeSampleAd() {
	if !e.IsInitialized() {
		return
	}

	e.host.LoadSampleBundle(e.onSampleBundleLoaded)
}

// onSampleBundleLoaded validates and parses the sample bundle, then
// shows a uniformly random ad from a uniformly random non-empty
// category.
func (e *Engine) onSampleBundleLoaded(result Result, raw string) {
	if result != Success {
		slog.Error("failed to load sample bundle")
		return
	}

	schema := e.host.LoadJsonSchema(BundleSchemaName)

	state, err := catalog.ParseBundle(raw, schema)
	if err != nil {
		slog.Error("failed to parse sample bundle", "error", err)
		return
	}

	names := make([]string, 0, len(state.Categories))
	for name, ads := range state.Categories {
		if len(ads) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		slog.Warn("sample bundle does not contain any categories")
		return
	}
	sort.Strings(names)

	category := names[e.rand.Intn(len(names))]
	ads := state.Categories[category]

	ad := ads[e.rand.Intn(len(ads))]
	e.ShowAd(ad, category)
}

// OnCatalogDownloaded installs a downloaded catalog after validating it
// against the bundle schema.
func (e *Engine) OnCatalogDownloaded(result Result, raw string) {
	if result != Success {
		slog.Warn("failed to download catalog")
		return
	}

	schema := e.host.LoadJsonSchema(BundleSchemaName)

	state, err := catalog.ParseBundle(raw, schema)
	if err != nil {
		slog.Error("failed to parse catalog", "error", err)
		return
	}

	e.bundle.Update(state)

	slog.Info("catalog updated", "catalog_id", state.CatalogID)
}
