package ads

import "github.com/roach88/admill/internal/reporting"

// OnNotificationShown records that the host displayed a notification.
// Entry point for the host's notification lifecycle.
func (e *Engine) OnNotificationShown(info NotificationInfo) {
	e.reporter.NotificationShown(e.client.CurrentPlace(), notificationPayload(info))
}

// OnNotificationResult records the user's reaction to a notification.
// A click or dismissal marks the ad seen; a click also starts the
// sustain chain.
func (e *Engine) OnNotificationResult(info NotificationInfo, result NotificationResult) {
	place := e.client.CurrentPlace()
	payload := notificationPayload(info)

	switch result {
	case NotificationClicked:
		e.reporter.NotificationResult(place, "clicked", payload)

		e.client.UpdateAdsUUIDSeen(info.UUID, 1)

		e.StartSustainingAdInteraction(SustainAdInteractionAfterSeconds)

	case NotificationDismissed:
		e.reporter.NotificationResult(place, "dismissed", payload)

		e.client.UpdateAdsUUIDSeen(info.UUID, 1)

	case NotificationTimeout:
		e.reporter.NotificationResult(place, "timeout", payload)
	}
}

// generateLoadEvent emits a load record for a page visit and, in testing
// builds, drives the easter-egg forced serve.
//
// The emission guard is inherited as-is: a record is only produced when
// the host reports the URL as unparseable while still exposing an
// http(s) scheme. See DESIGN.md (open questions).
func (e *Engine) generateLoadEvent(tabID int32, url string) {
	var components URLComponents
	if e.host.GetURLComponents(url, &components) ||
		(components.Scheme != "http" && components.Scheme != "https") {
		return
	}

	tabType := "click"
	if e.client.SearchState() {
		tabType = "search"
	}

	info := reporting.LoadInfo{
		TabID:          tabID,
		TabType:        tabType,
		TabURL:         url,
		Classification: reporting.SplitCategory(e.lastPageClassification),
	}
	if score, ok := e.pageScoreCache[url]; ok {
		info.PageScore = score
	}

	e.reporter.Load(info)

	now := uint64(e.host.Now().Unix())
	if e.isTesting && url == easterEggURL && e.nextEasterEgg < now {
		e.nextEasterEgg = now + NextEasterEggStartsInSeconds

		e.CheckReadyAdServe(true)
	}
}

// generateSettingsEvent emits the current serving configuration.
func (e *Engine) generateSettingsEvent() {
	e.reporter.Settings(reporting.SettingsInfo{
		Available:  e.host.IsNotificationsAvailable(),
		Place:      e.client.CurrentPlace(),
		Locale:     e.client.Locale(),
		AdsPerDay:  e.host.GetAdsPerDay(),
		AdsPerHour: e.host.GetAdsPerHour(),
	})
}

// notificationPayload projects a NotificationInfo into its reporting
// fields.
func notificationPayload(info NotificationInfo) reporting.NotificationInfo {
	return reporting.NotificationInfo{
		Classification: reporting.SplitCategory(info.Category),
		CreativeSetID:  info.CreativeSetID,
		URL:            info.URL,
	}
}
