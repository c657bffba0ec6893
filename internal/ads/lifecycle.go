package ads

import (
	"log/slog"
	"slices"

	"github.com/roach88/admill/internal/localeutil"
	"github.com/roach88/admill/internal/usermodel"
)

// Initialize starts the three-stage initialization chain. Stage one
// requests the persisted client state; the remaining stages run as the
// host's load callbacks complete.
func (e *Engine) Initialize() {
	if e.IsInitialized() {
		slog.Warn("already initialized")
		return
	}

	if !e.host.IsAdsEnabled() {
		slog.Info("deinitializing as ads are disabled")
		e.Deinitialize()
		return
	}

	e.client.LoadState(e.initializeStep2)
}

// initializeStep2 runs once the client state has loaded: record the
// host's locales and request the user model for the active locale.
func (e *Engine) initializeStep2() {
	if locales := e.host.GetLocales(); len(locales) > 0 {
		e.client.SetLocales(locales)
	}

	if e.client.Locale() == "" {
		e.client.SetLocale(DefaultLanguage)
	}

	e.loadUserModel()
}

// initializeStep3 runs once the user model has loaded for the first time.
func (e *Engine) initializeStep3() {
	e.isInitialized = true

	slog.Info("successfully initialized")

	e.host.SetIdleThreshold(IdleThresholdInSeconds)

	e.NotificationAllowedCheck(false)

	e.retrieveSSID()

	e.ConfirmAdUUIDIfAdEnabled()

	e.host.DownloadCatalog()
}

// IsInitialized reports whether the engine is fully operational: the
// initialization chain completed, the host still has ads enabled, and a
// user model is loaded.
func (e *Engine) IsInitialized() bool {
	if !e.isInitialized ||
		!e.host.IsAdsEnabled() ||
		e.userModel == nil ||
		!e.userModel.IsInitialized() {
		return false
	}

	return true
}

// Deinitialize tears the engine down: kills both timer slots, clears all
// history and caches, resets the bundle and user model, and returns the
// reporter to its first-run state. Host callbacks that arrive afterwards
// no-op through the IsInitialized gate.
func (e *Engine) Deinitialize() {
	if !e.IsInitialized() {
		slog.Warn("failed to deinitialize as not initialized")
		return
	}

	e.StopSustainingAdInteraction()

	e.RemoveAllHistory()

	// RemoveAllHistory re-arms activity collection when ads are still
	// enabled; both timer slots must end empty.
	e.StopCollectingActivity()

	e.bundle.Reset()
	e.userModel = nil

	e.lastShownNotification = NotificationInfo{}
	e.lastShownTabURL = ""

	e.lastPageClassification = ""
	e.pageScoreCache = make(map[string]usermodel.PageScore)
	e.mediaPlaying = make(map[int32]bool)

	e.reporter.Reset()
	e.isInitialized = false
	e.isForeground = false
}

// RemoveAllHistory resets the persisted client state and re-confirms the
// ad uuid (which re-arms activity collection while ads are enabled).
func (e *Engine) RemoveAllHistory() {
	e.client.RemoveAllHistory()

	e.ConfirmAdUUIDIfAdEnabled()
}

// SaveCachedInfo persists the client state, first wiping history when
// ads have been disabled.
func (e *Engine) SaveCachedInfo() {
	if !e.host.IsAdsEnabled() {
		e.client.RemoveAllHistory()
	}

	e.client.SaveState()
}

// ChangeLocale switches the active locale, falling back to the locale's
// language code and then to the default language, and reloads the user
// model.
func (e *Engine) ChangeLocale(locale string) {
	if !e.IsInitialized() {
		return
	}

	locales := e.host.GetLocales()

	if slices.Contains(locales, locale) {
		e.client.SetLocale(locale)
	} else if language := localeutil.LanguageCode(locale); slices.Contains(locales, language) {
		e.client.SetLocale(language)
	} else {
		e.client.SetLocale(DefaultLanguage)
	}

	e.loadUserModel()
}

// loadUserModel requests the user model for the active locale.
func (e *Engine) loadUserModel() {
	e.host.LoadUserModelForLocale(e.client.Locale(), e.onUserModelLoaded)
}

// onUserModelLoaded installs a freshly built classifier. A failed load
// or parse leaves the engine not fully initialized; serving stays gated
// on IsInitialized.
func (e *Engine) onUserModelLoaded(result Result, json string) {
	if result != Success {
		slog.Error("failed to load user model")
		return
	}

	slog.Info("successfully loaded user model")

	model := e.newModel()
	if err := model.InitializePageClassifier(json); err != nil {
		slog.Error("failed to initialize page classifier", "error", err)
		return
	}
	e.userModel = model

	if !e.IsInitialized() {
		e.initializeStep3()
	}
}

// OnForeground records that the host came to the foreground.
func (e *Engine) OnForeground() {
	e.isForeground = true
	e.reporter.Foreground(e.client.CurrentPlace())
}

// OnBackground records that the host went to the background.
func (e *Engine) OnBackground() {
	e.isForeground = false
	e.reporter.Background(e.client.CurrentPlace())
}

// IsForeground reports whether the host is in the foreground.
func (e *Engine) IsForeground() bool {
	return e.isForeground
}

// OnIdle records the start of an idle period. Bookkeeping only.
func (e *Engine) OnIdle() {
	if !e.IsInitialized() {
		return
	}

	slog.Debug("idle state changed", "idle", true)
}

// OnUnIdle records the end of an idle period and runs the
// notification-allowed check with serving enabled.
func (e *Engine) OnUnIdle() {
	if !e.IsInitialized() {
		return
	}

	e.client.UpdateLastUserIdleStopTime()

	e.NotificationAllowedCheck(true)
}

// OnMediaPlaying records that media started on a tab. Duplicate starts
// are no-ops.
func (e *Engine) OnMediaPlaying(tabID int32) {
	if e.mediaPlaying[tabID] {
		return
	}

	e.mediaPlaying[tabID] = true
}

// OnMediaStopped records that media stopped on a tab. Stops for tabs
// without media are no-ops.
func (e *Engine) OnMediaStopped(tabID int32) {
	if !e.mediaPlaying[tabID] {
		return
	}

	delete(e.mediaPlaying, tabID)
}

// IsMediaPlaying reports whether any tab has active media.
func (e *Engine) IsMediaPlaying() bool {
	return len(e.mediaPlaying) > 0
}

// TabUpdated processes a tab navigation or activation. Incognito tabs
// are ignored entirely.
func (e *Engine) TabUpdated(tabID int32, url string, isActive, isIncognito bool) {
	if isIncognito {
		return
	}

	if !e.IsInitialized() {
		return
	}

	e.client.UpdateLastUserActivity()

	e.generateLoadEvent(tabID, url)

	if isActive {
		e.lastShownTabURL = url

		e.TestShoppingData(url)
		e.TestSearchState(url)

		e.reporter.Focus(tabID)
	} else {
		e.reporter.Blur(tabID)
	}
}

// TabClosed processes a closed tab: media on that tab is treated as
// stopped, and a destroy record is emitted. Runs unconditionally so the
// media set stays correct across partial initialization.
func (e *Engine) TabClosed(tabID int32) {
	e.OnMediaStopped(tabID)

	e.reporter.Destroy(tabID)
}

// NotificationAllowedCheck refreshes the notification-availability flag,
// emits a settings record on the initial check or on change, and — when
// serve is set — proceeds to the ad-serving gate.
func (e *Engine) NotificationAllowedCheck(serve bool) {
	ok := e.host.IsNotificationsAvailable()

	previous := e.client.Available()
	if ok != previous {
		e.client.SetAvailable(ok)
	}

	if !serve || ok != previous {
		e.generateSettingsEvent()
	}

	if !serve {
		return
	}

	if !ok {
		slog.Warn("ad not served", "reason", "notifications not presently allowed")
		return
	}

	e.CheckReadyAdServe(false)
}

// retrieveSSID records the current network, mapping an empty SSID to the
// unknown sentinel.
func (e *Engine) retrieveSSID() {
	ssid := e.host.GetSSID()
	if ssid == "" {
		ssid = UnknownSSID
	}

	e.client.SetCurrentSSID(ssid)
}
