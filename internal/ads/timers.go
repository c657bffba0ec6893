package ads

import "log/slog"

// OnTimer routes a fired host timer to the slot that owns it.
func (e *Engine) OnTimer(timerID uint32) {
	if timerID == 0 {
		return
	}

	switch timerID {
	case e.collectActivityTimerID:
		e.collectActivity()
	case e.sustainAdInteractionTimerID:
		e.sustainAdInteraction()
	}
}

// StartCollectingActivity schedules the next activity collection,
// cancelling any pending one first.
func (e *Engine) StartCollectingActivity(delaySeconds uint64) {
	e.StopCollectingActivity()

	e.collectActivityTimerID = e.host.SetTimer(delaySeconds)
	if e.collectActivityTimerID == 0 {
		slog.Error("failed to start collecting activity due to an invalid timer")
		return
	}

	slog.Info("start collecting activity", "seconds", delaySeconds)
}

// StopCollectingActivity cancels a pending activity collection.
func (e *Engine) StopCollectingActivity() {
	if !e.IsCollectingActivity() {
		return
	}

	slog.Info("stopped collecting activity")

	e.host.KillTimer(e.collectActivityTimerID)
	e.collectActivityTimerID = 0
}

// IsCollectingActivity reports whether an activity timer is pending.
func (e *Engine) IsCollectingActivity() bool {
	return e.collectActivityTimerID != 0
}

// CollectActivityTimerID returns the pending activity timer id, 0 when
// none. Used by hosts that route timers by slot, and by tests.
func (e *Engine) CollectActivityTimerID() uint32 {
	return e.collectActivityTimerID
}

// collectActivity triggers a catalog refresh. The timer is one-shot:
// re-arming happens through ConfirmAdUUIDIfAdEnabled, not here.
func (e *Engine) collectActivity() {
	if !e.IsInitialized() {
		return
	}

	slog.Info("collect activity")

	e.host.DownloadCatalog()
}

// ConfirmAdUUIDIfAdEnabled confirms the client's ad uuid and (re)arms
// activity collection; with ads disabled it cancels collection instead.
func (e *Engine) ConfirmAdUUIDIfAdEnabled() {
	if !e.host.IsAdsEnabled() {
		e.StopCollectingActivity()
		return
	}

	e.client.UpdateAdUUID()

	if e.isDebug {
		e.StartCollectingActivity(DebugOneHourInSeconds)
	} else {
		e.StartCollectingActivity(OneHourInSeconds)
	}
}

// StartSustainingAdInteraction schedules the next sustain check,
// cancelling any pending one first.
func (e *Engine) StartSustainingAdInteraction(delaySeconds uint64) {
	e.StopSustainingAdInteraction()

	e.sustainAdInteractionTimerID = e.host.SetTimer(delaySeconds)
	if e.sustainAdInteractionTimerID == 0 {
		slog.Error("failed to start sustaining ad interaction due to an invalid timer")
		return
	}

	slog.Info("start sustaining ad interaction", "seconds", delaySeconds)
}

// StopSustainingAdInteraction cancels a pending sustain check.
func (e *Engine) StopSustainingAdInteraction() {
	if !e.IsSustainingAdInteraction() {
		return
	}

	slog.Info("stopped sustaining ad interaction")

	e.host.KillTimer(e.sustainAdInteractionTimerID)
	e.sustainAdInteractionTimerID = 0
}

// IsSustainingAdInteraction reports whether a sustain timer is pending.
func (e *Engine) IsSustainingAdInteraction() bool {
	return e.sustainAdInteractionTimerID != 0
}

// SustainAdInteractionTimerID returns the pending sustain timer id, 0
// when none. Used by hosts that route timers by slot, and by tests.
func (e *Engine) SustainAdInteractionTimerID() uint32 {
	return e.sustainAdInteractionTimerID
}

// sustainAdInteraction confirms the user is still on the last shown
// ad's URL: if so, a sustain record is emitted and the check re-arms;
// otherwise the chain ends.
func (e *Engine) sustainAdInteraction() {
	if !e.isStillViewingAd() {
		return
	}

	e.reporter.Sustain(e.lastShownNotification.UUID)

	e.StartSustainingAdInteraction(SustainAdInteractionAfterSeconds)
}

// isStillViewingAd reports whether the focused URL is the last shown
// ad's landing URL.
func (e *Engine) isStillViewingAd() bool {
	return e.lastShownNotification.URL == e.lastShownTabURL
}
