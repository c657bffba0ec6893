package ads_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/admill/internal/ads"
)

// TestSustainChain tests the full sustain lifecycle: click arms the
// timer, fires emit sustain records while the ad URL stays focused, and
// the chain ends silently once focus moves away.
func TestSustainChain(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, adCategories("sports", testAd("u1")))

	classifyTennisPage(engine)
	engine.OnForeground()
	engine.CheckReadyAdServe(false)
	require.Len(t, host.Notifications, 1)

	shown := engine.LastShownNotification()

	// Focus the ad's landing URL, then report the click.
	engine.TabUpdated(3, shown.URL, true, false)
	engine.OnNotificationResult(shown, ads.NotificationClicked)

	require.True(t, engine.IsSustainingAdInteraction())
	delay, ok := host.TimerDelay(engine.SustainAdInteractionTimerID())
	require.True(t, ok)
	assert.Equal(t, uint64(10), delay)

	// First fire: still viewing, record emitted, timer re-armed.
	before := len(host.EventRecords)
	first := engine.SustainAdInteractionTimerID()
	engine.OnTimer(first)

	records := host.EventRecords[before:]
	require.Len(t, records, 1)
	assert.Contains(t, records[0], `"type":"sustain"`)
	assert.Contains(t, records[0], `"notificationId":"u1"`)

	require.True(t, engine.IsSustainingAdInteraction())
	assert.NotEqual(t, first, engine.SustainAdInteractionTimerID())

	// Focus moves elsewhere: the next fire ends the chain.
	engine.TabUpdated(3, "https://example.com/elsewhere", true, false)

	before = len(host.EventRecords)
	engine.OnTimer(engine.SustainAdInteractionTimerID())

	for _, record := range host.EventRecords[before:] {
		assert.NotContains(t, record, `"type":"sustain"`)
	}
}

// TestSustain_DismissDoesNotArm tests that dismissal marks the ad seen
// without starting a sustain chain.
func TestSustain_DismissDoesNotArm(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	info := ads.NotificationInfo{UUID: "u1", Category: "sports", URL: "https://x.example/"}
	engine.OnNotificationResult(info, ads.NotificationDismissed)

	assert.False(t, engine.IsSustainingAdInteraction())
	assert.Equal(t, uint64(1), engine.Client().AdsUUIDSeen()["u1"])
}

// TestSustain_TimeoutLeavesSeenUntouched tests the timeout subtype.
func TestSustain_TimeoutLeavesSeenUntouched(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	info := ads.NotificationInfo{UUID: "u1", Category: "sports", URL: "https://x.example/"}
	engine.OnNotificationResult(info, ads.NotificationTimeout)

	assert.False(t, engine.IsSustainingAdInteraction())
	assert.NotContains(t, engine.Client().AdsUUIDSeen(), "u1")
}

// TestNotificationResult_Subtypes tests the emitted subtype fields.
func TestNotificationResult_Subtypes(t *testing.T) {
	tests := []struct {
		result ads.NotificationResult
		want   string
	}{
		{ads.NotificationClicked, `"notificationType":"clicked"`},
		{ads.NotificationDismissed, `"notificationType":"dismissed"`},
		{ads.NotificationTimeout, `"notificationType":"timeout"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			host := newHost()
			engine := newInitializedEngine(t, host, nil)
			before := len(host.EventRecords)

			info := ads.NotificationInfo{UUID: "u1", Category: "sports-tennis", URL: "https://x.example/"}
			engine.OnNotificationResult(info, tt.result)

			records := host.EventRecords[before:]
			// First-run restart precedes the notify record.
			require.Len(t, records, 2)
			assert.Contains(t, records[0], `"type":"restart"`)
			assert.Contains(t, records[1], tt.want)
			assert.Contains(t, records[1], `"notificationClassification":["sports","tennis"]`)
		})
	}
}

// TestActivityTimer_OneShot tests that a fire downloads the catalog and
// does not re-arm by itself.
func TestActivityTimer_OneShot(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	downloads := host.CatalogDownloads
	id := engine.CollectActivityTimerID()
	require.NotZero(t, id)

	host.KillTimer(id) // the host consumed the one-shot
	engine.OnTimer(id)

	assert.Equal(t, downloads+1, host.CatalogDownloads)
	assert.Equal(t, id, engine.CollectActivityTimerID())
	assert.Empty(t, host.ActiveTimers())
}

// TestConfirmAdUUID_RearmsActivity tests explicit re-arming.
func TestConfirmAdUUID_RearmsActivity(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	first := engine.CollectActivityTimerID()
	engine.ConfirmAdUUIDIfAdEnabled()

	assert.NotEqual(t, first, engine.CollectActivityTimerID())
	assert.True(t, engine.IsCollectingActivity())
}

// TestConfirmAdUUID_AdsDisabled tests that disabling ads cancels
// activity collection.
func TestConfirmAdUUID_AdsDisabled(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	host.AdsEnabled = false
	engine.ConfirmAdUUIDIfAdEnabled()

	assert.False(t, engine.IsCollectingActivity())
	assert.Empty(t, host.ActiveTimers())
}

// TestTimerAllocationFailure tests recovery when the host cannot arm a
// timer: the slot stays empty and the engine carries on.
func TestTimerAllocationFailure(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	host.FailTimers = true
	engine.StartSustainingAdInteraction(10)

	assert.False(t, engine.IsSustainingAdInteraction())

	engine.ConfirmAdUUIDIfAdEnabled()
	assert.False(t, engine.IsCollectingActivity())
}

// TestOnTimer_UnknownID tests that foreign timer ids are ignored.
func TestOnTimer_UnknownID(t *testing.T) {
	host := newHost()
	engine := newInitializedEngine(t, host, nil)

	downloads := host.CatalogDownloads
	engine.OnTimer(9999)

	assert.Equal(t, downloads, host.CatalogDownloads)
}
