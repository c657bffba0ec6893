// Package reporting emits the canonical event stream for analytics.
//
// Records are typed structs serialized with encoding/json into the
// {"data": {...}} envelope and handed to the host's event sink in call
// order; the reporter never reorders. The first notify record of a run
// is preceded by a restart record.
package reporting

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// sampleCatalog names the catalog for ads served off the sample bundle.
const sampleCatalog = "sample-catalog"

// Sink receives serialized event records.
type Sink interface {
	EventLog(json string)
}

// Reporter serializes and emits event records.
type Reporter struct {
	sink       Sink
	now        func() time.Time
	isFirstRun bool
}

// New creates a reporter in the first-run state.
func New(sink Sink, now func() time.Time) *Reporter {
	return &Reporter{
		sink:       sink,
		now:        now,
		isFirstRun: true,
	}
}

// Reset returns the reporter to the first-run state.
func (r *Reporter) Reset() {
	r.isFirstRun = true
}

// IsFirstRun reports whether no notify record has been emitted yet.
func (r *Reporter) IsFirstRun() bool {
	return r.isFirstRun
}

// Foreground emits a foreground record.
func (r *Reporter) Foreground(place string) {
	r.emit(placeRecord{Type: "foreground", Stamp: r.stamp(), Place: place})
}

// Background emits a background record.
func (r *Reporter) Background(place string) {
	r.emit(placeRecord{Type: "background", Stamp: r.stamp(), Place: place})
}

// Focus emits a focus record for a tab.
func (r *Reporter) Focus(tabID int32) {
	r.emit(tabRecord{Type: "focus", Stamp: r.stamp(), TabID: tabID})
}

// Blur emits a blur record for a tab.
func (r *Reporter) Blur(tabID int32) {
	r.emit(tabRecord{Type: "blur", Stamp: r.stamp(), TabID: tabID})
}

// Destroy emits a destroy record for a closed tab.
func (r *Reporter) Destroy(tabID int32) {
	r.emit(tabRecord{Type: "destroy", Stamp: r.stamp(), TabID: tabID})
}

// Load emits a load record for a page visit.
func (r *Reporter) Load(info LoadInfo) {
	r.emit(loadRecord{
		Type:              "load",
		Stamp:             r.stamp(),
		TabID:             info.TabID,
		TabType:           info.TabType,
		TabURL:            info.TabURL,
		TabClassification: emptyNotNil(info.Classification),
		PageScore:         info.PageScore,
	})
}

// Sustain emits a sustain record confirming continued viewing.
func (r *Reporter) Sustain(notificationUUID string) {
	r.emit(sustainRecord{
		Type:             "sustain",
		Stamp:            r.stamp(),
		NotificationID:   notificationUUID,
		NotificationType: "viewed",
	})
}

// NotificationShown emits a notify record of type "generated". On the
// first run it is preceded by a restart record.
func (r *Reporter) NotificationShown(place string, info NotificationInfo) {
	r.maybeRestart(place)
	r.emitNotify("generated", info)
}

// NotificationResult emits a notify record carrying the user's reaction
// ("clicked", "dismissed", or "timeout"). On the first run it is
// preceded by a restart record.
func (r *Reporter) NotificationResult(place, result string, info NotificationInfo) {
	r.maybeRestart(place)
	r.emitNotify(result, info)
}

// Settings emits a settings record.
func (r *Reporter) Settings(info SettingsInfo) {
	r.emit(settingsRecord{
		Type:  "settings",
		Stamp: r.stamp(),
		Settings: settingsPayload{
			Notifications: notificationsPayload{Available: info.Available},
			Place:         info.Place,
			Locale:        info.Locale,
			AdsPerDay:     info.AdsPerDay,
			AdsPerHour:    info.AdsPerHour,
		},
	})
}

// SplitCategory splits a hyphen-delimited category into its segments.
// An empty category yields an empty, non-nil slice so records serialize
// as [] rather than null.
func SplitCategory(category string) []string {
	if category == "" {
		return []string{}
	}
	return strings.Split(category, "-")
}

func (r *Reporter) maybeRestart(place string) {
	if !r.isFirstRun {
		return
	}
	r.isFirstRun = false

	r.emit(placeRecord{Type: "restart", Stamp: r.stamp(), Place: place})
}

func (r *Reporter) emitNotify(notificationType string, info NotificationInfo) {
	catalog := info.CreativeSetID
	if catalog == "" {
		catalog = sampleCatalog
	}

	r.emit(notifyRecord{
		Type:                       "notify",
		Stamp:                      r.stamp(),
		NotificationType:           notificationType,
		NotificationClassification: emptyNotNil(info.Classification),
		NotificationCatalog:        catalog,
		NotificationURL:            info.URL,
	})
}

func (r *Reporter) emit(record any) {
	raw, err := json.Marshal(envelope{Data: record})
	if err != nil {
		slog.Error("failed to serialize event record", "error", err)
		return
	}

	r.sink.EventLog(string(raw))
}

func (r *Reporter) stamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

func emptyNotNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
