package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records every emitted event record.
type captureSink struct {
	records []string
}

func (s *captureSink) EventLog(json string) {
	s.records = append(s.records, json)
}

func newTestReporter() (*Reporter, *captureSink) {
	sink := &captureSink{}
	now := time.Date(2019, 3, 12, 10, 30, 0, 0, time.UTC)
	return New(sink, func() time.Time { return now }), sink
}

// TestReporter_PlaceEvents tests foreground/background payloads.
func TestReporter_PlaceEvents(t *testing.T) {
	r, sink := newTestReporter()

	r.Foreground("office")
	r.Background("office")

	require.Len(t, sink.records, 2)
	assert.JSONEq(t,
		`{"data":{"type":"foreground","stamp":"2019-03-12T10:30:00Z","place":"office"}}`,
		sink.records[0])
	assert.JSONEq(t,
		`{"data":{"type":"background","stamp":"2019-03-12T10:30:00Z","place":"office"}}`,
		sink.records[1])
}

// TestReporter_TabEvents tests focus/blur/destroy payloads.
func TestReporter_TabEvents(t *testing.T) {
	r, sink := newTestReporter()

	r.Focus(7)
	r.Blur(7)
	r.Destroy(7)

	require.Len(t, sink.records, 3)
	assert.JSONEq(t,
		`{"data":{"type":"focus","stamp":"2019-03-12T10:30:00Z","tabId":7}}`,
		sink.records[0])
	assert.JSONEq(t,
		`{"data":{"type":"blur","stamp":"2019-03-12T10:30:00Z","tabId":7}}`,
		sink.records[1])
	assert.JSONEq(t,
		`{"data":{"type":"destroy","stamp":"2019-03-12T10:30:00Z","tabId":7}}`,
		sink.records[2])
}

// TestReporter_LoadEvent tests the load payload with and without a score.
func TestReporter_LoadEvent(t *testing.T) {
	r, sink := newTestReporter()

	r.Load(LoadInfo{
		TabID:          3,
		TabType:        "search",
		TabURL:         "https://www.google.com/search?q=tennis",
		Classification: []string{"sports", "tennis"},
		PageScore:      []float64{0.25, 0.75},
	})
	r.Load(LoadInfo{
		TabID:   4,
		TabType: "click",
		TabURL:  "https://example.com/",
	})

	require.Len(t, sink.records, 2)
	assert.JSONEq(t,
		`{"data":{"type":"load","stamp":"2019-03-12T10:30:00Z","tabId":3,"tabType":"search","tabUrl":"https://www.google.com/search?q=tennis","tabClassification":["sports","tennis"],"pageScore":[0.25,0.75]}}`,
		sink.records[0])

	// No cached score: pageScore absent, classification empty not null.
	assert.JSONEq(t,
		`{"data":{"type":"load","stamp":"2019-03-12T10:30:00Z","tabId":4,"tabType":"click","tabUrl":"https://example.com/","tabClassification":[]}}`,
		sink.records[1])
	assert.NotContains(t, sink.records[1], "pageScore")
}

// TestReporter_SustainEvent tests the sustain payload.
func TestReporter_SustainEvent(t *testing.T) {
	r, sink := newTestReporter()

	r.Sustain("ad-uuid-1")

	require.Len(t, sink.records, 1)
	assert.JSONEq(t,
		`{"data":{"type":"sustain","stamp":"2019-03-12T10:30:00Z","notificationId":"ad-uuid-1","notificationType":"viewed"}}`,
		sink.records[0])
}

// TestReporter_RestartPrefix tests that the first notify record is
// preceded by exactly one restart record.
func TestReporter_RestartPrefix(t *testing.T) {
	r, sink := newTestReporter()
	require.True(t, r.IsFirstRun())

	info := NotificationInfo{
		Classification: []string{"sports"},
		CreativeSetID:  "cs-1",
		URL:            "https://acme.example/racquets",
	}

	r.NotificationShown("unknown", info)
	r.NotificationResult("unknown", "clicked", info)

	require.Len(t, sink.records, 3)
	assert.Contains(t, sink.records[0], `"type":"restart"`)
	assert.Contains(t, sink.records[1], `"notificationType":"generated"`)
	assert.Contains(t, sink.records[2], `"notificationType":"clicked"`)
	assert.False(t, r.IsFirstRun())
}

// TestReporter_NoRestartForOtherEvents tests that non-notify events do
// not consume the first-run flag.
func TestReporter_NoRestartForOtherEvents(t *testing.T) {
	r, sink := newTestReporter()

	r.Foreground("unknown")
	r.Focus(1)
	r.Sustain("u")
	r.Settings(SettingsInfo{})

	assert.True(t, r.IsFirstRun())
	for _, record := range sink.records {
		assert.NotContains(t, record, `"type":"restart"`)
	}
}

// TestReporter_SampleCatalogFallback tests the empty creative-set fallback.
func TestReporter_SampleCatalogFallback(t *testing.T) {
	r, sink := newTestReporter()
	r.isFirstRun = false

	r.NotificationShown("unknown", NotificationInfo{URL: "https://x.example/"})

	require.Len(t, sink.records, 1)
	assert.Contains(t, sink.records[0], `"notificationCatalog":"sample-catalog"`)
}

// TestReporter_SettingsEvent tests the nested settings payload.
func TestReporter_SettingsEvent(t *testing.T) {
	r, sink := newTestReporter()

	r.Settings(SettingsInfo{
		Available:  true,
		Place:      "unknown",
		Locale:     "en",
		AdsPerDay:  20,
		AdsPerHour: 2,
	})

	require.Len(t, sink.records, 1)
	assert.JSONEq(t,
		`{"data":{"type":"settings","stamp":"2019-03-12T10:30:00Z","settings":{"notifications":{"available":true},"place":"unknown","locale":"en","adsPerDay":20,"adsPerHour":2}}}`,
		sink.records[0])
}

// TestReporter_Reset tests that Reset restores the restart prefix.
func TestReporter_Reset(t *testing.T) {
	r, sink := newTestReporter()

	r.NotificationShown("unknown", NotificationInfo{})
	r.Reset()
	r.NotificationShown("unknown", NotificationInfo{})

	restarts := 0
	for _, record := range sink.records {
		if strings.Contains(record, `"type":"restart"`) {
			restarts++
		}
	}
	assert.Equal(t, 2, restarts)
}

// TestSplitCategory tests hyphen splitting with the empty sentinel.
func TestSplitCategory(t *testing.T) {
	assert.Equal(t, []string{"technology", "computing", "hardware"},
		SplitCategory("technology-computing-hardware"))
	assert.Equal(t, []string{"sports"}, SplitCategory("sports"))
	assert.Equal(t, []string{}, SplitCategory(""))
}

// TestReporter_EventStreamGolden pins the serialized stream byte-for-byte.
func TestReporter_EventStreamGolden(t *testing.T) {
	r, sink := newTestReporter()

	r.Foreground("unknown")
	r.Load(LoadInfo{
		TabID:          1,
		TabType:        "click",
		TabURL:         "https://example.com/page",
		Classification: []string{"sports", "tennis"},
		PageScore:      []float64{0.25, 0.75},
	})
	r.Focus(1)
	r.NotificationShown("unknown", NotificationInfo{
		Classification: []string{"sports", "tennis"},
		CreativeSetID:  "cs-1",
		URL:            "https://acme.example/racquets",
	})
	r.Sustain("ad-1")
	r.Background("unknown")

	g := goldie.New(t)
	g.Assert(t, "event_stream", []byte(strings.Join(sink.records, "\n")))
}
