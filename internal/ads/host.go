package ads

import (
	"time"

	"github.com/roach88/admill/internal/catalog"
)

// Result is the outcome of an asynchronous host operation.
type Result int

const (
	// Success indicates the host operation completed.
	Success Result = iota
	// Failed indicates the host operation did not complete.
	Failed
)

// URLComponents is the host's decomposition of a URL.
type URLComponents struct {
	URL      string
	Scheme   string
	User     string
	Hostname string
	Port     string
	Query    string
	Fragment string
}

// NotificationInfo is the payload shipped to the host when an ad is
// surfaced, and echoed back on result callbacks.
type NotificationInfo struct {
	UUID          string
	CreativeSetID string
	Advertiser    string
	Category      string
	Text          string
	URL           string
}

// NotificationResult is the user's reaction to a surfaced notification.
type NotificationResult int

const (
	// NotificationClicked means the user activated the notification.
	NotificationClicked NotificationResult = iota
	// NotificationDismissed means the user dismissed it.
	NotificationDismissed
	// NotificationTimeout means it expired without interaction.
	NotificationTimeout
)

// Host is everything the engine consumes from its embedder. Callbacks
// passed to asynchronous calls are invoked exactly once, on the engine
// goroutine. SetTimer returns an opaque non-zero id, or 0 on failure;
// fired timers arrive through Engine.OnTimer.
type Host interface {
	// Lifecycle facts.
	IsAdsEnabled() bool
	IsNotificationsAvailable() bool

	// Locale facts.
	GetLocales() []string
	GetAdsLocale() string
	GetCountryCode(locale string) string

	// Named-blob persistence for client state.
	Load(name string, callback func(Result, string))
	Save(name, value string, callback func(Result))

	// User model.
	LoadUserModelForLocale(locale string, callback func(Result, string))

	// Catalog.
	DownloadCatalog()
	GetAds(region, category string, callback func(Result, string, string, []catalog.AdInfo))
	LoadSampleBundle(callback func(Result, string))
	LoadJsonSchema(name string) string

	// Notifications.
	ShowNotification(info NotificationInfo)

	// URL parsing.
	GetURLComponents(url string, components *URLComponents) bool

	// Networking facts.
	GetSSID() string

	// Clock and scheduling.
	Now() time.Time
	SetTimer(delaySeconds uint64) uint32
	KillTimer(id uint32)
	SetIdleThreshold(seconds int)

	// Serving configuration.
	GetAdsPerHour() uint64
	GetAdsPerDay() uint64

	// Event sink.
	EventLog(json string)
}

// hostPersister adapts the host's named-blob persistence to the client
// state store's Persister contract.
type hostPersister struct {
	host Host
}

func (p hostPersister) Load(name string, callback func(bool, string)) {
	p.host.Load(name, func(result Result, value string) {
		callback(result == Success, value)
	})
}

func (p hostPersister) Save(name, value string, callback func(bool)) {
	p.host.Save(name, value, func(result Result) {
		callback(result == Success)
	})
}
