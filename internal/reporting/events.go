package reporting

// Event record payloads. Every record is wrapped in {"data": {...}} and
// carries "type" and "stamp"; the remaining fields are per-type. Field
// order follows the declared order, though consumers key by name.

type envelope struct {
	Data any `json:"data"`
}

// placeRecord covers restart, foreground, and background.
type placeRecord struct {
	Type  string `json:"type"`
	Stamp string `json:"stamp"`
	Place string `json:"place"`
}

// tabRecord covers focus, blur, and destroy.
type tabRecord struct {
	Type  string `json:"type"`
	Stamp string `json:"stamp"`
	TabID int32  `json:"tabId"`
}

type loadRecord struct {
	Type              string    `json:"type"`
	Stamp             string    `json:"stamp"`
	TabID             int32     `json:"tabId"`
	TabType           string    `json:"tabType"`
	TabURL            string    `json:"tabUrl"`
	TabClassification []string  `json:"tabClassification"`
	PageScore         []float64 `json:"pageScore,omitempty"`
}

type sustainRecord struct {
	Type             string `json:"type"`
	Stamp            string `json:"stamp"`
	NotificationID   string `json:"notificationId"`
	NotificationType string `json:"notificationType"`
}

type notifyRecord struct {
	Type                       string   `json:"type"`
	Stamp                      string   `json:"stamp"`
	NotificationType           string   `json:"notificationType"`
	NotificationClassification []string `json:"notificationClassification"`
	NotificationCatalog        string   `json:"notificationCatalog"`
	NotificationURL            string   `json:"notificationUrl"`
}

type settingsRecord struct {
	Type     string          `json:"type"`
	Stamp    string          `json:"stamp"`
	Settings settingsPayload `json:"settings"`
}

type settingsPayload struct {
	Notifications notificationsPayload `json:"notifications"`
	Place         string               `json:"place"`
	Locale        string               `json:"locale"`
	AdsPerDay     uint64               `json:"adsPerDay"`
	AdsPerHour    uint64               `json:"adsPerHour"`
}

type notificationsPayload struct {
	Available bool `json:"available"`
}

// LoadInfo is the payload for a load event.
type LoadInfo struct {
	TabID          int32
	TabType        string
	TabURL         string
	Classification []string
	PageScore      []float64
}

// NotificationInfo is the payload shared by notify shown/result events.
type NotificationInfo struct {
	Classification []string
	CreativeSetID  string
	URL            string
}

// SettingsInfo is the payload for a settings event.
type SettingsInfo struct {
	Available  bool
	Place      string
	Locale     string
	AdsPerDay  uint64
	AdsPerHour uint64
}
