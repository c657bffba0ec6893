package client

import "github.com/roach88/admill/internal/usermodel"

// History bounds. Ads-shown entries also age out after a day, which is
// longer than any rolling window the serving gate inspects.
const (
	MaximumPageScoreHistoryEntries = 5
	MaximumAdsShownHistoryEntries  = 99
	adsShownRetentionSeconds       = 86400
)

// State is the persisted client state. It round-trips as a single JSON
// blob through the host's named-blob persistence.
type State struct {
	AdUUID               string                `json:"adUUID"`
	AdsShownHistory      []uint64              `json:"adsShownHistory"`
	AdsUUIDSeen          map[string]uint64     `json:"adsUUIDSeen"`
	Available            bool                  `json:"available"`
	CurrentSSID          string                `json:"currentSSID"`
	LastSearchTime       uint64                `json:"lastSearchTime"`
	LastShopTime         uint64                `json:"lastShopTime"`
	LastUserActivity     uint64                `json:"lastUserActivity"`
	LastUserIdleStopTime uint64                `json:"lastUserIdleStopTime"`
	Locale               string                `json:"locale"`
	Locales              []string              `json:"locales"`
	PageScoreHistory     []usermodel.PageScore `json:"pageScoreHistory"`
	Places               map[string]string     `json:"places"`
	SearchActivity       bool                  `json:"searchActivity"`
	SearchURL            string                `json:"searchUrl"`
	ShopActivity         bool                  `json:"shopActivity"`
	ShopURL              string                `json:"shopUrl"`
}

// newState returns a fresh state with containers allocated so lookups
// and JSON round-trips behave uniformly.
func newState() State {
	return State{
		AdsUUIDSeen: make(map[string]uint64),
		Places:      make(map[string]string),
	}
}
