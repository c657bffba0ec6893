// Package client holds the engine's mutable client state: locale,
// availability, network facts, ad history, and the page-score ring.
//
// Every mutation schedules a save through the Persister; the persister
// is free to batch. The client runs on the engine goroutine and does no
// locking.
package client

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/admill/internal/catalog"
	"github.com/roach88/admill/internal/usermodel"
)

// stateName is the blob name used with the persister.
const stateName = "client_state"

// unknownPlace is reported when no place is recorded for the current SSID.
const unknownPlace = "unknown"

// Persister stores named state blobs on behalf of the engine. Both calls
// complete asynchronously; the callback runs on the engine goroutine.
type Persister interface {
	Load(name string, callback func(ok bool, value string))
	Save(name, value string, callback func(ok bool))
}

// Client owns the persisted client state.
type Client struct {
	persister Persister
	now       func() time.Time
	state     State
}

// New creates a client with a fresh in-memory state. LoadState replaces
// it with the persisted one.
func New(persister Persister, now func() time.Time) *Client {
	return &Client{
		persister: persister,
		now:       now,
		state:     newState(),
	}
}

// LoadState loads the persisted blob. A missing or unparsable blob is
// replaced by a fresh state, which is immediately saved; done is invoked
// either way, so initialization can proceed.
func (c *Client) LoadState(done func()) {
	c.persister.Load(stateName, func(ok bool, value string) {
		if !ok {
			slog.Info("no client state found, creating fresh state")
			c.state = newState()
			c.SaveState()
			done()
			return
		}

		var state State
		if err := json.Unmarshal([]byte(value), &state); err != nil {
			slog.Error("failed to parse client state", "error", err)
			c.state = newState()
			c.SaveState()
			done()
			return
		}

		if state.AdsUUIDSeen == nil {
			state.AdsUUIDSeen = make(map[string]uint64)
		}
		if state.Places == nil {
			state.Places = make(map[string]string)
		}

		c.state = state
		done()
	})
}

// SaveState persists the current state.
func (c *Client) SaveState() {
	value, err := json.Marshal(c.state)
	if err != nil {
		slog.Error("failed to serialize client state", "error", err)
		return
	}

	c.persister.Save(stateName, string(value), func(ok bool) {
		if !ok {
			slog.Error("failed to save client state")
		}
	})
}

// RemoveAllHistory resets the whole client state and persists the reset.
func (c *Client) RemoveAllHistory() {
	c.state = newState()
	c.SaveState()
}

// SetLocales replaces the list of locales supported by the host.
func (c *Client) SetLocales(locales []string) {
	c.state.Locales = locales
	c.SaveState()
}

// Locales returns the host-supported locales.
func (c *Client) Locales() []string {
	return c.state.Locales
}

// SetLocale records the active locale.
func (c *Client) SetLocale(locale string) {
	c.state.Locale = locale
	c.SaveState()
}

// Locale returns the active locale.
func (c *Client) Locale() string {
	return c.state.Locale
}

// AppendPageScoreToHistory prepends a page score, dropping the oldest
// entry past the bound.
func (c *Client) AppendPageScoreToHistory(score usermodel.PageScore) {
	history := make([]usermodel.PageScore, 0, len(c.state.PageScoreHistory)+1)
	history = append(history, score)
	history = append(history, c.state.PageScoreHistory...)
	if len(history) > MaximumPageScoreHistoryEntries {
		history = history[:MaximumPageScoreHistoryEntries]
	}

	c.state.PageScoreHistory = history
	c.SaveState()
}

// PageScoreHistory returns the history, newest first.
func (c *Client) PageScoreHistory() []usermodel.PageScore {
	return c.state.PageScoreHistory
}

// AppendCurrentTimeToAdsShownHistory records that an ad was shown now.
// Entries older than the retention window are dropped, newest kept.
func (c *Client) AppendCurrentTimeToAdsShownHistory() {
	now := uint64(c.now().Unix())

	history := make([]uint64, 0, len(c.state.AdsShownHistory)+1)
	history = append(history, now)
	for _, shown := range c.state.AdsShownHistory {
		if now-shown < adsShownRetentionSeconds {
			history = append(history, shown)
		}
	}
	if len(history) > MaximumAdsShownHistoryEntries {
		history = history[:MaximumAdsShownHistoryEntries]
	}

	c.state.AdsShownHistory = history
	c.SaveState()
}

// AdsShownHistory returns the wall-clock seconds of recent ad shows,
// newest first.
func (c *Client) AdsShownHistory() []uint64 {
	return c.state.AdsShownHistory
}

// UpdateAdsUUIDSeen marks an ad uuid as seen.
func (c *Client) UpdateAdsUUIDSeen(uuid string, value uint64) {
	c.state.AdsUUIDSeen[uuid] = value
	c.SaveState()
}

// ResetAdsUUIDSeen clears the seen marks for exactly the given ads.
func (c *Client) ResetAdsUUIDSeen(ads []catalog.AdInfo) {
	for _, ad := range ads {
		delete(c.state.AdsUUIDSeen, ad.UUID)
	}
	c.SaveState()
}

// AdsUUIDSeen returns the seen map.
func (c *Client) AdsUUIDSeen() map[string]uint64 {
	return c.state.AdsUUIDSeen
}

// UpdateAdUUID assigns the client's ad uuid once; later calls keep it.
func (c *Client) UpdateAdUUID() {
	if c.state.AdUUID != "" {
		return
	}

	c.state.AdUUID = uuid.NewString()
	c.SaveState()
}

// AdUUID returns the client's ad uuid, "" before the first confirm.
func (c *Client) AdUUID() string {
	return c.state.AdUUID
}

// SetAvailable records whether native notifications are available.
func (c *Client) SetAvailable(available bool) {
	c.state.Available = available
	c.SaveState()
}

// Available returns the last recorded notification availability.
func (c *Client) Available() bool {
	return c.state.Available
}

// SetCurrentSSID records the network the client is on.
func (c *Client) SetCurrentSSID(ssid string) {
	c.state.CurrentSSID = ssid
	c.SaveState()
}

// CurrentPlace resolves the place recorded for the current SSID, or
// "unknown" when none is recorded.
func (c *Client) CurrentPlace() string {
	if place, ok := c.state.Places[c.state.CurrentSSID]; ok {
		return place
	}
	return unknownPlace
}

// SetPlace records a place for an SSID.
func (c *Client) SetPlace(ssid, place string) {
	c.state.Places[ssid] = place
	c.SaveState()
}

// FlagShoppingState marks shopping activity on a URL.
func (c *Client) FlagShoppingState(url string, _ float64) {
	c.state.ShopActivity = true
	c.state.ShopURL = url
	c.state.LastShopTime = uint64(c.now().Unix())
	c.SaveState()
}

// UnflagShoppingState clears shopping activity.
func (c *Client) UnflagShoppingState() {
	c.state.ShopActivity = false
	c.SaveState()
}

// FlagSearchState marks search activity on a URL.
func (c *Client) FlagSearchState(url string, _ float64) {
	c.state.SearchActivity = true
	c.state.SearchURL = url
	c.state.LastSearchTime = uint64(c.now().Unix())
	c.SaveState()
}

// UnflagSearchState clears search activity unless the URL is the one
// that flagged it.
func (c *Client) UnflagSearchState(url string) {
	if c.state.SearchURL == url {
		return
	}

	c.state.SearchActivity = false
	c.SaveState()
}

// SearchState reports whether the last focused activity was a search.
func (c *Client) SearchState() bool {
	return c.state.SearchActivity
}

// UpdateLastUserActivity records user activity now.
func (c *Client) UpdateLastUserActivity() {
	c.state.LastUserActivity = uint64(c.now().Unix())
	c.SaveState()
}

// UpdateLastUserIdleStopTime records the end of an idle period.
func (c *Client) UpdateLastUserIdleStopTime() {
	c.state.LastUserIdleStopTime = uint64(c.now().Unix())
	c.SaveState()
}

// Snapshot returns a copy of the current state, for inspection.
func (c *Client) Snapshot() State {
	return c.state
}
