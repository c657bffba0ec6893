package ads

import (
	"math/rand"

	"github.com/roach88/admill/internal/catalog"
	"github.com/roach88/admill/internal/client"
	"github.com/roach88/admill/internal/reporting"
	"github.com/roach88/admill/internal/usermodel"
)

// ModelFactory builds a fresh page classifier. A new instance is created
// on every user-model (re)load so a failed load never corrupts the
// running one.
type ModelFactory func() usermodel.Model

// Engine is the ad-decisioning engine.
//
// All state is mutated on the engine goroutine only. The engine owns its
// collaborators (client state, bundle, user model, reporter) and keeps a
// non-owning handle to the host.
type Engine struct {
	host Host

	client    *client.Client
	bundle    *catalog.Bundle
	userModel usermodel.Model
	reporter  *reporting.Reporter

	newModel ModelFactory
	rand     *rand.Rand

	isInitialized bool
	isForeground  bool

	lastShownTabURL        string
	lastShownNotification  NotificationInfo
	lastPageClassification string

	pageScoreCache map[string]usermodel.PageScore
	mediaPlaying   map[int32]bool

	collectActivityTimerID      uint32
	sustainAdInteractionTimerID uint32

	nextEasterEgg uint64

	isDebug   bool
	isTesting bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebug shortens the activity-collection interval.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.isDebug = debug
	}
}

// WithTesting enables testing-only behavior such as the easter-egg URL.
func WithTesting(testing bool) Option {
	return func(e *Engine) {
		e.isTesting = testing
	}
}

// WithRand fixes the random source used for ad selection.
// Used by tests to make selection deterministic.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// WithModelFactory overrides how page classifiers are built. The default
// is the keyword reference model; production hosts install their own.
func WithModelFactory(factory ModelFactory) Option {
	return func(e *Engine) {
		e.newModel = factory
	}
}

// New creates an engine bound to a host. The engine is idle until
// Initialize is called.
func New(host Host, opts ...Option) *Engine {
	e := &Engine{
		host:           host,
		client:         client.New(hostPersister{host: host}, host.Now),
		bundle:         catalog.NewBundle(),
		pageScoreCache: make(map[string]usermodel.PageScore),
		mediaPlaying:   make(map[int32]bool),
		newModel: func() usermodel.Model {
			return usermodel.NewKeywordModel()
		},
	}

	e.reporter = reporting.New(host, host.Now)

	for _, opt := range opts {
		opt(e)
	}

	if e.rand == nil {
		e.rand = rand.New(rand.NewSource(host.Now().UnixNano()))
	}

	return e
}

// Client exposes the client state store, for hosts and tests.
func (e *Engine) Client() *client.Client {
	return e.client
}

// Bundle exposes the catalog adapter, for hosts and tests.
func (e *Engine) Bundle() *catalog.Bundle {
	return e.bundle
}

// LastShownNotification returns the most recently surfaced notification.
func (e *Engine) LastShownNotification() NotificationInfo {
	return e.lastShownNotification
}

// LastPageClassification returns the winner of the most recent single
// page classification.
func (e *Engine) LastPageClassification() string {
	return e.lastPageClassification
}
