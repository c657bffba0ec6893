// Package ads is the embedded ad-decisioning engine.
//
// The engine runs inside a host application (a browser) and owns the
// decisioning policy only: it classifies visited pages into categories,
// keeps a rolling history of category scores, gates and picks sponsored
// notifications, and emits a canonical event stream. The host owns all
// I/O — persistence, catalog fetches, timers, notification display, and
// URL parsing — behind the Host interface.
//
// Concurrency model: single-threaded cooperative. The host invokes one
// engine entry point at a time on one goroutine; asynchronous host calls
// complete by invoking their callback on that same goroutine, exactly
// once. The engine therefore holds no locks.
package ads
