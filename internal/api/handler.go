package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/mw"
	"hotel-console-backend/internal/session"
	"hotel-console-backend/internal/store"
	"hotel-console-backend/internal/syncer"
	"hotel-console-backend/internal/upstream"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Store    store.Store
	Upstream *upstream.Client
	Sessions *session.Manager
	Syncer   *syncer.Service
	Engine   *logfilter.Engine
	Cache    *mw.ResponseCache
	Webpush  *webpush.Options
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	upstream *upstream.Client
	sessions *session.Manager
	syncer   *syncer.Service
	engine   *logfilter.Engine
	cache    *mw.ResponseCache
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:    d.Store,
		upstream: d.Upstream,
		sessions: d.Sessions,
		syncer:   d.Syncer,
		engine:   d.Engine,
		cache:    d.Cache,
		webpush:  d.Webpush,
	}
}
