//go:build linux

// Package mpris exposes the playback service on the session bus so that
// desktop media keys and widgets can control it.
package mpris

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/playback"
)

const busName = "octaplay"

// Adapter connects a playback.Service to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
	log    *zap.Logger
}

// New starts serving svc on the session bus. It fails when no session
// bus is reachable.
func New(svc playback.Service, log *zap.Logger) (*Adapter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := dbus.SessionBus(); err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}

	a := &Adapter{
		server: server.NewServer(busName, &rootAdapter{}, &playerAdapter{svc: svc}),
		log:    log.Named("mpris"),
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			a.log.Warn("mpris server stopped", zap.Error(err))
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}
