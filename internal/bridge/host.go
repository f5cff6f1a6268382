// Package bridge is the automation endpoint: it accepts line-delimited JSON
// commands over the registered transports, marshals each one onto the host's
// main loop and answers with exactly one result or error line. Handlers see
// the whole host through the Host facade and extend the command surface
// through the Registry.
package bridge

import (
	"time"

	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/autowire"
	"github.com/scenewire/scenewire/internal/core/events/bus"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/mainloop"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Version is reported by Status and printed at startup.
const Version = "0.3.0"

// Host bundles everything a command handler may touch. Handlers run on the
// main loop goroutine, so none of this needs locking beyond what the parts
// themselves do.
type Host struct {
	Scene    *scene.Scene
	Registry *fields.Registry
	Library  *assets.Library
	Index    *assets.Index
	Wirer    *autowire.Wirer
	Bus      *bus.Bus
	Loop     *mainloop.Loop
	Commands *Registry
	Log      log.Log

	StartedAt time.Time

	// SessionCount is wired by the server so Status can report it. Nil when
	// no server runs, e.g. in handler tests.
	SessionCount func() int
}

func (h *Host) Uptime() time.Duration {
	if h.StartedAt.IsZero() {
		return 0
	}
	return time.Since(h.StartedAt)
}

func (h *Host) sessions() int {
	if h.SessionCount == nil {
		return 0
	}
	return h.SessionCount()
}

func (h *Host) logger() log.Log {
	if h.Log == nil {
		return log.Nop()
	}
	return h.Log
}
