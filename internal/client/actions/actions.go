// Package actions holds one handler per user-facing vault action. Every
// handler follows the same shape: validate the form input, dispatch exactly
// one request, then map the outcome to a status-region update, an overlay, a
// navigation, or a flow-state change. All three error kinds (validation,
// domain, network) are terminal here; nothing is retried and nothing bubbles
// further up.
package actions

import (
	"time"

	"cosmiclocker/internal/client/flow"
	"cosmiclocker/internal/client/overlay"
	"cosmiclocker/internal/client/vault"
	"cosmiclocker/internal/logging"
)

// StatusClass mirrors the styling classes of the original markup. Forms whose
// markup never styled their status region use ClassNone.
type StatusClass string

const (
	ClassNone    StatusClass = ""
	ClassError   StatusClass = "error"
	ClassSuccess StatusClass = "success"
)

// StatusSink is the designated output region of one form. Handlers receive
// their sinks at construction instead of looking surfaces up at call time.
type StatusSink interface {
	Set(message string, class StatusClass)
	Clear()
}

// Navigator moves the user between surfaces. GotoAfter schedules a move that
// must tolerate the target surface having changed in the meantime.
type Navigator interface {
	Goto(target string)
	GotoAfter(delay time.Duration, target string)
}

// FileSaver persists a retrieved plaintext file on the user's side.
type FileSaver interface {
	Save(name string, data []byte) error
}

// Navigation targets used by the handlers.
const (
	TargetHome      = "/"
	TargetLoginPage = "/login-page"
	TargetResetPage = "/reset-password"
)

// HostAvailability says whether the recycle view can host a modal. The
// original decided this by probing for a list container in the document; here
// it is a single named state fixed at construction.
type HostAvailability int

const (
	// HostModal renders recycle-bin results as a modal.
	HostModal HostAvailability = iota
	// HostStatusOnly routes a successful recycle refresh to the status
	// region as a restore confirmation instead of opening a modal.
	HostStatusOnly
)

// Lifetimes and delays of the transient surfaces. Declared as variables so
// tests can shrink them; production code never reassigns them.
var (
	successPopupTTL    = 3 * time.Second
	securityPopupTTL   = 30 * time.Second
	postDeleteNavDelay = 2 * time.Second
)

// Locked files carry this suffix in the vault; it is stripped on retrieval.
const lockedSuffix = ".enc"

// Sinks groups the per-form status regions.
type Sinks struct {
	Login   StatusSink
	Signup  StatusSink
	Forgot  StatusSink
	Reset   StatusSink
	Lock    StatusSink
	List    StatusSink
	Recycle StatusSink
}

// Config wires a handler set together.
type Config struct {
	Vault       vault.Client
	Overlays    *overlay.Manager
	Flow        *flow.Machine
	Nav         Navigator
	Saver       FileSaver
	Sinks       Sinks
	RecycleHost HostAvailability
	Log         logging.Logger
}

// Handlers is the full set of action handlers sharing one dependency wiring.
type Handlers struct {
	vault       vault.Client
	overlays    *overlay.Manager
	flow        *flow.Machine
	nav         Navigator
	saver       FileSaver
	sinks       Sinks
	recycleHost HostAvailability
	log         logging.Logger
}

func New(cfg Config) *Handlers {
	log := cfg.Log
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{
		vault:       cfg.Vault,
		overlays:    cfg.Overlays,
		flow:        cfg.Flow,
		nav:         cfg.Nav,
		saver:       cfg.Saver,
		sinks:       cfg.Sinks,
		recycleHost: cfg.RecycleHost,
		log:         log,
	}
}
