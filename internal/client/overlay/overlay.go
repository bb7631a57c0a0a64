// Package overlay manages the transient UI surfaces of the client: success
// popups, the security-question popup, and the file-list / recycle-bin
// modals. Overlays are created fresh on every triggering outcome, attached to
// a Surface, and removed exactly once, either by explicit dismissal or by an
// auto-dismiss deadline, whichever fires first.
package overlay

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cosmiclocker/internal/logging"
)

// Kind identifies the overlay variant.
type Kind string

const (
	KindSuccessPopup  Kind = "success-popup"
	KindSecurityPopup Kind = "security-popup"
	KindFileListModal Kind = "file-list-modal"
	KindRecycleModal  Kind = "recycle-modal"
)

// CloseReason says which of the two dismiss paths won.
type CloseReason int

const (
	ClosedByUser CloseReason = iota
	ClosedByTimeout
)

// Titles and empty-collection messages rendered inside the modals.
const (
	fileListTitle   = "Your Files"
	recycleBinTitle = "Recycle Bin"

	// EmptyFileListMessage replaces the row list when the vault is empty.
	EmptyFileListMessage = "No files found."
	// EmptyRecycleBinMessage replaces the row list when the bin is empty.
	EmptyRecycleBinMessage = "No files in recycle bin."
)

// RowAction is one control on a modal row, bound to that row's file name at
// creation time.
type RowAction struct {
	Label  string
	Invoke func()
}

// Row is one file entry inside a modal.
type Row struct {
	Name    string
	Actions []RowAction
}

// Overlay is a single transient surface instance. Each creation establishes a
// fresh instance; once removed it never reappears and further dismissals are
// no-ops.
type Overlay struct {
	ID        uuid.UUID
	Kind      Kind
	Title     string
	Body      string
	Rows      []Row
	CreatedAt time.Time
	Deadline  time.Time // zero when the overlay has no auto-dismiss

	timer   *time.Timer
	onClose func(CloseReason)
	submit  func(answer string)
}

// Invoke runs the row action with the given label, if present.
func (o *Overlay) Invoke(row int, label string) bool {
	if row < 0 || row >= len(o.Rows) {
		return false
	}
	for _, a := range o.Rows[row].Actions {
		if a.Label == label {
			a.Invoke()
			return true
		}
	}
	return false
}

// Surface is the document the overlays attach to.
type Surface interface {
	Attach(o *Overlay)
	Detach(o *Overlay)
}

// Options controls popup lifetime and teardown notification.
type Options struct {
	// AutoDismiss removes the overlay after this duration; zero disables it.
	AutoDismiss time.Duration
	// OnClose, if set, runs after the overlay has been removed.
	OnClose func(CloseReason)
}

// FileActions are the capabilities wired into each file-list modal row.
type FileActions struct {
	Retrieve func(fileName string)
	Delete   func(fileName string)
}

// RecycleActions are the capabilities wired into each recycle-bin modal row.
type RecycleActions struct {
	Restore func(fileName string)
}

// Manager owns overlay lifecycle. All mutation happens under one lock, so the
// explicit-dismiss and timer paths cannot both remove the same overlay.
type Manager struct {
	mu      sync.Mutex
	surface Surface
	active  map[uuid.UUID]*Overlay
	now     func() time.Time
	log     logging.Logger
}

func NewManager(surface Surface, log logging.Logger) *Manager {
	return &Manager{
		surface: surface,
		active:  make(map[uuid.UUID]*Overlay),
		now:     time.Now,
		log:     log,
	}
}

// ShowPopup creates and attaches a popup of the given kind.
func (m *Manager) ShowPopup(kind Kind, body string, opts Options) *Overlay {
	o := &Overlay{Kind: kind, Body: body}
	m.show(o, opts)
	return o
}

// ShowSecurityQuestion attaches the security-question popup. The submit
// callback receives the user's answer; an empty answer only dismisses the
// popup, enforcing the popup's own required-field rule.
func (m *Manager) ShowSecurityQuestion(question string, submit func(answer string), opts Options) *Overlay {
	o := &Overlay{Kind: KindSecurityPopup, Body: question, submit: submit}
	m.show(o, opts)
	return o
}

// ShowFileList attaches the titled vault listing. An empty collection renders
// the literal empty message instead of rows.
func (m *Manager) ShowFileList(files []string, acts FileActions) *Overlay {
	o := &Overlay{Kind: KindFileListModal, Title: fileListTitle}
	if len(files) == 0 {
		o.Body = EmptyFileListMessage
	}
	for _, f := range files {
		name := f
		o.Rows = append(o.Rows, Row{Name: name, Actions: []RowAction{
			{Label: "Retrieve", Invoke: func() { acts.Retrieve(name) }},
			{Label: "Delete", Invoke: func() { acts.Delete(name) }},
		}})
	}
	m.show(o, Options{})
	return o
}

// ShowRecycleBin attaches the titled recycle-bin listing.
func (m *Manager) ShowRecycleBin(files []string, acts RecycleActions) *Overlay {
	o := &Overlay{Kind: KindRecycleModal, Title: recycleBinTitle}
	if len(files) == 0 {
		o.Body = EmptyRecycleBinMessage
	}
	for _, f := range files {
		name := f
		o.Rows = append(o.Rows, Row{Name: name, Actions: []RowAction{
			{Label: "Restore", Invoke: func() { acts.Restore(name) }},
		}})
	}
	m.show(o, Options{})
	return o
}

func (m *Manager) show(o *Overlay, opts Options) {
	m.mu.Lock()
	o.ID = uuid.New()
	o.CreatedAt = m.now()
	o.onClose = opts.OnClose
	if opts.AutoDismiss > 0 {
		o.Deadline = o.CreatedAt.Add(opts.AutoDismiss)
		o.timer = time.AfterFunc(opts.AutoDismiss, func() {
			m.remove(o, ClosedByTimeout)
		})
	}
	m.active[o.ID] = o
	m.surface.Attach(o)
	m.mu.Unlock()
}

// Dismiss removes the overlay on the explicit-user path. It reports whether
// this call performed the removal; a false return means the overlay was
// already gone and nothing happened.
func (m *Manager) Dismiss(o *Overlay) bool {
	return m.remove(o, ClosedByUser)
}

// SubmitAnswer feeds the user's answer to a security-question popup and
// dismisses it. An empty answer dismisses without invoking the callback.
func (m *Manager) SubmitAnswer(o *Overlay, answer string) bool {
	submit := o.submit
	if !m.remove(o, ClosedByUser) {
		return false
	}
	if answer != "" && submit != nil {
		submit(answer)
	}
	return true
}

// Active returns the most recently created attached overlay of the given
// kind, or nil.
func (m *Manager) Active(kind Kind) *Overlay {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *Overlay
	for _, o := range m.active {
		if o.Kind != kind {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	return latest
}

// ActiveCount reports how many overlays are currently attached.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// remove is the single teardown path. The existence check under the lock
// makes removal idempotent: whichever of the user action or the timer fires
// second finds the overlay gone and does nothing.
func (m *Manager) remove(o *Overlay, reason CloseReason) bool {
	m.mu.Lock()
	if _, ok := m.active[o.ID]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.active, o.ID)
	if o.timer != nil {
		o.timer.Stop()
	}
	m.surface.Detach(o)
	m.mu.Unlock()

	if o.onClose != nil {
		o.onClose(reason)
	}
	return true
}
