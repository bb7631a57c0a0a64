// Package flow tracks the forgot-password conversation, the only multi-step
// server exchange in the client. Transitions happen strictly on
// server-declared step tokens; the client never guesses what comes next.
package flow

import "sync"

// State is the current step of the recovery conversation.
type State int

const (
	// StateIdle means no recovery conversation is in progress.
	StateIdle State = iota
	// StateAwaitingUserID means the user-id step has been submitted and the
	// server has not yet named the next step.
	StateAwaitingUserID
	// StateAwaitingAnswer means the security question is on screen.
	StateAwaitingAnswer
	// StateAwaitingNewPassword means the server granted a password reset and
	// the reset surface owns the remainder of the conversation.
	StateAwaitingNewPassword
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingUserID:
		return "awaiting-user-id"
	case StateAwaitingAnswer:
		return "awaiting-security-answer"
	case StateAwaitingNewPassword:
		return "awaiting-new-password"
	}
	return "unknown"
}

// Machine holds the recovery state plus the identifying token the server
// threads through the conversation. At most one conversation is active;
// beginning a new one discards whatever came before.
type Machine struct {
	mu       sync.Mutex
	state    State
	userID   string
	question string
}

func New() *Machine {
	return &Machine{state: StateIdle}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// UserID is the server-issued identity token for the active conversation.
func (m *Machine) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

// Question is the security question the server asked, if any.
func (m *Machine) Question() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.question
}

// Begin starts a fresh conversation with the user-id step in flight,
// discarding any prior state.
func (m *Machine) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAwaitingUserID
	m.userID = ""
	m.question = ""
}

// QuestionReceived records the server's "security_question" step. It applies
// only while the user-id step is in flight; a stale response is ignored.
func (m *Machine) QuestionReceived(userID, question string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAwaitingUserID {
		return false
	}
	m.state = StateAwaitingAnswer
	m.userID = userID
	m.question = question
	return true
}

// ResetGranted records the server's "reset_password" step. Navigation to the
// reset surface ends the client-side conversation, so the machine returns to
// idle; the reset surface runs its own handler.
func (m *Machine) ResetGranted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAwaitingAnswer {
		return false
	}
	m.state = StateIdle
	m.userID = ""
	m.question = ""
	return true
}

// Abandon silently resets the conversation, e.g. when the security-question
// popup times out. No error is surfaced.
func (m *Machine) Abandon() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIdle
	m.userID = ""
	m.question = ""
}
