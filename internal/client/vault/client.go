// Package vault is the request dispatcher: one asynchronous call per user
// action against the remote vault service, with every response reduced to a
// single Outcome before any UI code sees it.
package vault

import (
	"context"
	"io"
)

// Upload is a file selected for locking. The reader is consumed exactly once
// while the request body is being built.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Client defines every server conversation the orchestration layer can start.
//
// Methods never return a Go error: transport failures are folded into an
// Outcome with Kind == OutcomeNetworkError so handlers deal with exactly one
// result shape. Retrieve is the only call with a binary success body; its
// payload is returned alongside the Outcome and is nil unless Kind is
// OutcomeSuccess.
//
// No call is retried and in-flight calls are never cancelled beyond context
// expiry; re-submission while a call is outstanding is an accepted limitation
// of the UI, not something this layer deduplicates.
type Client interface {
	Login(ctx context.Context, userID, password string) *Outcome
	Signup(ctx context.Context, userID, password, securityQuestion, securityAnswer string) *Outcome
	BeginRecovery(ctx context.Context, userID string) *Outcome
	AnswerSecurityQuestion(ctx context.Context, userID, securityAnswer string) *Outcome
	ResetPassword(ctx context.Context, userID, newPassword, confirmPassword string) *Outcome
	Lock(ctx context.Context, password string, file Upload) *Outcome
	List(ctx context.Context, password string) *Outcome
	RecycleBin(ctx context.Context, password string) *Outcome
	Retrieve(ctx context.Context, password, fileName string) ([]byte, *Outcome)
	Delete(ctx context.Context, password, fileName string) *Outcome
	Restore(ctx context.Context, password, fileName string) *Outcome
	Logout(ctx context.Context) *Outcome
}
