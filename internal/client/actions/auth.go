package actions

import (
	"context"
	"net/url"

	"cosmiclocker/internal/client/overlay"
	"cosmiclocker/internal/client/validate"
	"cosmiclocker/internal/client/vault"
)

// Login authenticates and follows the server-supplied redirect.
func (h *Handlers) Login(ctx context.Context, userID, password string) {
	if err := validate.Login(userID, password); err != nil {
		h.sinks.Login.Set(err.Error(), ClassNone)
		return
	}
	out := h.vault.Login(ctx, userID, password)
	switch out.Kind {
	case vault.OutcomeSuccess:
		h.nav.Goto(out.Redirect)
	case vault.OutcomeDomainError:
		h.sinks.Login.Set(out.MessageOr("Login failed"), ClassNone)
	case vault.OutcomeNetworkError:
		h.sinks.Login.Set(vault.NetworkErrorMessage, ClassNone)
	}
}

// Signup creates an account and redirects to the login surface.
func (h *Handlers) Signup(ctx context.Context, userID, password, securityQuestion, securityAnswer string) {
	if err := validate.Signup(userID, password, securityQuestion, securityAnswer); err != nil {
		h.sinks.Signup.Set(err.Error(), ClassNone)
		return
	}
	out := h.vault.Signup(ctx, userID, password, securityQuestion, securityAnswer)
	switch out.Kind {
	case vault.OutcomeSuccess:
		target := out.Redirect
		if target == "" {
			target = TargetLoginPage
		}
		h.nav.Goto(target)
	case vault.OutcomeDomainError:
		h.sinks.Signup.Set(out.MessageOr("Signup failed"), ClassNone)
	case vault.OutcomeNetworkError:
		h.sinks.Signup.Set(vault.NetworkErrorMessage, ClassNone)
	}
}

// ForgotPassword runs the user-id step of the recovery conversation. On the
// server's "security_question" token it raises the answer popup, seeded with
// the server-issued user id; the popup expires after thirty seconds as an
// abandoned recovery attempt.
func (h *Handlers) ForgotPassword(ctx context.Context, userID string) {
	if err := validate.RecoveryUserID(userID); err != nil {
		h.sinks.Forgot.Set(err.Error(), ClassNone)
		return
	}
	h.flow.Begin()
	out := h.vault.BeginRecovery(ctx, userID)
	if out.Kind == vault.OutcomeNetworkError {
		h.sinks.Forgot.Set(vault.NetworkErrorMessage, ClassNone)
		return
	}
	if out.Kind != vault.OutcomeSuccess || out.Step != vault.StepSecurityQuestion {
		h.sinks.Forgot.Set(out.MessageOr("Unknown error"), ClassNone)
		return
	}
	if !h.flow.QuestionReceived(out.UserID, out.SecurityQuestion) {
		return
	}
	grantedID := out.UserID
	h.overlays.ShowSecurityQuestion(out.SecurityQuestion,
		func(answer string) { h.submitSecurityAnswer(ctx, grantedID, answer) },
		overlay.Options{
			AutoDismiss: securityPopupTTL,
			OnClose: func(reason overlay.CloseReason) {
				if reason == overlay.ClosedByTimeout {
					h.flow.Abandon()
				}
			},
		})
}

// submitSecurityAnswer runs the security-question step. A domain error leaves
// the conversation at this step so the user may answer again.
func (h *Handlers) submitSecurityAnswer(ctx context.Context, userID, answer string) {
	out := h.vault.AnswerSecurityQuestion(ctx, userID, answer)
	if out.Kind == vault.OutcomeNetworkError {
		h.sinks.Forgot.Set(vault.NetworkErrorMessage, ClassNone)
		return
	}
	if out.Kind != vault.OutcomeSuccess || out.Step != vault.StepResetPassword {
		h.sinks.Forgot.Set(out.MessageOr("Unknown error"), ClassNone)
		return
	}
	h.flow.ResetGranted()
	h.nav.Goto(TargetResetPage + "?user_id=" + url.QueryEscape(out.UserID))
}

// ResetPassword submits the new credentials, confirms with a popup, then
// navigates to the login surface once the popup has run its course.
func (h *Handlers) ResetPassword(ctx context.Context, userID, newPassword, confirmPassword string) {
	if err := validate.ResetPassword(newPassword, confirmPassword); err != nil {
		h.sinks.Reset.Set(err.Error(), ClassNone)
		return
	}
	out := h.vault.ResetPassword(ctx, userID, newPassword, confirmPassword)
	switch out.Kind {
	case vault.OutcomeSuccess:
		h.overlays.ShowPopup(overlay.KindSuccessPopup,
			out.MessageOr("Password reset successfully!"),
			overlay.Options{AutoDismiss: successPopupTTL})
		target := out.Redirect
		if target == "" {
			target = TargetLoginPage
		}
		h.nav.GotoAfter(successPopupTTL, target)
	case vault.OutcomeDomainError:
		h.sinks.Reset.Set(out.MessageOr("Reset failed"), ClassNone)
	case vault.OutcomeNetworkError:
		h.sinks.Reset.Set(vault.NetworkErrorMessage, ClassNone)
	}
}

// Logout issues the GET and goes home no matter what the body said. Only a
// transport failure keeps the user where they are.
func (h *Handlers) Logout(ctx context.Context) {
	out := h.vault.Logout(ctx)
	if out.Kind == vault.OutcomeNetworkError {
		h.log.Error(ctx, "logout failed", "message", out.Message)
		return
	}
	h.nav.Goto(TargetHome)
}
