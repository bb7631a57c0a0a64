package actions

import (
	"context"
	"strings"

	"cosmiclocker/internal/client/overlay"
	"cosmiclocker/internal/client/validate"
	"cosmiclocker/internal/client/vault"
)

// Lock encrypts the chosen file into the vault. It reports whether the file
// selection should be cleared: true on success, false on any failure so the
// user can retry with the same file.
func (h *Handlers) Lock(ctx context.Context, password string, file vault.Upload) bool {
	if err := validate.Lock(file.Name, password); err != nil {
		h.sinks.Lock.Set(err.Error(), ClassError)
		return false
	}
	out := h.vault.Lock(ctx, password, file)
	switch out.Kind {
	case vault.OutcomeSuccess:
		h.overlays.ShowPopup(overlay.KindSuccessPopup,
			"File locked: "+out.FileName,
			overlay.Options{AutoDismiss: successPopupTTL})
		h.sinks.Lock.Set("", ClassSuccess)
		return true
	case vault.OutcomeDomainError:
		h.sinks.Lock.Set(out.MessageOr("Failed to lock file"), ClassError)
	case vault.OutcomeNetworkError:
		h.sinks.Lock.Set(vault.NetworkErrorMessage, ClassError)
	}
	return false
}

// List opens the file-list modal. Each row's actions capture the password the
// modal was opened with, so a later edit of the form cannot leak into them.
func (h *Handlers) List(ctx context.Context, password string) {
	if err := validate.VaultPassword(password); err != nil {
		h.sinks.List.Set(err.Error(), ClassError)
		return
	}
	out := h.vault.List(ctx, password)
	switch out.Kind {
	case vault.OutcomeSuccess:
		pwd := password
		h.overlays.ShowFileList(out.Files, overlay.FileActions{
			Retrieve: func(name string) { h.retrieve(ctx, pwd, name) },
			Delete:   func(name string) { h.delete(ctx, pwd, name) },
		})
	case vault.OutcomeDomainError:
		h.sinks.List.Set(out.MessageOr("Failed to list files"), ClassError)
	case vault.OutcomeNetworkError:
		h.sinks.List.Set(vault.NetworkErrorMessage, ClassError)
	}
}

// Recycle opens the recycle-bin modal, or, when the view cannot host a
// modal, routes a successful refresh to the status region as a restore
// confirmation. The second branch preserves a quirk of the original client.
func (h *Handlers) Recycle(ctx context.Context, password string) {
	if err := validate.VaultPassword(password); err != nil {
		h.sinks.Recycle.Set(err.Error(), ClassError)
		return
	}
	out := h.vault.RecycleBin(ctx, password)
	if out.Kind == vault.OutcomeNetworkError {
		h.sinks.Recycle.Set(vault.NetworkErrorMessage, ClassError)
		return
	}
	if h.recycleHost == HostStatusOnly {
		h.sinks.Recycle.Set("File restored successfully", ClassSuccess)
		return
	}
	if out.Kind != vault.OutcomeSuccess {
		h.sinks.Recycle.Set(out.MessageOr("Failed to view recycle bin"), ClassError)
		return
	}
	pwd := password
	h.overlays.ShowRecycleBin(out.Files, overlay.RecycleActions{
		Restore: func(name string) { h.restore(ctx, pwd, name) },
	})
}

// retrieve downloads and decrypts one file, saving it under its original name
// with the vault suffix stripped.
func (h *Handlers) retrieve(ctx context.Context, password, fileName string) {
	data, out := h.vault.Retrieve(ctx, password, fileName)
	switch out.Kind {
	case vault.OutcomeSuccess:
		if err := h.saver.Save(strings.TrimSuffix(fileName, lockedSuffix), data); err != nil {
			h.log.Error(ctx, "saving retrieved file", "file", fileName, "error", err)
			h.sinks.List.Set("Failed to retrieve file", ClassError)
			return
		}
		h.sinks.List.Set("File retrieved successfully", ClassSuccess)
	case vault.OutcomeDomainError:
		h.sinks.List.Set(out.MessageOr("Failed to retrieve file"), ClassError)
	case vault.OutcomeNetworkError:
		h.sinks.List.Set(vault.NetworkErrorMessage, ClassError)
	}
}

// delete moves one file to the recycle bin, refreshes any open listing right
// away, and heads home shortly after so the page state cannot go stale.
func (h *Handlers) delete(ctx context.Context, password, fileName string) {
	out := h.vault.Delete(ctx, password, fileName)
	switch out.Kind {
	case vault.OutcomeSuccess:
		h.sinks.List.Set("File deleted successfully", ClassSuccess)
		h.nav.GotoAfter(postDeleteNavDelay, TargetHome)
		h.List(ctx, password)
	case vault.OutcomeDomainError:
		h.sinks.List.Set(out.MessageOr("Failed to delete file"), ClassError)
	case vault.OutcomeNetworkError:
		h.sinks.List.Set(vault.NetworkErrorMessage, ClassError)
	}
}

// restore is delete's mirror image against the recycle bin.
func (h *Handlers) restore(ctx context.Context, password, fileName string) {
	out := h.vault.Restore(ctx, password, fileName)
	switch out.Kind {
	case vault.OutcomeSuccess:
		h.sinks.Recycle.Set("File restored successfully", ClassSuccess)
		h.nav.GotoAfter(postDeleteNavDelay, TargetHome)
		h.Recycle(ctx, password)
	case vault.OutcomeDomainError:
		h.sinks.Recycle.Set(out.MessageOr("Failed to restore file"), ClassError)
	case vault.OutcomeNetworkError:
		h.sinks.Recycle.Set(vault.NetworkErrorMessage, ClassError)
	}
}
