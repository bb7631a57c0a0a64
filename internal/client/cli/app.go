package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"cosmiclocker/internal/client/actions"
	"cosmiclocker/internal/client/config"
	"cosmiclocker/internal/client/flow"
	"cosmiclocker/internal/client/overlay"
	"cosmiclocker/internal/client/vault"
	"cosmiclocker/internal/logging"
)

// App is the interactive client. It owns the terminal surface, the overlay
// manager, the recovery flow and the action handlers, and translates typed
// commands into handler calls.
type App struct {
	config   *config.Config
	term     *Terminal
	overlays *overlay.Manager
	flow     *flow.Machine
	handlers *actions.Handlers
	reader   *bufio.Reader
	out      io.Writer
	log      logging.Logger

	// lockFile survives a failed lock so the user can retry without
	// re-selecting the file.
	lockFile string
}

func NewApp(cfg *config.Config, log logging.Logger) *App {
	term := NewTerminal(os.Stdout)
	overlays := overlay.NewManager(term, log)
	fl := flow.New()
	vc := vault.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout, log)

	handlers := actions.New(actions.Config{
		Vault:    vc,
		Overlays: overlays,
		Flow:     fl,
		Nav:      term,
		Saver:    downloadStore{dir: cfg.DownloadDir},
		Sinks: actions.Sinks{
			Login:   term.Region("login"),
			Signup:  term.Region("signup"),
			Forgot:  term.Region("forgot"),
			Reset:   term.Region("reset"),
			Lock:    term.Region("lock"),
			List:    term.Region("files"),
			Recycle: term.Region("recycle"),
		},
		RecycleHost: actions.HostModal,
		Log:         log,
	})

	return &App{
		config:   cfg,
		term:     term,
		overlays: overlays,
		flow:     fl,
		handlers: handlers,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		log:      log,
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "User ID", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	a.handlers.Login(ctx, userID, password)
	return nil
}

// Signup prompts for the full registration form.
func (a *App) Signup(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "User ID", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	question, err := GetSimpleText(a.reader, "Security question", a.out)
	if err != nil {
		return err
	}
	answer, err := GetSimpleText(a.reader, "Security answer", a.out)
	if err != nil {
		return err
	}
	a.handlers.Signup(ctx, userID, password, question, answer)
	return nil
}

// Forgot starts the password-recovery conversation. The security question
// arrives as a popup that expects an "answer <text>" command.
func (a *App) Forgot(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "User ID", a.out)
	if err != nil {
		return err
	}
	a.handlers.ForgotPassword(ctx, userID)
	return nil
}

// Answer feeds text to the active security-question popup.
func (a *App) Answer(ctx context.Context, answer string) error {
	o := a.overlays.Active(overlay.KindSecurityPopup)
	if o == nil {
		fmt.Fprintln(a.out, "No security question is waiting for an answer.")
		return nil
	}
	a.overlays.SubmitAnswer(o, answer)
	return nil
}

// Reset prompts for the new credentials. The user id is taken from the reset
// page's query parameter, put there by a granted recovery.
func (a *App) Reset(ctx context.Context) error {
	userID := a.term.Param("user_id")
	newPassword, err := GetPassword("New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	a.handlers.ResetPassword(ctx, userID, newPassword, confirm)
	return nil
}

// Lock encrypts a local file into the vault. With no path argument the
// previously selected file is reused; the selection is cleared only on
// success.
func (a *App) Lock(ctx context.Context, path string) error {
	if path != "" {
		a.lockFile = path
	}
	password, err := GetPassword("Vault password", a.out)
	if err != nil {
		return err
	}

	var upload vault.Upload
	if a.lockFile != "" {
		data, err := os.ReadFile(a.lockFile)
		if err != nil {
			fmt.Fprintln(a.out, "Cannot read file:", err)
			return nil
		}
		upload = vault.Upload{Name: filepath.Base(a.lockFile), Reader: bytes.NewReader(data)}
	}

	if a.handlers.Lock(ctx, password, upload) {
		a.lockFile = ""
	}
	return nil
}

// List opens the vault file listing.
func (a *App) List(ctx context.Context) error {
	password, err := GetPassword("Vault password", a.out)
	if err != nil {
		return err
	}
	a.handlers.List(ctx, password)
	return nil
}

// Recycle opens the recycle-bin listing.
func (a *App) Recycle(ctx context.Context) error {
	password, err := GetPassword("Vault password", a.out)
	if err != nil {
		return err
	}
	a.handlers.Recycle(ctx, password)
	return nil
}

// Retrieve runs the Retrieve action of the numbered file-list row.
func (a *App) Retrieve(ctx context.Context, arg string) error {
	return a.invokeRow(overlay.KindFileListModal, arg, "Retrieve")
}

// Delete runs the Delete action of the numbered file-list row.
func (a *App) Delete(ctx context.Context, arg string) error {
	return a.invokeRow(overlay.KindFileListModal, arg, "Delete")
}

// Restore runs the Restore action of the numbered recycle-bin row.
func (a *App) Restore(ctx context.Context, arg string) error {
	return a.invokeRow(overlay.KindRecycleModal, arg, "Restore")
}

func (a *App) invokeRow(kind overlay.Kind, arg, label string) error {
	o := a.overlays.Active(kind)
	if o == nil {
		fmt.Fprintf(a.out, "No open %s. Run the listing command first.\n", kind)
		return nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		fmt.Fprintf(a.out, "Usage: %s <row number>\n", lower(label))
		return nil
	}
	if !o.Invoke(n-1, label) {
		fmt.Fprintln(a.out, "No such row:", arg)
	}
	return nil
}

// Close dismisses the most recent open modal or popup, if any.
func (a *App) Close(ctx context.Context) error {
	for _, kind := range []overlay.Kind{
		overlay.KindFileListModal,
		overlay.KindRecycleModal,
		overlay.KindSecurityPopup,
		overlay.KindSuccessPopup,
	} {
		if o := a.overlays.Active(kind); o != nil {
			a.overlays.Dismiss(o)
			return nil
		}
	}
	fmt.Fprintln(a.out, "Nothing to close.")
	return nil
}

// Logout ends the server session and returns home.
func (a *App) Logout(ctx context.Context) error {
	a.handlers.Logout(ctx)
	return nil
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
