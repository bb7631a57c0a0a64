package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"cosmiclocker/internal/client/actions"
	"cosmiclocker/internal/client/overlay"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 1)
	securityStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
)

// pageTitles maps navigation targets to the banner shown on arrival.
var pageTitles = map[string]string{
	"/":               "Cosmic File Locker",
	"/login-page":     "Log in",
	"/signup":         "Sign up",
	"/forgot":         "Recover your password",
	"/reset-password": "Reset password",
	"/lock":           "Your vault",
}

// Terminal is the client's document surface: overlays attach to it, status
// regions print through it, and navigation targets become page banners. It is
// safe for the overlay timers and delayed navigations to call concurrently
// with the command loop.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	page   string
	params url.Values
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, page: "/", params: url.Values{}}
}

// Attach renders the overlay as a framed block.
func (t *Terminal) Attach(o *overlay.Overlay) {
	var b strings.Builder
	if o.Title != "" {
		b.WriteString(titleStyle.Render(o.Title) + "\n")
	}
	if o.Body != "" {
		b.WriteString(o.Body + "\n")
	}
	for i, row := range o.Rows {
		labels := make([]string, 0, len(row.Actions))
		for _, a := range row.Actions {
			labels = append(labels, a.Label)
		}
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, row.Name, dimStyle.Render("["+strings.Join(labels, " | ")+"]"))
	}

	var style lipgloss.Style
	switch o.Kind {
	case overlay.KindSuccessPopup:
		style = popupStyle
	case overlay.KindSecurityPopup:
		style = securityStyle
		b.WriteString(dimStyle.Render("(reply with: answer <text>)") + "\n")
	default:
		style = modalStyle
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, style.Render(strings.TrimRight(b.String(), "\n")))
}

// Detach notes the removal; the frame itself scrolls away naturally.
func (t *Terminal) Detach(o *overlay.Overlay) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, dimStyle.Render(fmt.Sprintf("(%s closed)", o.Kind)))
}

// Goto switches the current page, carrying any query parameters of the
// target (e.g. the user id threaded to the reset surface).
func (t *Terminal) Goto(target string) {
	path := target
	params := url.Values{}
	if u, err := url.Parse(target); err == nil {
		path = u.Path
		params = u.Query()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.page = path
	t.params = params
	title, ok := pageTitles[path]
	if !ok {
		title = path
	}
	fmt.Fprintln(t.w, titleStyle.Render("== "+title+" =="))
}

// GotoAfter schedules a navigation. If the user moved on in the meantime the
// navigation still happens, mirroring a browser redirect timer.
func (t *Terminal) GotoAfter(delay time.Duration, target string) {
	time.AfterFunc(delay, func() { t.Goto(target) })
}

// Page returns the current page path.
func (t *Terminal) Page() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

// Param returns a query parameter carried by the last navigation.
func (t *Terminal) Param(key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.Get(key)
}

// Region returns the named status region of this surface.
func (t *Terminal) Region(label string) *Region {
	return &Region{t: t, label: label}
}

// Region is one form's status output, printed as a styled line.
type Region struct {
	t     *Terminal
	label string
}

func (r *Region) Set(message string, class actions.StatusClass) {
	if message == "" {
		return
	}
	line := fmt.Sprintf("[%s] %s", r.label, message)
	switch class {
	case actions.ClassError:
		line = errorStyle.Render(line)
	case actions.ClassSuccess:
		line = successStyle.Render(line)
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	fmt.Fprintln(r.t.w, line)
}

func (r *Region) Clear() {}

// downloadStore writes retrieved files into the configured download
// directory, creating it on first use.
type downloadStore struct {
	dir string
}

func (d downloadStore) Save(name string, data []byte) error {
	if err := os.MkdirAll(d.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.dir, filepath.Base(name)), data, 0o600)
}
