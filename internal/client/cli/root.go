package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the loop needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Forgot(ctx context.Context) error
	Answer(ctx context.Context, answer string) error
	Reset(ctx context.Context) error
	Lock(ctx context.Context, path string) error
	List(ctx context.Context) error
	Recycle(ctx context.Context) error
	Retrieve(ctx context.Context, arg string) error
	Delete(ctx context.Context, arg string) error
	Restore(ctx context.Context, arg string) error
	Close(ctx context.Context) error
	Logout(ctx context.Context) error
}

const helpText = `Available commands:
  login                 log in
  signup                create an account
  forgot                start password recovery
  answer <text>         answer the open security question
  reset                 set a new password after a granted recovery
  lock [path]           encrypt a file into the vault
  list                  list your locked files
  recycle               show the recycle bin
  retrieve <n>          retrieve row n of the open file list
  delete <n>            delete row n of the open file list
  restore <n>           restore row n of the open recycle bin
  close                 dismiss the open popup or modal
  logout                end the session
  exit | quit           leave the program`

// runLoop reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures through the status regions. This keeps the loop
// resilient and focused on I/O.
func runLoop(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("locker %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "login":
			_ = a.Login(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "answer":
			_ = a.Answer(ctx, strings.Join(args, " "))

		case "reset":
			_ = a.Reset(ctx)

		case "lock":
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			_ = a.Lock(ctx, path)

		case "l", "list":
			_ = a.List(ctx)

		case "recycle":
			_ = a.Recycle(ctx)

		case "retrieve":
			if len(args) == 0 {
				printlnFn("Usage: retrieve <row number>")
				continue
			}
			_ = a.Retrieve(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <row number>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "restore":
			if len(args) == 0 {
				printlnFn("Usage: restore <row number>")
				continue
			}
			_ = a.Restore(ctx, args[0])

		case "close":
			_ = a.Close(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// Root greets the user and runs the command loop against stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Cosmic File Locker (type 'help' for commands)")
	a.term.Goto("/")
	scanner := bufio.NewScanner(os.Stdin)
	runLoop(ctx, a, a.status, scanner)
}

// status annotates the prompt with the current page.
func (a *App) status() string {
	return "(" + a.term.Page() + ")"
}
