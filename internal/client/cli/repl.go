package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Day(ctx context.Context, arg string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Images(ctx context.Context) error
	Drain(ctx context.Context) error
}

// runREPL starts a read-eval-print loop for the MoodNotes CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — sign in with an identity token
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - list           — list notes grouped by day
//	  - day <date>     — list notes of one calendar day (YYYY-MM-DD)
//	  - add            — add a note
//	  - edit <id>      — edit a note
//	  - delete <id>    — delete a note
//	  - deleteall      — delete every note
//	  - images         — list uploaded images
//	  - drain          — replay pending image operations
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mn> %s > ", statusFn()))
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
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, day <date>, add, edit <id>, delete <id>, deleteall, images, drain, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "day":
			if len(args) == 0 {
				printlnFn("Usage: day <YYYY-MM-DD>")
				continue
			}
			_ = a.Day(ctx, args[0])

		case "add":
			_ = a.Add(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.Edit(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "deleteall":
			_ = a.DeleteAll(ctx)

		case "images":
			_ = a.Images(ctx)

		case "drain":
			_ = a.Drain(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
