package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a stub.
type execIface interface {
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Delete(ctx context.Context) error
	Logout()
}

const replPrompt = "secure_drop> "

const helpText = `"add"    -> Add a new contact
"list"   -> List all contacts
"delete" -> Delete a contact
"exit"   -> Exit SecureDrop`

// runREPL reads commands from reader until "exit" or end of input. Commands
// are trimmed and case-insensitive. Handler errors are not fatal: handlers
// report them to the user themselves.
//
// Leaving the loop always ends the session.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	defer a.Logout()

	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprint(w, replPrompt)
		line, err := reader.ReadString('\n')
		cmd := strings.ToLower(strings.TrimSpace(line))

		if cmd == "" {
			if err != nil {
				fmt.Fprintln(w)
				return
			}
			continue
		}

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)

		case "add":
			_ = a.Add(ctx)

		case "list":
			_ = a.List(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "exit":
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
