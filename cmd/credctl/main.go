// Command credctl manages tenant credentials for the auth service: it hashes
// passwords, validates credential files and edits the PostgreSQL store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{Ctx: ctx, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	os.Exit(run(cmdCtx, os.Args[1:]))
}

// run dispatches args to a subcommand and returns the process exit code.
func run(cmdCtx *commandContext, args []string) int {
	if len(args) < 1 {
		printUsage(cmdCtx.Stderr)
		return 2
	}

	cmd, ok := commands()[args[0]]
	if !ok {
		fmt.Fprintf(cmdCtx.Stderr, "unknown command %q\n\n", args[0])
		printUsage(cmdCtx.Stderr)
		return 2
	}

	if err := cmd.run(cmdCtx, args[1:]); err != nil {
		log.Error().Err(err).Str("command", cmd.name).Msg("command failed")
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"hash": {
			name:        "hash",
			description: "Read a password from stdin and print its bcrypt hash or a credential file entry",
			run:         runHash,
		},
		"check": {
			name:        "check",
			description: "Validate a credential file and summarise it per tenant",
			run:         runCheck,
		},
		"put": {
			name:        "put",
			description: "Create or replace a credential in PostgreSQL (password read from stdin)",
			run:         runPut,
		},
		"delete": {
			name:        "delete",
			description: "Remove a credential from PostgreSQL",
			run:         runDelete,
		},
		"migrate": {
			name:        "migrate",
			description: "Apply the credential schema migrations",
			run:         runMigrate,
		},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: credctl <command> [flags]\n\n")
	fmt.Fprintf(w, "Available commands:\n")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, cmds[name].description)
	}
}
