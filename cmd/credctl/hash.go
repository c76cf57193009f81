package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/jrsteele09/timetrack-auth/credentials/filerepo"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type hashOptions struct {
	Cost          int
	CheckStrength bool
	TenantID      string
	Username      string
}

func runHash(ctx *commandContext, args []string) error {
	var opts hashOptions
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	fs.IntVar(&opts.Cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	fs.BoolVar(&opts.CheckStrength, "check-strength", false, "reject passwords that fail the strength rules")
	fs.StringVar(&opts.TenantID, "tenant", "", "print a credential file entry for this tenant")
	fs.StringVar(&opts.Username, "username", "", "print a credential file entry for this username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (opts.TenantID == "") != (opts.Username == "") {
		return errors.New("-tenant and -username must be given together")
	}

	password, err := readPassword(ctx.Stdin)
	if err != nil {
		return err
	}
	if opts.CheckStrength {
		if err := credentials.ValidatePasswordStrength(password); err != nil {
			return err
		}
	}

	hash, err := credentials.HashPasswordWithCost(password, opts.Cost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}

	if opts.TenantID == "" {
		_, err = fmt.Fprintln(ctx.Stdout, hash)
		return err
	}

	cred := credentials.Credential{TenantID: opts.TenantID, Username: opts.Username, PasswordHash: hash}
	if err := cred.Validate(); err != nil {
		return err
	}
	out, err := yaml.Marshal(filerepo.Document{Credentials: []credentials.Credential{cred}})
	if err != nil {
		return errors.Wrap(err, "encoding credential entry")
	}
	_, err = ctx.Stdout.Write(out)
	return err
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "reading password")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("no password on stdin")
	}
	return password, nil
}
