package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jrsteele09/timetrack-auth/credentials/filerepo"
	"github.com/pkg/errors"
)

func runCheck(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	path := fs.String("file", os.Getenv("CREDENTIAL_FILE"), "credential file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		return errors.Wrap(err, "reading credential file")
	}
	repo, err := filerepo.Parse(data)
	if err != nil {
		return errors.Wrap(err, *path)
	}

	tenants := repo.Tenants()
	tw := tabwriter.NewWriter(ctx.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TENANT\tCREDENTIALS")
	for _, tenantID := range repo.TenantIDs() {
		fmt.Fprintf(tw, "%s\t%d\n", tenantID, tenants[tenantID])
	}
	fmt.Fprintf(tw, "total\t%d\n", repo.Len())
	return tw.Flush()
}
