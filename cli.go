// cli.go - certificate maintenance from the command line
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/apikey"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/editor"
	"github.com/Zachkp/portfolio/internal/notify"
	"github.com/Zachkp/portfolio/internal/seed"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/table"
	"github.com/Zachkp/portfolio/internal/table/resttable"
	"github.com/Zachkp/portfolio/internal/table/sqltable"
)

var (
	errNotSaved   = errors.New("certificate was not saved")
	errNotDeleted = errors.New("certificate was not deleted")
	errLoadFailed = errors.New("certificates could not be loaded")
)

// openTable returns the remote table when TABLE_URL is set and the local
// database otherwise.
func openTable(ctx context.Context, cfg *config.Config) (table.Table, func() error, error) {
	if cfg.TableURL != "" {
		client, err := resttable.New(cfg.TableURL, cfg.TableAPIKey, nil)
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { return nil }, nil
	}
	tbl, err := sqltable.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return tbl, tbl.Close, nil
}

// cliSession is the CLI's view: a store and editor that report to stdout.
type cliSession struct {
	store  *store.Store
	editor *editor.Editor
	close  func() error
}

func openSession(cmd *cobra.Command) (*cliSession, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	tbl, closeFn, err := openTable(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	sink := notify.Writer{W: cmd.OutOrStdout()}
	s := store.New(store.Config{Table: tbl, Sink: sink, Logger: logger})
	return &cliSession{
		store:  s,
		editor: editor.New(s, sink),
		close:  closeFn,
	}, nil
}

// promptConfirmer asks on out and reads a y/N answer from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	answer, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func certsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certs",
		Short: "List and edit certificates",
	}
	cmd.AddCommand(certsListCmd(), certsAddCmd(), certsUpdateCmd(), certsDeleteCmd())
	return cmd
}

func certsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List certificates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.close()

			if res := sess.store.Load(cmd.Context()); !res.OK() {
				return errLoadFailed
			}
			records := sess.store.Snapshot()
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No certificates found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCATEGORY\tTITLE\tISSUER\tID")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.DateIssued, rec.Category, rec.Title, rec.Issuer, rec.ID)
			}
			return w.Flush()
		},
	}
}

func addFormFlags(cmd *cobra.Command, form *editor.Form) {
	cmd.Flags().StringVar(&form.Title, "title", "", "Certificate title")
	cmd.Flags().StringVar(&form.Issuer, "issuer", "", "Issuing organisation")
	cmd.Flags().StringVar(&form.DateIssued, "date", "", "Date issued (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.Category, "category", "", "Category, e.g. AI/ML, Security, Database")
	cmd.Flags().StringVar(&form.CertificateURL, "url", "", "Link to the certificate")
}

func certsAddCmd() *cobra.Command {
	var form editor.Form
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.close()

			sess.editor.SetForm(form)
			if res := sess.editor.Submit(cmd.Context()); !res.OK() {
				return errNotSaved
			}
			return nil
		},
	}
	addFormFlags(cmd, &form)
	for _, name := range []string{"title", "issuer", "date", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func certsUpdateCmd() *cobra.Command {
	var flags editor.Form
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a certificate; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.close()

			if res := sess.store.Load(cmd.Context()); !res.OK() {
				return errLoadFailed
			}
			rec, ok := sess.store.Find(args[0])
			if !ok {
				return fmt.Errorf("certificate %s: %w", args[0], table.ErrNotFound)
			}
			sess.editor.BeginEdit(rec)

			form := sess.editor.Form()
			changed := cmd.Flags().Changed
			if changed("title") {
				form.Title = flags.Title
			}
			if changed("issuer") {
				form.Issuer = flags.Issuer
			}
			if changed("date") {
				form.DateIssued = flags.DateIssued
			}
			if changed("category") {
				form.Category = flags.Category
			}
			if changed("url") {
				form.CertificateURL = flags.CertificateURL
			}
			sess.editor.SetForm(form)

			if res := sess.editor.Submit(cmd.Context()); !res.OK() {
				return errNotSaved
			}
			return nil
		},
	}
	addFormFlags(cmd, &flags)
	return cmd
}

func certsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.close()

			var confirm store.Confirmer = promptConfirmer{
				in:  bufio.NewReader(cmd.InOrStdin()),
				out: cmd.OutOrStdout(),
			}
			if yes {
				confirm = store.AlwaysConfirm
			}

			switch res := sess.store.Delete(cmd.Context(), args[0], confirm); res.Outcome {
			case store.Declined:
				fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled.")
				return nil
			case store.Failed:
				return errNotDeleted
			default:
				return nil
			}
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func keysCmd() *cobra.Command {
	var (
		roleName string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Mint an api key for the certificates REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			role, err := apikey.ParseRole(roleName)
			if err != nil {
				return err
			}
			keys, err := apikey.New(cfg.TableJWTSecret)
			if err != nil {
				return err
			}
			token, err := keys.Mint(role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&roleName, "role", string(apikey.RoleAnon), "Key role: anon or service_role")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Key lifetime; 0 never expires")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Insert the certificates listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			entries, err := seed.ReadFile(args[0])
			if err != nil {
				return err
			}
			tbl, closeFn, err := openTable(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := seed.Insert(cmd.Context(), tbl, entries)
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d certificates\n", n)
			return err
		},
	}
}
