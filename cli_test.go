package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/apikey"
	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/table"
	"github.com/Zachkp/portfolio/internal/table/sqltable"
)

// cliEnv points the CLI at a fresh database and returns its path.
func cliEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DATABASE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TABLE_JWT_SECRET", testSecret)
	t.Setenv("TABLE_URL", "")
	t.Setenv("TABLE_API_KEY", "")
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func onlyRecord(t *testing.T, path string) certificate.Record {
	t.Helper()
	tbl, err := sqltable.Open(context.Background(), path)
	require.NoError(t, err)
	defer tbl.Close()
	records, err := tbl.Select(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func TestCLIVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "portfolio version "+version+"\n", out)
}

func TestCLIListEmpty(t *testing.T) {
	cliEnv(t)
	out, err := runCLI(t, "", "certs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No certificates found.")
}

func TestCLIAddListUpdateDelete(t *testing.T) {
	path := cliEnv(t)

	out, err := runCLI(t, "", "certs", "add",
		"--title", "Oracle Database SQL", "--issuer", "Oracle",
		"--date", "2023-11-05", "--category", "Database")
	require.NoError(t, err)
	assert.Contains(t, out, "Success: Certificate added successfully")

	rec := onlyRecord(t, path)
	assert.Equal(t, "Oracle", rec.Issuer)

	out, err = runCLI(t, "", "certs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "Oracle Database SQL")
	assert.Contains(t, out, "2023-11-05")
	assert.Contains(t, out, rec.ID)

	out, err = runCLI(t, "", "certs", "update", rec.ID, "--title", "Oracle SQL Associate")
	require.NoError(t, err)
	assert.Contains(t, out, "Success: Certificate updated successfully")
	updated := onlyRecord(t, path)
	assert.Equal(t, "Oracle SQL Associate", updated.Title)
	assert.Equal(t, "Oracle", updated.Issuer)
	assert.Equal(t, "2023-11-05", updated.DateIssued.String())

	out, err = runCLI(t, "n\n", "certs", "delete", rec.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete this certificate? [y/N]")
	assert.Contains(t, out, "Delete cancelled.")
	onlyRecord(t, path)

	out, err = runCLI(t, "y\n", "certs", "delete", rec.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Success: Certificate deleted successfully")

	out, err = runCLI(t, "", "certs", "delete", "--yes", rec.ID)
	assert.ErrorIs(t, err, errNotDeleted)
	assert.Contains(t, out, "Error: Failed to delete certificate")
}

func TestCLIAddRejectsBadInput(t *testing.T) {
	cliEnv(t)

	_, err := runCLI(t, "", "certs", "add", "--title", "Only a title")
	assert.Error(t, err)

	out, err := runCLI(t, "", "certs", "add",
		"--title", "T", "--issuer", "I", "--date", "05/11/2023", "--category", "C")
	assert.ErrorIs(t, err, errNotSaved)
	assert.Contains(t, out, "Error: Failed to save certificate")
}

func TestCLIUpdateUnknownID(t *testing.T) {
	cliEnv(t)
	_, err := runCLI(t, "", "certs", "update", "missing", "--title", "X")
	assert.ErrorIs(t, err, table.ErrNotFound)
}

func TestCLIKeys(t *testing.T) {
	cliEnv(t)

	out, err := runCLI(t, "", "keys", "--role", "service_role")
	require.NoError(t, err)
	keys, err := apikey.New(testSecret)
	require.NoError(t, err)
	claims, err := keys.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, apikey.RoleService, claims.Role)

	_, err = runCLI(t, "", "keys", "--role", "root")
	assert.Error(t, err)
}

func TestCLIKeysNeedSecret(t *testing.T) {
	cliEnv(t)
	t.Setenv("TABLE_JWT_SECRET", "")
	_, err := runCLI(t, "", "keys")
	assert.ErrorIs(t, err, apikey.ErrNoSecret)
}

func TestCLISeed(t *testing.T) {
	path := cliEnv(t)
	seedFile := filepath.Join(t.TempDir(), "certs.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
certificates:
  - title: AWS Cloud Practitioner
    issuer: Amazon Web Services
    date_issued: 2022-02-02
    category: Cloud
`), 0o600))

	out, err := runCLI(t, "", "seed", seedFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 1 certificates")
	assert.Equal(t, "AWS Cloud Practitioner", onlyRecord(t, path).Title)
}
