package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/tuition-reconciler/internal/cli"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	c.Storage.DatabasePath = filepath.Join(t.TempDir(), "cmd.db")
	c.Observability.Logging.Level = "error"
	return c
}

func runCmd(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestCommands_Registered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "reconcile", "roster", "runs", "confirm"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	require.NotNil(t, reconcileCmd.Flags().Lookup("dry-run"))
	require.NotNil(t, reconcileCmd.Flags().Lookup("image"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestReconcileCmd_ConflictingInput(t *testing.T) {
	cfg = testConfig(t)
	old := reconcileFlags
	reconcileFlags = cli.ReconcileFlags{File: "a.txt", Image: "b.jpg"}
	defer func() { reconcileFlags = old }()

	_, err := runCmd(t, reconcileCmd, "")
	assert.ErrorIs(t, err, cli.ErrConflictingInput)
}

func TestCommands_ImportReconcileConfirm(t *testing.T) {
	cfg = testConfig(t)
	old := reconcileFlags
	reconcileFlags = cli.ReconcileFlags{}
	defer func() { reconcileFlags = old }()

	out, err := runCmd(t, rosterImportCmd, "김민준 80000\n이서연 140000\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 students")

	out, err = runCmd(t, reconcileCmd, "22만원")
	require.NoError(t, err)
	assert.Contains(t, out, "combined_amount_match")
	assert.Contains(t, out, "Matched=1")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	require.NoError(t, err)
	runs, err := store.ListRuns(10, 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)

	out, err = runCmd(t, runsCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].ID[:8])

	out, err = runCmd(t, confirmCmd, "", runs[0].ID, strconv.Itoa(0))
	require.NoError(t, err)
	assert.Contains(t, out, "2 payments recorded")

	_, err = runCmd(t, confirmCmd, "", runs[0].ID, "0")
	assert.ErrorIs(t, err, storage.ErrAlreadyConfirmed)
}

func TestReconcileCmd_DryRunJSON(t *testing.T) {
	cfg = testConfig(t)
	old := reconcileFlags
	reconcileFlags = cli.ReconcileFlags{DryRun: true, JSON: true}
	defer func() { reconcileFlags = old }()

	_, err := runCmd(t, rosterImportCmd, "노하연 250000\n")
	require.NoError(t, err)

	out, err := runCmd(t, reconcileCmd, "노*연 250,000원")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "name_match"`)

	out, err = runCmd(t, runsCmd, "")
	require.NoError(t, err)
	assert.NotContains(t, out, "text")
}

func TestConfirmCmd_InvalidSeq(t *testing.T) {
	cfg = testConfig(t)
	_, err := runCmd(t, confirmCmd, "", "run", "x")
	assert.Error(t, err)
}
