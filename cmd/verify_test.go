package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/smooth5x5/internal/store"
)

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()

	var out, logs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs([]string{
		"verify",
		"--min", "16", "--max", "19",
		"--patterns", "spiral,random",
		"--workers", "2",
		"--data-dir", dir,
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		verifyDataDir = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("verify: %v\nlogs: %s", err, logs.String())
	}
	if !strings.Contains(out.String(), "18 cases, 0 failed") {
		t.Errorf("unexpected summary %q", out.String())
	}

	reportStore, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	infos, err := reportStore.ListReports()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Cases != 18 {
		t.Errorf("stored reports = %+v", infos)
	}
}
