package main

import (
	"context"
	"strings"
	"testing"

	"cardpress/internal/runlog"
)

func TestQueueListShowsPairs(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewItem(ctx, "SET01", "Core Set", "English"); err != nil {
		t.Fatalf("core set: %v", err)
	}
	broken, err := env.store.NewItem(ctx, "SET02", "Shadows", "German")
	if err != nil {
		t.Fatalf("shadows: %v", err)
	}
	broken.SetFailed("renderer exited abnormally")
	if err := env.store.Update(ctx, broken); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Core Set")
	requireContains(t, out, "Shadows")
	requireContains(t, out, "renderer exited abnormally")

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list --status failed: %v", err)
	}
	requireContains(t, out, "Shadows")
	if strings.Contains(out, "Core Set") {
		t.Fatalf("filtered list should not include the pending pair:\n%s", out)
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewItem(ctx, "SET01", "Core Set", "English")
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	item.SetFailed("renderer exited abnormally")
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Queued 1 pair(s)")

	retried, err := env.store.FindPair(ctx, "SET01", "English")
	if err != nil {
		t.Fatalf("find pair: %v", err)
	}
	if retried.Status != runlog.StatusPending {
		t.Fatalf("status after retry = %s, want %s", retried.Status, runlog.StatusPending)
	}

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Removed 1 pair(s)")

	items, err := env.store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("ledger should be empty after clear, got %d items", len(items))
	}
}

func TestQueueListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "list", "--status", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown status to error")
	}
	requireContains(t, err.Error(), "unknown status")
}

func TestStatusEmptyLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "No pairs recorded yet")
}
