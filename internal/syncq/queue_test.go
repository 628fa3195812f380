package syncq

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPushLoadSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CF_HOME", dir)

	got, err := Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty queue, got %d", len(got))
	}

	if err := Push(Command{Method: "POST", Path: "/v1/payday", IdempotencyKey: "a"}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := Push(Command{Method: "POST", Path: "/v1/flows", Body: map[string]any{"amount": float64(-50)}, IdempotencyKey: "b"}); err != nil {
		t.Fatalf("push: %v", err)
	}

	got, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].IdempotencyKey != "a" || got[1].Path != "/v1/flows" {
		t.Fatalf("unexpected queue: %+v", got)
	}
	if got[1].Body["amount"] != float64(-50) || got[0].QueuedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", got[1])
	}

	if err := Save(nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "queue.json")); !os.IsNotExist(err) {
		t.Fatalf("expected queue file to be removed, stat err=%v", err)
	}
}

func TestLoadRejectsCorruptQueue(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CF_HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, "queue.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for corrupt queue")
	}
}
