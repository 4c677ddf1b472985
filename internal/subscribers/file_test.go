package subscribers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"marketbot/internal/config"
	"marketbot/internal/transport"
	"marketbot/pkg/logx"
)

func newFileStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(config.SubscribersConfig{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "subscribers.json"),
	}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestFileStoreAddIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newFileStore(t)

	for i := 0; i < 2; i++ {
		if err := st.Add(ctx, "42"); err != nil {
			t.Fatalf("Add #%d: %v", i+1, err)
		}
	}
	got, err := st.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []transport.Recipient{"42"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("membership mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreRemoveAbsentIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newFileStore(t)

	if err := st.Add(ctx, "1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := st.Remove(ctx, "nope"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	got, err := st.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if diff := cmp.Diff([]transport.Recipient{"1"}, got); diff != "" {
		t.Fatalf("membership mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreMissingFileIsEmptySet(t *testing.T) {
	t.Parallel()
	st := newFileStore(t)

	got, err := st.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := config.SubscribersConfig{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "subscribers.json"),
	}

	st, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, id := range []transport.Recipient{"1", "2", "3"} {
		if err := st.Add(ctx, id); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}
	if err := st.Remove(ctx, "2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	_ = st.Close()

	st2, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	got, err := st2.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll after reopen: %v", err)
	}
	want := []transport.Recipient{"1", "3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("membership mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreCorruptFileIsUnavailable(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "subscribers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := Open(config.SubscribersConfig{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	_, err = st.ListAll(context.Background())
	if !IsUnavailable(err) {
		t.Fatalf("ListAll error = %v, want ErrUnavailable", err)
	}
}
