package pagecache

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTempFileStore(t *testing.T, ttl time.Duration) *fileStore {
	t.Helper()
	store, err := newFileStore(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return store.(*fileStore)
}

func TestFileStoreSetGetDelete(t *testing.T) {
	store := newTempFileStore(t, 0)
	ctx := context.Background()

	body := []byte("Nyan\nGarfield\nFelix da House")
	if err := store.Set(ctx, "No Cats", body, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	body[0] = 'x'

	got, ok, err := store.Get(ctx, "No Cats")
	if err != nil || !ok || string(got) != "Nyan\nGarfield\nFelix da House" {
		t.Fatalf("unexpected get: ok=%v err=%v val=%q", ok, err, string(got))
	}

	if err := store.Delete(ctx, "No Cats"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, "No Cats"); err != nil || ok {
		t.Fatalf("expected missing after delete, ok=%v err=%v", ok, err)
	}
	if err := store.Delete(ctx, "No Cats"); err != nil {
		t.Fatalf("delete missing should not error: %v", err)
	}
}

func TestFileStoreTTLExpiry(t *testing.T) {
	store := newTempFileStore(t, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "ttl", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	if _, ok, err := store.Get(ctx, "ttl"); err != nil || ok {
		t.Fatalf("expected ttl to expire, ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(store.path("ttl")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected expired file removed")
	}
}

func TestFileStoreSetUsesDefaultTTLWhenZero(t *testing.T) {
	store := newTempFileStore(t, time.Minute)
	if err := store.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	data, err := os.ReadFile(store.path("k"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	expiresAt := int64(binary.BigEndian.Uint64(data[4:fileRecordHeaderLen]))
	if expiresAt <= time.Now().UnixNano() {
		t.Fatalf("expected future expiration")
	}
	if string(data[fileRecordHeaderLen:]) != "v" {
		t.Fatalf("unexpected body %q", data[fileRecordHeaderLen:])
	}
}

func TestFileStoreGetRemovesCorrupt(t *testing.T) {
	store := newTempFileStore(t, time.Minute)
	if err := os.WriteFile(store.path("bad"), []byte("not-a-record"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	if _, _, err := store.Get(context.Background(), "bad"); !errors.Is(err, ErrCorruptFileRecord) {
		t.Fatalf("expected corrupt record error, got %v", err)
	}
	if _, err := os.Stat(store.path("bad")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected corrupt file removed")
	}
}

func TestFileStoreFlushKeepsForeignFiles(t *testing.T) {
	store := newTempFileStore(t, time.Minute)
	ctx := context.Background()

	foreign := filepath.Join(store.dir, "README")
	if err := os.WriteFile(foreign, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write foreign: %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if err := store.Set(ctx, key, []byte(key), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, "a"); err != nil || ok {
		t.Fatalf("expected flushed key missing")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("expected foreign file to survive flush: %v", err)
	}
}

func TestFileStoreFlushMissingDir(t *testing.T) {
	store := &fileStore{dir: filepath.Join(t.TempDir(), "missing-dir"), defaultTTL: time.Minute}
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("flush missing dir should not error: %v", err)
	}
}

func TestFileStoreSetWriteError(t *testing.T) {
	store := newTempFileStore(t, time.Second)

	orig := createTempFile
	createTempFile = func(dir, pattern string) (*os.File, error) {
		f, err := os.CreateTemp(dir, pattern)
		if err != nil {
			return nil, err
		}
		_ = f.Close()
		return f, nil
	}
	defer func() { createTempFile = orig }()

	if err := store.Set(context.Background(), "k", []byte("v"), time.Second); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestFileStoreSetRenameErrorCleansTemp(t *testing.T) {
	store := newTempFileStore(t, time.Second)

	orig := renameFile
	renameFile = func(_, _ string) error { return errors.New("rename boom") }
	defer func() { renameFile = orig }()

	if err := store.Set(context.Background(), "k", []byte("v"), time.Second); err == nil {
		t.Fatalf("expected rename error")
	}
	entries, err := os.ReadDir(store.dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected temp file cleanup, found %d entries", len(entries))
	}
}

func TestNewFileStoreDefaultsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "pages")
	store, err := newFileStore(dir, 0)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if store.(*fileStore).defaultTTL != defaultCacheTTL {
		t.Fatalf("expected default ttl")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected dir to be created: %v", err)
	}
}
