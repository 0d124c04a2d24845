package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCappedFileStartsOverPastLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	f, err := openCappedFile(path, 1)
	if err != nil {
		t.Fatalf("open capped file: %v", err)
	}
	defer f.Close()

	chunk := make([]byte, 400*1024)
	for i := 0; i < 3; i++ {
		if _, err := f.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1<<20 {
		t.Fatalf("expected log <= 1MB, got %d", info.Size())
	}
	if info.Size() != 400*1024 {
		t.Fatalf("expected file to hold only the last chunk, got %d bytes", info.Size())
	}
}

func TestCappedFileAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	if err := os.WriteFile(path, []byte("previous\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	f, err := openCappedFile(path, 1)
	if err != nil {
		t.Fatalf("open capped file: %v", err)
	}
	if _, err := f.Write([]byte("next\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(b) != "previous\nnext\n" {
		t.Fatalf("unexpected log contents %q", string(b))
	}
}
