package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/python-discord/blurple/internal/format"
)

func TestFormatFilesWrite(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	formatter := format.New(format.WithSeed(3))
	var buf bytes.Buffer
	if err := formatFiles(context.Background(), formatter, []string{path}, true, &buf); err != nil {
		t.Fatalf("formatFiles: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !strings.HasPrefix(string(got), format.Header) {
		t.Errorf("file not rewritten: %q", got)
	}
	if buf.Len() != 0 {
		t.Errorf("write mode printed output: %q", buf.String())
	}
}

func TestFormatFilesStdoutOrder(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	if err := os.WriteFile(a, []byte("x = 1\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(b, []byte("y = 2\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	formatter := format.New(format.WithSeed(3))
	var buf bytes.Buffer
	if err := formatFiles(context.Background(), formatter, []string{a, b}, false, &buf); err != nil {
		t.Fatalf("formatFiles: %v", err)
	}

	out := buf.String()
	// The header contains neither identifier, so first occurrence tracks
	// which file's body printed first.
	if x, y := strings.Index(out, "x"), strings.Index(out, "y"); x < 0 || y < 0 || x > y {
		t.Errorf("results out of argument order: %q", out)
	}
}

func TestFormatFilesSyntaxError(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.py")
	if err := os.WriteFile(path, []byte("def broken(:\n    pass\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	formatter := format.New(format.WithSeed(3))
	err := formatFiles(context.Background(), formatter, []string{path}, false, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "bad.py") {
		t.Fatalf("expected error naming the file, got %v", err)
	}
}
