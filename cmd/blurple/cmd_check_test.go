package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestCheckSourceValid(t *testing.T) {
	var buf bytes.Buffer
	if err := checkSource(context.Background(), "good.py", []byte("x = 1\n"), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "good.py") {
		t.Errorf("verdict line missing file name: %q", buf.String())
	}
}

func TestCheckSourceInvalid(t *testing.T) {
	var buf bytes.Buffer
	err := checkSource(context.Background(), "bad.py", []byte("def broken(:\n    pass\n"), &buf)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	out := buf.String()
	if !strings.Contains(out, "bad.py") || !strings.Contains(out, "invalid syntax") {
		t.Errorf("verdict line missing diagnostic: %q", out)
	}
}
