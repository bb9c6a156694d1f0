package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNewLevel(t *testing.T) {
	l, err := NewWithOutput("debug", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.GetLevel() != "debug" {
		t.Errorf("level: got %q, want debug", l.GetLevel())
	}
}

func TestModuleField(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOutput("info", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Module("mqtt").Info("connected")

	out := buf.String()
	if !strings.Contains(out, "module=mqtt") {
		t.Errorf("missing module field in %q", out)
	}
	if !strings.Contains(out, "connected") {
		t.Errorf("missing message in %q", out)
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	null, hook := test.NewNullLogger()
	l := FromLogrus(null)

	l.With(Fields{"pin": 3}).Info("scoped")
	l.Info("unscoped")

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Data["pin"] != 3 {
		t.Errorf("scoped entry: got %v", entries[0].Data)
	}
	if _, ok := entries[1].Data["pin"]; ok {
		t.Error("unscoped entry should not carry pin field")
	}
	if entries[1].Level != logrus.InfoLevel {
		t.Errorf("level: got %v", entries[1].Level)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("dropped")
}
