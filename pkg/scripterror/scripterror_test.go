package scripterror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CategoryConfig, "DELIMITER_EMPTY", "delimiter is empty")

	if err.Code != "DELIMITER_EMPTY" {
		t.Errorf("expected code DELIMITER_EMPTY, got %s", err.Code)
	}
	if err.Category != CategoryConfig {
		t.Errorf("expected CategoryConfig, got %d", err.Category)
	}
	if len(err.Stack) == 0 {
		t.Error("expected a captured stack")
	}
}

func TestErrorFormat(t *testing.T) {
	err := New(CategoryConfig, "DIALECT_UNKNOWN", "unknown dialect").
		WithDetail("db2").
		WithOperation("Lookup")

	msg := err.Error()
	for _, part := range []string{"[DIALECT_UNKNOWN]", "unknown dialect", "db2", "operation: Lookup"} {
		if !strings.Contains(msg, part) {
			t.Errorf("expected %q in %q", part, msg)
		}
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("open profile.yaml: no such file")
	err := Wrap(cause, "PROFILE_FILE_READ", "LoadFile")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match the cause with errors.Is")
	}
	if !strings.Contains(err.Error(), "caused by") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "X", "Y"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestWrapEnrichesExistingError(t *testing.T) {
	inner := New(CategoryConfig, "DELIMITER_EMPTY", "delimiter is empty")
	outer := Wrap(inner, "IGNORED", "NewDelimiter")

	if outer != inner {
		t.Error("expected the same error back")
	}
	if outer.Operation != "NewDelimiter" {
		t.Errorf("expected operation NewDelimiter, got %s", outer.Operation)
	}

	// A second wrap must not overwrite the recorded operation.
	again := Wrap(outer, "IGNORED", "Other")
	if again.Operation != "NewDelimiter" {
		t.Errorf("operation overwritten: %s", again.Operation)
	}
}

func TestFormatStack(t *testing.T) {
	err := New(CategoryInternal, "X", "boom")
	trace := err.FormatStack()
	if !strings.Contains(trace, "Stack trace:") {
		t.Errorf("unexpected trace: %q", trace)
	}

	empty := &Error{}
	if empty.FormatStack() != "" {
		t.Error("expected empty trace for error without stack")
	}
}
