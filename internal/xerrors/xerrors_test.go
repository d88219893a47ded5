package xerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesWrappedKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", IO("ChartTail.Run", errors.New("boom")))
	if !Is(err, KindIO) {
		t.Fatalf("expected Is to see through fmt.Errorf wrapping")
	}
	if Is(err, KindConfig) {
		t.Fatalf("expected Is to reject the wrong kind")
	}
}

func TestIsRejectsPlainErrors(t *testing.T) {
	if Is(errors.New("plain"), KindIO) {
		t.Fatalf("expected Is to reject a plain error with no Kind")
	}
}

func TestFatalOnlyConfigAndLogic(t *testing.T) {
	cases := []struct {
		err   *Error
		fatal bool
	}{
		{Config("x", nil), true},
		{Logic("x", nil), true},
		{IO("x", nil), false},
		{Parse("x", nil), false},
		{DataQuality("x", nil), false},
		{Timeout("x", nil), false},
	}
	for _, c := range cases {
		if got := Fatal(c.err); got != c.fatal {
			t.Fatalf("Fatal(%v) = %v, want %v", c.err.Kind, got, c.fatal)
		}
	}
}

func TestErrorStringIncludesOpKindAndCause(t *testing.T) {
	err := IO("ChartTail.Run", errors.New("disk full"))
	msg := err.Error()
	if msg != "ChartTail.Run: io_error: disk full" {
		t.Fatalf("unexpected error string: %q", msg)
	}
}

func TestErrorStringWithoutCause(t *testing.T) {
	err := Logic("snapshot.Build", nil)
	if msg := err.Error(); msg != "snapshot.Build: logic_error" {
		t.Fatalf("unexpected error string: %q", msg)
	}
}

func TestErrorIsMatchesOnKindNotIdentity(t *testing.T) {
	a := IO("op-a", errors.New("one"))
	b := IO("op-b", errors.New("two"))
	if !errors.Is(a, b) {
		t.Fatalf("expected two distinct *Error values of the same Kind to satisfy errors.Is")
	}
}

func TestKindStringNames(t *testing.T) {
	cases := map[Kind]string{
		KindConfig:      "config_error",
		KindIO:          "io_error",
		KindParse:       "parse_error",
		KindDataQuality: "data_quality_warning",
		KindTimeout:     "timeout_error",
		KindLogic:       "logic_error",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
