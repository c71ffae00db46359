package logger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Fatalf("empty ctx request id = %q", got)
	}
	if got := RequestSeq(ctx); got != 0 {
		t.Fatalf("empty ctx request seq = %d", got)
	}

	ctx = WithRequest(ctx, "abc")
	ctx = WithRequestSeq(ctx, 42)
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("request id = %q", got)
	}
	if got := RequestSeq(ctx); got != 42 {
		t.Fatalf("request seq = %d", got)
	}
}

func TestNamedAndC(t *testing.T) {
	// must not panic and must return usable loggers
	if Named("") == nil || Named("x") == nil {
		t.Fatalf("Named returned nil")
	}
	if C(WithRequest(context.Background(), "r1")) == nil {
		t.Fatalf("C returned nil")
	}
}
