package services_test

import (
	"context"
	"testing"

	"reelkit/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "session-42")
	ctx = services.WithCommand(ctx, "codecs")
	ctx = services.WithKind(ctx, "codecs")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "session-42" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if command, ok := services.CommandFromContext(ctx); !ok || command != "codecs" {
		t.Fatalf("unexpected command: %v %v", command, ok)
	}
	if kind, ok := services.KindFromContext(ctx); !ok || kind != "codecs" {
		t.Fatalf("unexpected kind: %v %v", kind, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithKind(ctx, "")
	ctx = services.WithSessionID(ctx, "")
	if _, ok := services.KindFromContext(ctx); ok {
		t.Fatal("expected no kind value")
	}
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session value")
	}
}
