package logging

import (
	"context"
	"log/slog"
	"slices"
)

// FieldSessionID keys the per-invocation identifier.
const FieldSessionID = "session_id"

// invocationHandler stamps every record with the session ID and with the
// command and kind carried by the record's context. Keys already bound via
// WithAttrs are not repeated.
type invocationHandler struct {
	base      slog.Handler
	sessionID string
	bound     []string
}

func newInvocationHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &invocationHandler{base: base, sessionID: sessionID}
}

func (h *invocationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *invocationHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	for _, field := range ContextFields(ctx) {
		if !slices.Contains(h.bound, field.Key) {
			record.AddAttrs(field)
		}
	}
	return h.base.Handle(ctx, record)
}

func (h *invocationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := slices.Clone(h.bound)
	for _, attr := range attrs {
		bound = append(bound, attr.Key)
	}
	return &invocationHandler{base: h.base.WithAttrs(attrs), sessionID: h.sessionID, bound: bound}
}

func (h *invocationHandler) WithGroup(name string) slog.Handler {
	return &invocationHandler{base: h.base.WithGroup(name), sessionID: h.sessionID, bound: h.bound}
}
