package audit

import (
	"context"
	"fmt"
	"log/slog"

	"farmgate/pkg/requestcontext"
)

// Emitter accepts audit events. Satisfied by *publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Log writes an audit event to both the structured logger and the emitter.
// Subject, decision and reason are lifted out of attrList by key.
func Log(ctx context.Context, logger *slog.Logger, emitter Emitter, event AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	args := append(attrList, "event", string(event), "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}

	if emitter == nil {
		return
	}
	err := emitter.Emit(ctx, Event{
		Subject:   extractSubject(attrList),
		Action:    string(event),
		Decision:  field(attrList, "decision"),
		Reason:    field(attrList, "reason"),
		RequestID: requestID,
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    field(attrList, "device"),
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func extractSubject(attrList []any) string {
	for _, key := range []string{"identity_uid", "temp_id", "phone"} {
		if val := field(attrList, key); val != "" {
			return val
		}
	}
	return ""
}

// field finds key in slog-style arguments: alternating key/value pairs, with
// slog.Attr values allowed in between. Non-text values read as "".
func field(args []any, key string) string {
	for i := 0; i < len(args); i++ {
		switch k := args[i].(type) {
		case slog.Attr:
			if k.Key == key {
				return k.Value.String()
			}
		case string:
			if i+1 == len(args) {
				return ""
			}
			i++
			if k != key {
				continue
			}
			switch v := args[i].(type) {
			case string:
				return v
			case fmt.Stringer:
				return v.String()
			}
			return ""
		}
	}
	return ""
}
