package ctxutil

import "context"

type traceDataKey struct{}

// TraceData identifies the request, and the pipeline run when one is in
// progress, for log correlation.
type TraceData struct {
	TraceID   string
	RequestID string
	RunID     string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// WithRunID returns a copy of ctx whose trace data carries runID. The
// caller's TraceData is not mutated.
func WithRunID(ctx context.Context, runID string) context.Context {
	td := TraceData{RunID: runID}
	if cur := GetTraceData(ctx); cur != nil {
		td.TraceID = cur.TraceID
		td.RequestID = cur.RequestID
	}
	return WithTraceData(ctx, &td)
}

// LogFields flattens the trace data into logger key/value pairs, skipping
// empty ids.
func LogFields(ctx context.Context) []any {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	var out []any
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	if td.RunID != "" {
		out = append(out, "run_id", td.RunID)
	}
	return out
}
