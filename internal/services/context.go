package services

import "context"

// Scope identifies the document a pipeline pass is working on. Every field
// is optional; zero values are omitted from logs.
type Scope struct {
	ItemID    int64
	RequestID string
	Stage     string
}

type scopeKey struct{}

// ScopeFromContext returns the scope attached to ctx, if any.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(scopeKey{}).(Scope)
	return scope, ok
}

// WithScope replaces the scope on ctx.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

func updateScope(ctx context.Context, fn func(*Scope)) context.Context {
	scope, _ := ScopeFromContext(ctx)
	fn(&scope)
	return WithScope(ctx, scope)
}

// NewItemContext starts a scope for one pass over item id.
func NewItemContext(ctx context.Context, id int64, requestID string) context.Context {
	return WithScope(ctx, Scope{ItemID: id, RequestID: requestID})
}

// WithItemID sets the item id, keeping any stage or request id.
func WithItemID(ctx context.Context, id int64) context.Context {
	return updateScope(ctx, func(s *Scope) { s.ItemID = id })
}

// ItemIDFromContext extracts the item identifier if present.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	scope, ok := ScopeFromContext(ctx)
	return scope.ItemID, ok && scope.ItemID != 0
}

// WithStage records the pipeline stage. A blank stage leaves ctx unchanged.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return updateScope(ctx, func(s *Scope) { s.Stage = stage })
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	scope, ok := ScopeFromContext(ctx)
	return scope.Stage, ok && scope.Stage != ""
}

// WithRequestID sets the correlation id sent with outbound requests.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return updateScope(ctx, func(s *Scope) { s.RequestID = id })
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	scope, ok := ScopeFromContext(ctx)
	return scope.RequestID, ok && scope.RequestID != ""
}
