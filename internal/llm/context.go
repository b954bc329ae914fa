package llm

import "context"

type purposeKey struct{}

// PurposeUnknown labels llm_requests rows made without a purpose.
const PurposeUnknown = "unknown"

// WithPurpose labels every LLM request made under ctx, e.g. "question-gen"
// for cache fills or "generate-once" for the debug endpoint.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// WithDefaultPurpose labels ctx unless a caller further up already did.
func WithDefaultPurpose(ctx context.Context, purpose string) context.Context {
	if _, ok := ctx.Value(purposeKey{}).(string); ok {
		return ctx
	}
	return WithPurpose(ctx, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
