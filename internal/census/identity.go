package census

import "context"

// IdentityProvider resolves the subject answering the census. Returning
// false means anonymous: reads yield zero progress and writes fail with
// ErrNoSubject.
type IdentityProvider interface {
	SubjectID(ctx context.Context) (string, bool)
}

// StaticIdentity always answers with the same subject, as the CLI does.
type StaticIdentity string

// SubjectID implements IdentityProvider.
func (s StaticIdentity) SubjectID(context.Context) (string, bool) {
	return string(s), s != ""
}

type subjectKey struct{}

// WithSubject stores a subject id in ctx for ContextIdentity.
func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subjectID)
}

// ContextIdentity reads the subject stored by WithSubject.
type ContextIdentity struct{}

// SubjectID implements IdentityProvider.
func (ContextIdentity) SubjectID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectKey{}).(string)
	return id, ok && id != ""
}
