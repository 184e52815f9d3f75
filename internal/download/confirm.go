package download

import "context"

// Confirmer decides whether a download whose Content-Type is not an image
// should go ahead.
type Confirmer interface {
	Confirm(ctx context.Context, question string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(ctx context.Context, question string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, question string) bool {
	return f(ctx, question)
}

// Always answers every question with the same value.
func Always(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return answer })
}
