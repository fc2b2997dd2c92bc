package effectchain

import "context"

// canceled converts a done context into a KindCanceled error, or returns nil.
func canceled(ctx context.Context, stage string) *Error {
	err := ctx.Err()
	if err == nil {
		return nil
	}

	return &Error{Kind: KindCanceled, Stage: stage, Err: err}
}
