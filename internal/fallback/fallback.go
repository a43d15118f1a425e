// Package fallback runs alternatives in priority order and stops at the
// first one that succeeds.
package fallback

import (
	"context"
	"errors"
	"fmt"
)

var ErrExhausted = errors.New("all attempts failed")

// Attempt is one named alternative.
type Attempt struct {
	Name string
	Try  func(ctx context.Context) error
}

// First runs attempts in order and returns the name of the first one that
// returns nil. Failures of individual attempts are collected into the
// returned error, which wraps ErrExhausted when nothing succeeded. A done
// context stops the loop before the next attempt.
func First(ctx context.Context, attempts ...Attempt) (string, error) {
	var errs []error
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if attempt.Try == nil {
			continue
		}
		err := attempt.Try(ctx)
		if err == nil {
			return attempt.Name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", attempt.Name, err))
	}
	return "", errors.Join(append([]error{ErrExhausted}, errs...)...)
}
