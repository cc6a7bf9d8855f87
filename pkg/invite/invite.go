// Package invite generates short friend-invite codes. Uniqueness is probed
// through a caller-supplied check so the package stays storage-agnostic.
package invite

import (
	"context"
	"crypto/rand"

	apperrors "github.com/gyu5/Linkwallet/pkg/errors"
)

const (
	// CodeLength is the number of characters in a generated code.
	CodeLength = 8

	// MaxAttempts bounds the random search for an unused code. After that
	// the generator fails closed instead of silently reusing a code.
	MaxAttempts = 20

	// alphabet omits 0/O and 1/I to keep codes readable over chat.
	alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// ExistsFunc reports whether a code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generate returns a code that the exists probe reported as free, retrying
// up to MaxAttempts times. A probe error aborts immediately; exhausting the
// attempts returns ErrInviteCodeExhausted.
func Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperrors.WrapInviteCodeExhausted(MaxAttempts)
}

func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
