package allocator

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"

	"shortlink/model"
	"shortlink/store"

	"github.com/rs/zerolog/log"
)

const (
	// Generated codes draw uniformly from the 62-symbol alphanumeric
	// alphabet. Custom codes additionally allow '-' and '_'.
	charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	customCodeMinLength = 3
	customCodeMaxLength = 20
)

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	// ErrCodeInvalid means the custom code violates the length or alphabet
	// contract.
	ErrCodeInvalid = errors.New("custom code must be 3-20 characters of letters, digits, hyphen or underscore")
	// ErrDuplicateCode means the custom code is already bound to another
	// mapping; the caller must pick a different one.
	ErrDuplicateCode = errors.New("custom code already exists")
	// ErrExhausted means random generation kept colliding past the retry
	// cap. That is an operational signal (alphabet or length
	// under-provisioned), not a transient condition.
	ErrExhausted = errors.New("failed to allocate a unique short code after maximum retries")
)

// Allocator hands out globally unique short codes. It only proposes codes;
// the store's insert-if-absent is the single operation that decides every
// uniqueness race, for custom and generated codes alike.
type Allocator struct {
	store      *store.Store
	codeLength int
	maxRetries int
}

func New(s *store.Store, codeLength, maxRetries int) *Allocator {
	if codeLength <= 0 {
		codeLength = 6
	}
	if maxRetries <= 0 {
		maxRetries = 10
	}
	return &Allocator{store: s, codeLength: codeLength, maxRetries: maxRetries}
}

// ValidateCustomCode checks the 3-20 length and [A-Za-z0-9_-] alphabet
// contract for caller-supplied codes.
func ValidateCustomCode(code string) error {
	if len(code) < customCodeMinLength || len(code) > customCodeMaxLength {
		return ErrCodeInvalid
	}
	if !customCodePattern.MatchString(code) {
		return ErrCodeInvalid
	}
	return nil
}

// Allocate binds mapping to a short code and durably reserves it. When
// customCode is non-empty it is validated and tried exactly once; otherwise
// random candidates are generated and inserted until one wins or the retry
// cap is hit. On success the returned code can never be handed to another
// mapping.
func (a *Allocator) Allocate(ctx context.Context, mapping model.LinkMapping, customCode string) (string, error) {
	if customCode != "" {
		if err := ValidateCustomCode(customCode); err != nil {
			return "", err
		}
		mapping.ShortCode = customCode
		inserted, err := a.store.InsertIfAbsent(ctx, mapping)
		if err != nil {
			return "", err
		}
		if !inserted {
			return "", ErrDuplicateCode
		}
		return customCode, nil
	}

	// Collision odds per attempt are negligible at the default length, but
	// the loop never assumes first-attempt success.
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		code, err := randomCode(a.codeLength)
		if err != nil {
			return "", err
		}

		mapping.ShortCode = code
		inserted, err := a.store.InsertIfAbsent(ctx, mapping)
		if err != nil {
			return "", err
		}
		if inserted {
			return code, nil
		}

		log.Warn().
			Str("short_code", code).
			Int("attempt", attempt+1).
			Msg("Collision detected, retrying")
	}

	return "", ErrExhausted
}

// randomCode generates a cryptographically secure random code
func randomCode(length int) (string, error) {
	result := make([]byte, length)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}
