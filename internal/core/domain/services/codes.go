package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// codeAlphabet leaves out 0/O and 1/I so codes survive being read over the phone.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	pickupCodeLength    = 6
	invoiceSuffixLength = 6
	defaultMaxAttempts  = 5
)

var ErrCodeSpaceExhausted = errors.New("could not mint a unique code")

// ExistsFunc reports whether a candidate code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeGenerator mints pickup codes (PK-XXXXXX) and invoice numbers
// (INV-YYYYMMDD-XXXXXX). Uniqueness is checked through the supplied predicate
// with a bounded number of attempts; the unique index in storage remains the
// final arbiter.
type CodeGenerator struct {
	random      func(n int) (string, error)
	maxAttempts int
}

func NewCodeGenerator() CodeGenerator {
	return CodeGenerator{random: randomCode, maxAttempts: defaultMaxAttempts}
}

// NewCodeGeneratorWithSource is used by tests to make the sequence of
// candidates predictable.
func NewCodeGeneratorWithSource(random func(n int) (string, error), maxAttempts int) CodeGenerator {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return CodeGenerator{random: random, maxAttempts: maxAttempts}
}

func (g CodeGenerator) PickupCode(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.mint(ctx, exists, func(suffix string) string {
		return "PK-" + suffix
	}, pickupCodeLength)
}

func (g CodeGenerator) InvoiceNumber(ctx context.Context, now time.Time, exists ExistsFunc) (string, error) {
	day := now.UTC().Format("20060102")
	return g.mint(ctx, exists, func(suffix string) string {
		return fmt.Sprintf("INV-%s-%s", day, suffix)
	}, invoiceSuffixLength)
}

func (g CodeGenerator) mint(ctx context.Context, exists ExistsFunc, format func(string) string, length int) (string, error) {
	for range g.maxAttempts {
		suffix, err := g.random(length)
		if err != nil {
			return "", err
		}
		candidate := format(suffix)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func randomCode(n int) (string, error) {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[idx.Int64()]
	}
	return string(out), nil
}
