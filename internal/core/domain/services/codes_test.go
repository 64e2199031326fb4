package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"freight/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(codes ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func never(context.Context, string) (bool, error) { return false, nil }

func TestCodeGenerator_PickupCode(t *testing.T) {
	code, err := services.NewCodeGenerator().PickupCode(t.Context(), never)

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^PK-[2-9A-HJ-NP-Z]{6}$`), code)
}

func TestCodeGenerator_InvoiceNumber(t *testing.T) {
	number, err := services.NewCodeGenerator().InvoiceNumber(t.Context(), now, never)

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^INV-20260302-[2-9A-HJ-NP-Z]{6}$`), number)
}

func TestCodeGenerator_RetriesOnCollision(t *testing.T) {
	taken := map[string]bool{"PK-AAAAAA": true}
	gen := services.NewCodeGeneratorWithSource(sequence("AAAAAA", "BBBBBB"), 3)

	code, err := gen.PickupCode(t.Context(), func(_ context.Context, c string) (bool, error) {
		return taken[c], nil
	})

	require.NoError(t, err)
	assert.Equal(t, "PK-BBBBBB", code)
}

func TestCodeGenerator_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	gen := services.NewCodeGeneratorWithSource(sequence("AAAAAA"), 3)

	_, err := gen.PickupCode(t.Context(), func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})

	require.ErrorIs(t, err, services.ErrCodeSpaceExhausted)
	assert.Equal(t, 3, calls)
}

func TestCodeGenerator_PropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")

	_, err := services.NewCodeGenerator().PickupCode(t.Context(), func(context.Context, string) (bool, error) {
		return false, boom
	})

	require.ErrorIs(t, err, boom)
}
