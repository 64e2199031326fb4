package kernel_test

import (
	"encoding/json"
	"testing"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		want    string
		wantErr error
	}{
		{name: "whole amount", amount: decimal.NewFromInt(1200), want: "1200.00"},
		{name: "rounded to cents", amount: decimal.RequireFromString("1150.005"), want: "1150.01"},
		{name: "zero", amount: decimal.Zero, want: "0.00"},
		{name: "negative", amount: decimal.NewFromInt(-1), wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := kernel.NewMoney(tc.amount)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, m.Validate())
			assert.Equal(t, tc.want, m.String())
		})
	}
}

func TestParseMoney(t *testing.T) {
	m, err := kernel.ParseMoney("999.5")
	require.NoError(t, err)
	assert.Equal(t, "999.50", m.String())

	_, err = kernel.ParseMoney("a lot")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestMoney_Compare(t *testing.T) {
	a := kernel.MustMoney(1000)
	b := kernel.MustMoney(1200)

	assert.True(t, b.GreaterThanOrEqual(a))
	assert.False(t, a.GreaterThanOrEqual(b))
	assert.True(t, a.Equal(kernel.MustMoney(1000.00)))

	margin, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, "200.00", margin.String())

	_, err = a.Sub(b)
	require.Error(t, err)
}

func TestMoney_ZeroValueIsNotConstructed(t *testing.T) {
	var m kernel.Money

	require.ErrorIs(t, m.Validate(), errs.ErrValueIsRequired)
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(kernel.MustMoney(1150))
	require.NoError(t, err)
	assert.JSONEq(t, `"1150.00"`, string(data))

	var m kernel.Money
	require.NoError(t, json.Unmarshal([]byte(`1500`), &m))
	assert.Equal(t, "1500.00", m.String())

	require.Error(t, json.Unmarshal([]byte(`-5`), &m))
}

func TestOptionalMoney(t *testing.T) {
	m, err := kernel.OptionalMoney(decimal.NullDecimal{})
	require.NoError(t, err)
	assert.Nil(t, m)

	price := kernel.MustMoney(800)
	m, err = kernel.OptionalMoney(kernel.NullDecimal(&price))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.Equal(price))
}
