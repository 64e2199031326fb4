package kernel_test

import (
	"encoding/json"
	"testing"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id1 := kernel.NewUUID()
	id2 := kernel.NewUUID()

	require.NoError(t, id1.Validate())
	assert.False(t, id1.IsZero())
	assert.False(t, id1.IsEqual(id2))
}

func TestParseUUID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		id, err := kernel.ParseUUID("550e8400-e29b-41d4-a716-446655440000")

		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := kernel.ParseUUID("load-42")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("nil uuid is rejected", func(t *testing.T) {
		_, err := kernel.ParseUUID(uuid.Nil.String())

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestUUIDFromBytes_RoundTrip(t *testing.T) {
	id := kernel.NewUUID()
	raw := id.Bytes()

	restored, err := kernel.UUIDFromBytes(raw[:])

	require.NoError(t, err)
	assert.True(t, id.IsEqual(restored))
}

func TestUUID_ZeroValueIsInvalid(t *testing.T) {
	var id kernel.UUID

	require.ErrorIs(t, id.Validate(), errs.ErrValueIsRequired)
}

func TestUUID_JSON(t *testing.T) {
	type payload struct {
		LoadID    kernel.UUID  `json:"loadId"`
		CarrierID *kernel.UUID `json:"carrierId"`
	}
	id := kernel.NewUUID()

	data, err := json.Marshal(payload{LoadID: id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"loadId":"`+id.String()+`","carrierId":null}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.IsEqual(decoded.LoadID))
	assert.Nil(t, decoded.CarrierID)

	require.Error(t, json.Unmarshal([]byte(`{"loadId":"nope"}`), &decoded))
}

func TestOptionalUUID(t *testing.T) {
	restored, err := kernel.OptionalUUID(nil)
	require.NoError(t, err)
	assert.Nil(t, restored)

	id := kernel.NewUUID()
	restored, err = kernel.OptionalUUID(kernel.RawUUID(&id))
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.True(t, id.IsEqual(*restored))
}
