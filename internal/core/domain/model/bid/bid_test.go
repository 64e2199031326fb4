package bid_test

import (
	"testing"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now   = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	admin = kernel.NewUUID()
)

func newPending(t *testing.T, amount float64) *bid.Bid {
	t.Helper()
	expires := now.Add(24 * time.Hour)
	b, err := bid.NewBid(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), nil, kernel.MustMoney(amount), " can load tomorrow ", &expires, now)
	require.NoError(t, err)
	return b
}

func TestNewBid(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		b := newPending(t, 1000)

		require.NoError(t, b.Validate())
		assert.Equal(t, bid.Pending, b.Status())
		assert.Equal(t, "can load tomorrow", b.Notes())
		assert.Nil(t, b.CounterAmount())
	})

	t.Run("zero amount is invalid", func(t *testing.T) {
		_, err := bid.NewBid(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), nil, kernel.MustMoney(0), "", nil, now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("missing ids are reported together", func(t *testing.T) {
		_, err := bid.NewBid(kernel.UUID{}, kernel.UUID{}, kernel.NewUUID(), nil, kernel.MustMoney(10), "", nil, now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestValidateTransition_Table(t *testing.T) {
	allowed := map[bid.Status][]bid.Status{
		bid.Pending:   {bid.Accepted, bid.Rejected, bid.Countered, bid.Expired},
		bid.Countered: {bid.Accepted, bid.Rejected, bid.Expired},
	}

	for _, from := range bid.AllStatuses() {
		for _, to := range bid.AllStatuses() {
			err := bid.ValidateTransition(from, to)
			legal := false
			for _, candidate := range allowed[from] {
				legal = legal || candidate == to
			}

			if legal {
				assert.NoError(t, err, "%s -> %s", from, to)
				continue
			}
			var denied *errs.TransitionDeniedError
			require.ErrorAs(t, err, &denied, "%s -> %s", from, to)
			assert.Equal(t, "bid", denied.Entity)
		}
	}
}

func TestBid_ResolveAcceptedAmount(t *testing.T) {
	t.Run("countered bid uses the counter amount", func(t *testing.T) {
		b := newPending(t, 1000)
		require.NoError(t, b.Counter(kernel.MustMoney(1200), admin, now))

		assert.Equal(t, "1200.00", b.ResolveAcceptedAmount(nil).String())
	})

	t.Run("explicit final price wins", func(t *testing.T) {
		b := newPending(t, 1000)
		require.NoError(t, b.Counter(kernel.MustMoney(1200), admin, now))
		final := kernel.MustMoney(1500)

		assert.Equal(t, "1500.00", b.ResolveAcceptedAmount(&final).String())
	})

	t.Run("pending bid uses its amount", func(t *testing.T) {
		b := newPending(t, 1000)

		assert.Equal(t, "1000.00", b.ResolveAcceptedAmount(nil).String())
	})
}

func TestBid_Accept(t *testing.T) {
	b := newPending(t, 1000)

	require.NoError(t, b.Accept(kernel.MustMoney(1000), admin, now))

	assert.Equal(t, bid.Accepted, b.Status())
	assert.Equal(t, "1000.00", b.AcceptedAmount().String())
	assert.True(t, b.DecidedBy().IsEqual(admin))
	require.ErrorIs(t, b.Reject("late", admin, now), errs.ErrTransitionDenied)
}

func TestBid_Reject(t *testing.T) {
	b := newPending(t, 1000)

	require.NoError(t, b.Reject(bid.AutoRejectReason, admin, now))

	assert.Equal(t, bid.Rejected, b.Status())
	assert.Equal(t, bid.AutoRejectReason, b.RejectionReason())
	require.ErrorIs(t, b.Accept(kernel.MustMoney(1000), admin, now), errs.ErrTransitionDenied)
}

func TestBid_Counter(t *testing.T) {
	b := newPending(t, 1000)

	require.ErrorIs(t, b.Counter(kernel.MustMoney(0), admin, now), errs.ErrValueIsInvalid)
	assert.Equal(t, bid.Pending, b.Status())

	require.NoError(t, b.Counter(kernel.MustMoney(1200), admin, now))
	require.ErrorIs(t, b.Counter(kernel.MustMoney(1300), admin, now), errs.ErrTransitionDenied)
	assert.Equal(t, "1200.00", b.CounterAmount().String())
}

func TestBid_Expire(t *testing.T) {
	b := newPending(t, 1000)

	assert.False(t, b.IsExpiredAt(now))
	assert.True(t, b.IsExpiredAt(now.Add(25*time.Hour)))

	require.NoError(t, b.Expire(now.Add(25*time.Hour)))
	assert.Equal(t, bid.Expired, b.Status())
	assert.False(t, b.IsExpiredAt(now.Add(48*time.Hour)))
}
