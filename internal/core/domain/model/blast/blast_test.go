package blast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/domain/model/kernel"
)

func newTestBlast(t *testing.T, recipients int) (*Blast, []kernel.UUID, time.Time) {
	t.Helper()

	ids := make([]kernel.UUID, 0, recipients)
	for i := 0; i < recipients; i++ {
		ids = append(ids, kernel.NewUUID())
	}

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	b, err := NewBlast(kernel.NewUUID(), kernel.NewUUID(), ids, 15*time.Minute, now)
	require.NoError(t, err)

	return b, ids, now
}

func Test_NewBlast(t *testing.T) {
	t.Run("creates active blast with pending response per recipient", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 3)

		assert.Equal(t, Active, b.Status())
		assert.Equal(t, 3, b.RecipientCount())
		assert.Nil(t, b.AcceptedBy())
		assert.Equal(t, now.Add(15*time.Minute), b.ExpiresAt())

		for _, id := range ids {
			resp := b.ResponseFor(id)
			require.NotNil(t, resp)
			assert.Equal(t, ResponsePending, resp.Status())
			assert.Nil(t, resp.RespondedAt())
		}
	})

	t.Run("rejects empty recipient set", func(t *testing.T) {
		_, err := NewBlast(kernel.NewUUID(), kernel.NewUUID(), nil, 15*time.Minute, time.Now())
		assert.ErrorIs(t, err, ErrNoRecipients)
	})

	t.Run("rejects duplicate recipients", func(t *testing.T) {
		courier := kernel.NewUUID()
		_, err := NewBlast(kernel.NewUUID(), kernel.NewUUID(),
			[]kernel.UUID{courier, courier}, 15*time.Minute, time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects non positive window", func(t *testing.T) {
		_, err := NewBlast(kernel.NewUUID(), kernel.NewUUID(),
			[]kernel.UUID{kernel.NewUUID()}, 0, time.Now())
		assert.Error(t, err)
	})
}

func Test_Blast_Accept(t *testing.T) {
	t.Run("first interested courier wins", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 3)

		err := b.Accept(ids[1], now.Add(time.Minute))
		require.NoError(t, err)

		assert.Equal(t, Accepted, b.Status())
		require.NotNil(t, b.AcceptedBy())
		assert.True(t, b.AcceptedBy().IsEqual(ids[1]))

		assert.Equal(t, ResponseInterested, b.ResponseFor(ids[1]).Status())
		assert.Equal(t, ResponseExpired, b.ResponseFor(ids[0]).Status())
		assert.Equal(t, ResponseExpired, b.ResponseFor(ids[2]).Status())
	})

	t.Run("second interested courier is rejected", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 3)

		require.NoError(t, b.Accept(ids[0], now.Add(time.Minute)))

		err := b.Accept(ids[1], now.Add(2*time.Minute))
		assert.ErrorIs(t, err, ErrBlastResolved)

		assert.True(t, b.AcceptedBy().IsEqual(ids[0]))
	})

	t.Run("declined courier cannot accept afterwards", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 2)

		require.NoError(t, b.Decline(ids[0], now.Add(time.Minute)))

		err := b.Accept(ids[0], now.Add(2*time.Minute))
		assert.ErrorIs(t, err, ErrResponseResolved)
		assert.Equal(t, Active, b.Status())
	})

	t.Run("unknown courier is not found", func(t *testing.T) {
		b, _, now := newTestBlast(t, 2)

		err := b.Accept(kernel.NewUUID(), now.Add(time.Minute))
		assert.Error(t, err)
		assert.Equal(t, Active, b.Status())
	})
}

func Test_Blast_Decline(t *testing.T) {
	t.Run("decline keeps blast active", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 3)

		require.NoError(t, b.Decline(ids[0], now.Add(time.Minute)))
		require.NoError(t, b.Decline(ids[1], now.Add(time.Minute)))
		require.NoError(t, b.Decline(ids[2], now.Add(time.Minute)))

		assert.Equal(t, Active, b.Status())
		assert.Nil(t, b.AcceptedBy())
	})

	t.Run("decline after resolution is rejected", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 2)

		require.NoError(t, b.Accept(ids[0], now.Add(time.Minute)))

		err := b.Decline(ids[1], now.Add(2*time.Minute))
		assert.ErrorIs(t, err, ErrBlastResolved)
	})
}

func Test_Blast_MarkViewed(t *testing.T) {
	t.Run("pending becomes viewed, repeat view is a no-op", func(t *testing.T) {
		b, ids, _ := newTestBlast(t, 2)

		require.NoError(t, b.MarkViewed(ids[0]))
		assert.Equal(t, ResponseViewed, b.ResponseFor(ids[0]).Status())

		require.NoError(t, b.MarkViewed(ids[0]))
		assert.Equal(t, ResponseViewed, b.ResponseFor(ids[0]).Status())
	})

	t.Run("viewed courier can still accept", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 2)

		require.NoError(t, b.MarkViewed(ids[0]))
		require.NoError(t, b.Accept(ids[0], now.Add(time.Minute)))
		assert.Equal(t, Accepted, b.Status())
	})
}

func Test_Blast_Cancel(t *testing.T) {
	t.Run("cancel resolves blast and expires pending responses", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 2)

		changed, err := b.Cancel(now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, Cancelled, b.Status())
		assert.Equal(t, ResponseExpired, b.ResponseFor(ids[0]).Status())
		assert.Equal(t, ResponseExpired, b.ResponseFor(ids[1]).Status())
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		b, _, now := newTestBlast(t, 2)

		changed, err := b.Cancel(now.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, changed)

		changed, err = b.Cancel(now.Add(2 * time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, Cancelled, b.Status())
	})

	t.Run("cancel after acceptance changes nothing", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 2)

		require.NoError(t, b.Accept(ids[0], now.Add(time.Minute)))

		changed, err := b.Cancel(now.Add(2 * time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, Accepted, b.Status())
	})
}

func Test_Blast_Expire(t *testing.T) {
	t.Run("expire fires only past the window", func(t *testing.T) {
		b, _, now := newTestBlast(t, 2)

		changed, err := b.Expire(now.Add(5 * time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, Active, b.Status())

		changed, err = b.Expire(now.Add(16 * time.Minute))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, Expired, b.Status())
	})

	t.Run("expire is idempotent", func(t *testing.T) {
		b, _, now := newTestBlast(t, 2)

		changed, err := b.Expire(now.Add(20 * time.Minute))
		require.NoError(t, err)
		require.True(t, changed)

		changed, err = b.Expire(now.Add(21 * time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("expire skips resolved blast even past window", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 2)

		require.NoError(t, b.Accept(ids[0], now.Add(time.Minute)))

		changed, err := b.Expire(now.Add(20 * time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, Accepted, b.Status())
	})
}

func Test_RestoreBlast(t *testing.T) {
	t.Run("restores aggregate with responses", func(t *testing.T) {
		b, ids, now := newTestBlast(t, 2)
		require.NoError(t, b.Accept(ids[0], now.Add(time.Minute)))

		restored, err := RestoreBlast(
			b.ID(), b.LoadID(), b.Status(), b.Responses(), b.AcceptedBy(),
			b.CreatedAt(), b.ExpiresAt(),
		)
		require.NoError(t, err)

		assert.Equal(t, Accepted, restored.Status())
		assert.True(t, restored.AcceptedBy().IsEqual(ids[0]))
		assert.Equal(t, 2, restored.RecipientCount())
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		_, err := RestoreBlast(kernel.NewUUID(), kernel.NewUUID(), StatusUnknown,
			nil, nil, time.Now(), time.Now())
		assert.Error(t, err)
	})
}
