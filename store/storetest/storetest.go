// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package storetest holds the behavior every store.Store must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/store"
)

// Factory builds an empty store and a function that moves its clock forward.
type Factory func(t *testing.T) (st store.Store, advance func(time.Duration))

func newSession(id string) *models.Session {
	five := models.CardFive
	return &models.Session{
		ID:        id,
		CreatedAt: time.Now().UnixMilli(),
		CreatorID: "creator",
		Participants: map[string]*models.Participant{
			"creator": {ID: "creator", Nickname: "Alice", Vote: &five, JoinedAt: 1},
			"p2":      {ID: "p2", Nickname: "Bob", JoinedAt: 2},
		},
	}
}

// Run exercises the store.Store contract.
func Run(t *testing.T, factory Factory) {
	t.Run("create and get", func(t *testing.T) {
		st, _ := factory(t)
		ctx := context.Background()

		s := newSession("create-get")
		require.NoError(t, st.Put(ctx, s, time.Hour))
		assert.Equal(t, int64(1), s.Version)

		got, err := st.Get(ctx, "create-get")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Version)
		assert.Equal(t, "creator", got.CreatorID)
		require.Len(t, got.Participants, 2)
		require.NotNil(t, got.Participants["creator"].Vote)
		assert.Equal(t, models.CardFive, *got.Participants["creator"].Vote)
		assert.Nil(t, got.Participants["p2"].Vote)
	})

	t.Run("get unknown", func(t *testing.T) {
		st, _ := factory(t)
		_, err := st.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("round trips history", func(t *testing.T) {
		st, _ := factory(t)
		ctx := context.Background()

		s := newSession("history")
		s.Revealed = true
		s.VoteHistory = []models.RoundHistory{{
			RoundNumber: 1,
			RevealedAt:  12345,
			Votes: []models.VoteRecord{
				{ParticipantID: "creator", Nickname: "Alice", Vote: models.CardCoffee},
			},
		}}
		require.NoError(t, st.Put(ctx, s, time.Hour))

		got, err := st.Get(ctx, "history")
		require.NoError(t, err)
		assert.True(t, got.Revealed)
		assert.Equal(t, s.VoteHistory, got.VoteHistory)
	})

	t.Run("create over live record conflicts", func(t *testing.T) {
		st, _ := factory(t)
		ctx := context.Background()

		require.NoError(t, st.Put(ctx, newSession("dup"), time.Hour))
		err := st.Put(ctx, newSession("dup"), time.Hour)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("update bumps version", func(t *testing.T) {
		st, _ := factory(t)
		ctx := context.Background()

		s := newSession("update")
		require.NoError(t, st.Put(ctx, s, time.Hour))

		got, err := st.Get(ctx, "update")
		require.NoError(t, err)
		got.Revealed = true
		require.NoError(t, st.Put(ctx, got, time.Hour))
		assert.Equal(t, int64(2), got.Version)

		again, err := st.Get(ctx, "update")
		require.NoError(t, err)
		assert.True(t, again.Revealed)
		assert.Equal(t, int64(2), again.Version)
	})

	t.Run("stale update conflicts", func(t *testing.T) {
		st, _ := factory(t)
		ctx := context.Background()

		require.NoError(t, st.Put(ctx, newSession("stale"), time.Hour))
		first, err := st.Get(ctx, "stale")
		require.NoError(t, err)
		second, err := st.Get(ctx, "stale")
		require.NoError(t, err)

		first.Revealed = true
		require.NoError(t, st.Put(ctx, first, time.Hour))

		second.Participants["p2"].Nickname = "Robert"
		assert.ErrorIs(t, st.Put(ctx, second, time.Hour), store.ErrConflict)

		got, err := st.Get(ctx, "stale")
		require.NoError(t, err)
		assert.True(t, got.Revealed)
		assert.Equal(t, "Bob", got.Participants["p2"].Nickname)
	})

	t.Run("update of missing record", func(t *testing.T) {
		st, _ := factory(t)
		s := newSession("ghost")
		s.Version = 3
		assert.ErrorIs(t, st.Put(context.Background(), s, time.Hour), store.ErrNotFound)
	})

	t.Run("expiry", func(t *testing.T) {
		st, advance := factory(t)
		ctx := context.Background()

		s := newSession("expiring")
		require.NoError(t, st.Put(ctx, s, time.Minute))

		advance(30 * time.Second)
		_, err := st.Get(ctx, "expiring")
		require.NoError(t, err)

		advance(31 * time.Second)
		_, err = st.Get(ctx, "expiring")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// an expired id can be created again
		assert.NoError(t, st.Put(ctx, newSession("expiring"), time.Minute))
	})

	t.Run("update after expiry", func(t *testing.T) {
		st, advance := factory(t)
		ctx := context.Background()

		require.NoError(t, st.Put(ctx, newSession("late"), time.Minute))
		got, err := st.Get(ctx, "late")
		require.NoError(t, err)

		advance(2 * time.Minute)
		assert.ErrorIs(t, st.Put(ctx, got, time.Minute), store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		st, _ := factory(t)
		ctx := context.Background()

		require.NoError(t, st.Put(ctx, newSession("gone"), time.Hour))
		require.NoError(t, st.Delete(ctx, "gone"))

		_, err := st.Get(ctx, "gone")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.NoError(t, st.Delete(ctx, "gone"), "deleting twice is not an error")
	})

	t.Run("concurrent updates", func(t *testing.T) {
		st, _ := factory(t)
		ctx := context.Background()

		require.NoError(t, st.Put(ctx, newSession("race"), time.Hour))

		const writers = 5
		reads := make([]*models.Session, writers)
		for i := range reads {
			s, err := st.Get(ctx, "race")
			require.NoError(t, err)
			reads[i] = s
		}

		var wins atomic.Int32
		var wg sync.WaitGroup
		for _, s := range reads {
			wg.Add(1)
			go func(s *models.Session) {
				defer wg.Done()
				err := st.Put(ctx, s, time.Hour)
				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, store.ErrConflict):
				default:
					t.Errorf("Put failed: %v", err)
				}
			}(s)
		}
		wg.Wait()

		// every writer read version 1, so exactly one may land
		assert.Equal(t, int32(1), wins.Load())
		got, err := st.Get(ctx, "race")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
	})
}
