package puzzle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	draft Draft
	err   error
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, target Difficulty) (Draft, error) {
	g.calls++
	if g.err != nil {
		return Draft{}, g.err
	}
	d := g.draft
	d.Difficulty = target
	return d, nil
}

func newTestService(t *testing.T, gen Generator, limit int) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	svc := NewService(store, store, store, gen, NewMemoryQuota(limit, func() time.Time { return now }), nil)
	svc.now = func() time.Time { return now }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
	return svc, store
}

func TestService_GenerateStoresUnapproved(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeGenerator{draft: validDraft()}, 3)

	p, st, err := svc.Generate(ctx, DifficultyTricky)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.False(t, p.Approved)
	assert.Equal(t, DifficultyTricky, p.Difficulty)
	assert.Equal(t, 2, st.Remaining)

	stored, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Words, stored.Words)

	logs, err := svc.Logs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "generate", logs[0].Action)
}

func TestService_GenerateRefundsOnFailure(t *testing.T) {
	ctx := context.Background()

	bad := validDraft()
	bad.Categories[0].Words[0] = "MAPLE" // now shared with the tree group

	cases := []struct {
		name string
		gen  *fakeGenerator
		want error
	}{
		{name: "generator error", gen: &fakeGenerator{err: ErrGeneration}, want: ErrGeneration},
		{name: "invalid draft", gen: &fakeGenerator{draft: bad}, want: ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService(t, tc.gen, 1)

			_, st, err := svc.Generate(ctx, "")
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, st.Remaining)

			total, _, _ := store.Counts(ctx)
			assert.Zero(t, total)
		})
	}
}

func TestService_GenerateQuotaExhausted(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{draft: validDraft()}
	svc, _ := newTestService(t, gen, 1)

	_, _, err := svc.Generate(ctx, "")
	require.NoError(t, err)

	_, st, err := svc.Generate(ctx, "")
	require.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, 0, st.Remaining)
	assert.Equal(t, 1, gen.calls)
}

func TestService_ApproveRejectAndDaily(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &SampleGenerator{}, 10)

	_, err := svc.Daily(ctx)
	require.ErrorIs(t, err, ErrNoneApproved)

	p1, err := svc.Admit(ctx, SampleDrafts()[0], false)
	require.NoError(t, err)
	p2, err := svc.Admit(ctx, SampleDrafts()[1], true)
	require.NoError(t, err)

	require.ErrorIs(t, svc.SetDaily(ctx, "2026-10-16", p1.ID), ErrNotApproved)
	require.ErrorIs(t, svc.SetDaily(ctx, "16/10/2026", p2.ID), ErrBadDate)
	require.ErrorIs(t, svc.SetDaily(ctx, "2026-10-16", "nope"), ErrNotFound)

	approved, err := svc.Approve(ctx, p1.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	require.NoError(t, svc.SetDaily(ctx, "2026-10-16", p1.ID))
	daily, err := svc.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, daily.ID)

	require.NoError(t, svc.Reject(ctx, p1.ID))
	_, err = svc.Get(ctx, p1.ID)
	require.True(t, errors.Is(err, ErrNotFound))

	// schedule entry went away with the puzzle; fall back to a random approved one
	daily, err = svc.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, p2.ID, daily.ID)

	logs, err := svc.Logs(ctx, 0)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []string{"reject", "set_daily", "approve"}, actions)

	total, approvedCount, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, approvedCount)
}

func TestService_AdmitRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t, &SampleGenerator{}, 1)
	d := validDraft()
	d.Words = d.Words[:15]
	_, err := svc.Admit(context.Background(), d, true)
	require.ErrorIs(t, err, ErrInvalid)
}
