package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloktris/internal/codec"
	"bloktris/internal/domain"
)

type memStore struct {
	data    map[string][]byte
	saveErr error
	loadErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Save(_ context.Context, userID string, snapshot []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[userID] = append([]byte(nil), snapshot...)
	return nil
}

func (m *memStore) Load(_ context.Context, userID string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[userID], nil
}

func (m *memStore) Clear(_ context.Context, userID string) error {
	delete(m.data, userID)
	return nil
}

func (m *memStore) HasSaved(_ context.Context, userID string) (bool, error) {
	if m.loadErr != nil {
		return false, m.loadErr
	}
	_, ok := m.data[userID]
	return ok, nil
}

func newTestService(store *memStore) *Service {
	logger := zerolog.Nop()
	return NewService(store, &logger, rand.New(rand.NewSource(7)))
}

func eventKinds(evs []Event) []EventKind {
	out := make([]EventKind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func TestExecuteStartAndSave(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	m, evs, err := svc.Execute(ctx, "u1", domain.Start{HumanCount: SoloHumans, Seed: "T1", MatchID: "20240101-AAAA"})
	require.NoError(t, err)
	assert.True(t, m.Started())
	assert.Equal(t, []EventKind{EventMatchStarted}, eventKinds(evs))
	assert.True(t, svc.HasSaved(ctx, "u1"))

	loaded, err := svc.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "20240101-AAAA", loaded.Meta.MatchID)
	assert.True(t, loaded.Meta.Hydrated)
}

func TestExecuteWithoutSave(t *testing.T) {
	svc := newTestService(newMemStore())
	_, _, err := svc.Execute(context.Background(), "u1", domain.HumanRoll{})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestApplyRejectedKeepsState(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	m := domain.NewMatch()

	got, evs, err := svc.Apply(context.Background(), "u1", m, domain.Start{HumanCount: 3})
	assert.ErrorIs(t, err, ErrCommandRejected)
	assert.Same(t, m, got)
	assert.Empty(t, evs)
	assert.Zero(t, store.saves)
}

func TestSaveFailuresAreSilent(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	svc := newTestService(store)

	m, _, err := svc.Apply(context.Background(), "u1", nil, domain.Start{HumanCount: HotSeatHumans, Seed: "T1"})
	require.NoError(t, err)
	assert.True(t, m.Started())

	store.loadErr = errors.New("offline")
	_, err = svc.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.False(t, svc.HasSaved(context.Background(), "u1"))
}

func TestLoadRejectsCorruptSave(t *testing.T) {
	store := newMemStore()
	store.data["u1"] = []byte(`{"players":[1,2]}`)
	svc := newTestService(store)

	_, err := svc.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrRejectedSnapshot)

	store.data["u1"] = []byte(`not json`)
	_, err = svc.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrRejectedSnapshot)

	// A rejected save does not block a fresh start.
	m, _, err := svc.Execute(context.Background(), "u1", domain.Start{HumanCount: SoloHumans})
	require.NoError(t, err)
	assert.True(t, m.Started())
}

func TestRollEventsHotSeat(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	m, _, err := svc.Apply(ctx, "", nil, domain.Start{HumanCount: HotSeatHumans, Seed: "T1"})
	require.NoError(t, err)

	want := []int{2, 1, 6, 3}
	for i := 0; i < domain.SeatCount; i++ {
		var evs []Event
		m, evs, err = svc.Apply(ctx, "", m, domain.HumanRoll{})
		require.NoError(t, err)
		require.NotEmpty(t, evs)
		roll := evs[0].Payload.(RollRecordedPayload)
		assert.Equal(t, domain.Seat(i), roll.Seat)
		assert.Equal(t, want[i], roll.Value)
		if i < domain.SeatCount-1 {
			assert.Len(t, evs, 1)
		} else {
			assert.Equal(t, []EventKind{EventRollRecorded, EventOrderResolved}, eventKinds(evs))
			resolved := evs[1].Payload.(OrderResolvedPayload)
			assert.Equal(t, 6, resolved.Rolls[0].Value)
		}
	}
}

func TestBotDrivesSoloMatch(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	m, _, err := svc.Execute(ctx, "u1", domain.Start{HumanCount: SoloHumans, Seed: "seed-A"})
	require.NoError(t, err)

	_, err = svc.NextBotCommand(m)
	assert.ErrorIs(t, err, ErrNotBotTurn, "human has not rolled yet")

	m, _, err = svc.Execute(ctx, "u1", domain.HumanRoll{})
	require.NoError(t, err)
	require.Equal(t, []domain.Seat{1, 2, 3}, m.Meta.BotQueue)

	var resolved bool
	for len(m.Meta.BotQueue) > 0 {
		cmd, err := svc.NextBotCommand(m)
		require.NoError(t, err)
		require.Equal(t, domain.BotRoll{Seat: m.Meta.BotQueue[0]}, cmd)
		var evs []Event
		m, evs, err = svc.BotTurn(ctx, "u1", m)
		require.NoError(t, err)
		for _, ev := range evs {
			resolved = resolved || ev.Kind == EventOrderResolved
		}
	}
	assert.True(t, resolved)

	// seed-A solo: human 4 vs bots 4,6,3 -> seat 2 leads and is a bot.
	require.True(t, m.Players[0].IsBot)
	_, err = svc.NextBotCommand(m)
	assert.ErrorIs(t, err, ErrNotBotTurn, "reveal not dismissed")

	m, _, err = svc.Execute(ctx, "u1", domain.MarkRollShown{})
	require.NoError(t, err)

	m, evs, err := svc.BotTurn(ctx, "u1", m)
	require.NoError(t, err)
	require.Equal(t, EventPiecePlaced, evs[0].Kind)
	assert.Len(t, m.History, 1)

	saved, err := codec.Decode(store.data["u1"])
	require.NoError(t, err)
	assert.Len(t, saved.Match.History, 1)
}

func TestGameEndedEvent(t *testing.T) {
	svc := newTestService(nil)
	m := domain.NewMatch()
	m.Players = domain.BuildPlayers(HotSeatHumans)
	m.Meta.ShowedRollOnce = true
	for i := 1; i < domain.SeatCount; i++ {
		m.Players[i].Active = false
	}

	next, evs, err := svc.Apply(context.Background(), "", m, domain.Pass{Seat: 0})
	require.NoError(t, err)
	assert.True(t, next.Ended())
	assert.Equal(t, []EventKind{EventSeatPassed, EventGameEnded}, eventKinds(evs))
	ended := evs[1].Payload.(GameEndedPayload)
	assert.Equal(t, []domain.Seat{0, 1, 2, 3}, ended.Winners)
}

func TestClear(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()
	_, _, err := svc.Execute(ctx, "u1", domain.Start{HumanCount: SoloHumans})
	require.NoError(t, err)
	svc.Clear(ctx, "u1")
	assert.False(t, svc.HasSaved(ctx, "u1"))
}

func TestBotDelay(t *testing.T) {
	svc := newTestService(nil)
	for i := 0; i < 50; i++ {
		d := svc.BotDelay(600, 1100)
		assert.GreaterOrEqual(t, d.Milliseconds(), int64(600))
		assert.LessOrEqual(t, d.Milliseconds(), int64(1100))
	}
	assert.Equal(t, int64(5), svc.BotDelay(5, 5).Milliseconds())
}

func TestResumeAfterRestart(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	first := newTestService(store)
	_, _, err := first.Execute(ctx, "u1", domain.Start{HumanCount: SoloHumans, Seed: "T1"})
	require.NoError(t, err)

	// A new process sees the save through Hydrate: the roll phase is abandoned.
	second := newTestService(store)
	m, err := second.Current(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, m.Meta.Hydrated)
	assert.False(t, m.Meta.RollPending)

	_, _, err = second.Execute(ctx, "u1", domain.HumanRoll{})
	assert.ErrorIs(t, err, ErrCommandRejected)
}

func TestApplyRejectsStaleMatch(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	old, _, err := svc.Execute(ctx, "u1", domain.Start{HumanCount: SoloHumans, Seed: "A", MatchID: "20240101-OLD1"})
	require.NoError(t, err)
	forked, _, err := svc.Apply(ctx, "u1", old, domain.HumanRoll{})
	require.NoError(t, err)

	fresh, _, err := svc.Execute(ctx, "u1", domain.Start{HumanCount: HotSeatHumans, Seed: "B", MatchID: "20240101-NEW1"})
	require.NoError(t, err)

	cmd, err := svc.NextBotCommand(forked)
	require.NoError(t, err)
	got, evs, err := svc.Apply(ctx, "u1", forked, cmd)
	assert.ErrorIs(t, err, ErrStaleMatch)
	assert.Same(t, fresh, got)
	assert.Empty(t, evs)

	live, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, fresh, live)
	saved, err := codec.Decode(store.data["u1"])
	require.NoError(t, err)
	assert.Equal(t, "20240101-NEW1", saved.Match.Meta.MatchID)
}

func TestExecuteSerializesCommands(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()
	_, _, err := svc.Execute(ctx, "u1", domain.Start{HumanCount: HotSeatHumans, Seed: "T1"})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Execute(ctx, "u1", domain.HumanRoll{}); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.SeatCount, accepted, "each seat rolls exactly once")
	m, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, m.AwaitingRolls())
}
