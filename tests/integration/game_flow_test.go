//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchState struct {
	Match *struct {
		Current int `json:"current"`
		History []struct {
			PieceID string `json:"pieceId"`
		} `json:"history"`
		Meta struct {
			MatchID     string `json:"matchId"`
			RollPending bool   `json:"rollPending"`
			BotQueue    []int  `json:"botQueue"`
		} `json:"meta"`
	} `json:"match"`
	Events   []map[string]any `json:"events"`
	HasSaved bool             `json:"has_saved"`
}

func rpcState(t *testing.T, c *TestClient, id string, payload any) matchState {
	t.Helper()
	out, err := c.Rpc(context.Background(), id, payload)
	require.NoError(t, err)
	var st matchState
	require.NoError(t, sonic.UnmarshalString(out, &st))
	return st
}

func TestHotSeatOpening(t *testing.T) {
	c := NewTestClient(t)

	st := rpcState(t, c, "bloktris_start", map[string]any{"humans": 4, "seed": "T1"})
	require.NotNil(t, st.Match)
	assert.True(t, st.Match.Meta.RollPending)

	for i := 0; i < 4; i++ {
		st = rpcState(t, c, "bloktris_human_roll", nil)
	}
	assert.False(t, st.Match.Meta.RollPending)

	rpcState(t, c, "bloktris_mark_roll_shown", nil)
	st = rpcState(t, c, "bloktris_place", map[string]any{
		"seat": 0, "piece_id": "P1", "shape": [][]int{{1}}, "x": 0, "y": 0,
	})
	require.Len(t, st.Match.History, 1)
	assert.Equal(t, 1, st.Match.Current)

	saved := rpcState(t, c, "bloktris_state", nil)
	assert.True(t, saved.HasSaved)
}

func TestSoloBotRolls(t *testing.T) {
	c := NewTestClient(t)

	rpcState(t, c, "bloktris_start", map[string]any{"humans": 1, "seed": "seed-A"})
	st := rpcState(t, c, "bloktris_human_roll", nil)
	require.Equal(t, []int{1, 2, 3}, st.Match.Meta.BotQueue)

	for _, seat := range []int{1, 2, 3} {
		st = rpcState(t, c, "bloktris_bot_roll", map[string]any{"seat": seat})
	}
	assert.Empty(t, st.Match.Meta.BotQueue)

	out, err := c.Rpc(context.Background(), "bloktris_replay_ticket", nil)
	if err != nil {
		t.Skipf("replay tickets disabled on server: %v", err)
	}
	assert.Contains(t, out, "ticket")
}
