package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloktris/internal/domain"
)

func playedMatch(t *testing.T) *domain.Match {
	t.Helper()
	m := domain.Reduce(nil, domain.Start{HumanCount: 4, Seed: "T1", MatchID: "20240101-ABCD"})
	for i := 0; i < domain.SeatCount; i++ {
		m = domain.Reduce(m, domain.HumanRoll{})
	}
	m = domain.Reduce(m, domain.MarkRollShown{})
	next := domain.Reduce(m, domain.Place{Seat: 0, PieceID: "P1", Shape: domain.Shape{{1}}, At: domain.Coord{X: 0, Y: 0}})
	require.NotSame(t, m, next, "opening placement should be accepted")
	return next
}

func TestEncodeShape(t *testing.T) {
	m := playedMatch(t)
	data, err := Encode(m)
	require.NoError(t, err)

	raw, err := Raw(data)
	require.NoError(t, err)
	obj := raw.(map[string]any)

	board := obj["board"].([]any)
	require.Len(t, board, domain.BoardSize)
	row := board[0].([]any)
	assert.Equal(t, float64(0), row[0])
	assert.Nil(t, row[1])
	assert.Nil(t, obj["winnerIds"])

	players := obj["players"].([]any)
	require.Len(t, players, domain.SeatCount)
	p0 := players[0].(map[string]any)
	assert.Equal(t, "blue", p0["color"])
	assert.Equal(t, true, p0["hasPlayed"])
	assert.Len(t, p0["remaining"], 20)

	meta := obj["meta"].(map[string]any)
	assert.Equal(t, "20240101-ABCD", meta["matchId"])
	assert.Equal(t, "T1", meta["rngSeed"])
	assert.True(t, strings.Contains(string(data), `"pieceId":"P1"`))
}

func TestDecodeRoundTrip(t *testing.T) {
	m := playedMatch(t)
	data, err := Encode(m)
	require.NoError(t, err)

	res, err := Decode(data)
	require.NoError(t, err)
	require.True(t, res.Valid(), res.Reason)

	got := res.Match
	assert.Equal(t, m.Board, got.Board)
	assert.Equal(t, m.Players, got.Players)
	assert.Equal(t, m.History, got.History)
	assert.Equal(t, m.Current, got.Current)
	assert.Nil(t, got.WinnerIDs)
	assert.Equal(t, m.Meta.MatchID, got.Meta.MatchID)
	assert.Equal(t, m.Meta.RNGSeed, got.Meta.RNGSeed)
	assert.Equal(t, m.Meta.Rolls, got.Meta.Rolls)
	assert.Equal(t, m.Meta.LastRoll, got.Meta.LastRoll)
	assert.True(t, got.Meta.Hydrated)
	assert.True(t, got.Meta.ShowedRollOnce)
	assert.False(t, got.Meta.RollPending)
}

func TestDecodeKeepsTieBreaks(t *testing.T) {
	m := domain.NewMatch()
	m.Players = domain.BuildPlayers(1)
	m.Meta.TieBreaks = map[domain.Seat]domain.TieBreak{0: {From: 4, To: 5}, 1: {From: 4, To: 2}}
	data, err := Encode(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tieBreaks":{`)

	res, err := Decode(data)
	require.NoError(t, err)
	require.True(t, res.Valid())
	assert.Equal(t, m.Meta.TieBreaks, res.Match.Meta.TieBreaks)
	assert.True(t, res.Match.Players[1].IsBot)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)

	res, err := Decode([]byte(`{"players":[]}`))
	require.NoError(t, err)
	assert.False(t, res.Valid())
	assert.NotEmpty(t, res.Reason)

	_, err = Encode(nil)
	assert.Error(t, err)
}

func TestToMap(t *testing.T) {
	out, err := ToMap(playedMatch(t))
	require.NoError(t, err)
	assert.Contains(t, out, "board")
	assert.Contains(t, out, "meta")
	assert.Equal(t, float64(1), out["current"])
}
