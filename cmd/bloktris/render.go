package main

import (
	"fmt"
	"strings"

	"bloktris/internal/domain"
)

// renderBoard draws the board with one letter per seat color, followed by a
// per-seat legend of covered cells and score.
func renderBoard(m *domain.Match) string {
	var sb strings.Builder
	for y := 0; y < domain.BoardSize; y++ {
		for x := 0; x < domain.BoardSize; x++ {
			seat, ok := m.Board.At(x, y)
			if !ok {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(strings.ToUpper(string(domain.BaseColors[seat])[:1]))
		}
		sb.WriteByte('\n')
	}
	for _, p := range m.Players {
		fmt.Fprintf(&sb, "%s: %d cells, score %d\n", p.Color, m.Board.CountOwned(p.ID), p.Score)
	}
	return sb.String()
}

// renderShape draws an orientation matrix.
func renderShape(s domain.Shape) string {
	var sb strings.Builder
	for _, row := range s {
		for _, v := range row {
			if v != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
