package domain

import (
	"fmt"
	"math"
	"unicode/utf16"
)

// Generator is a mulberry32 stream. Each instance owns its state.
type Generator struct {
	state uint32
}

// Mulberry32 returns a generator seeded with seed.
func Mulberry32(seed uint32) *Generator {
	return &Generator{state: seed}
}

// Next returns the next value in [0, 1).
func (g *Generator) Next() float64 {
	g.state += 0x6D2B79F5
	t := g.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296
}

// StrToSeed hashes s with 32-bit FNV-1a over its UTF-16 code units.
func StrToSeed(s string) uint32 {
	h := uint32(2166136261)
	for _, c := range utf16.Encode([]rune(s)) {
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}

// SeededDie returns a six-sided die driven by a generator seeded from key.
func SeededDie(key string) func() int {
	g := Mulberry32(StrToSeed(key))
	return func() int {
		return 1 + int(math.Floor(g.Next()*6))
	}
}

// Die salts keep human, bot and tie-break rolls on independent streams.
const (
	saltHuman    = "H"
	saltBot      = "B"
	saltTieBreak = "TB"
)

// HumanRollKey is the die key of a human seat's interactive roll.
func HumanRollKey(seed string, s Seat) string {
	return fmt.Sprintf("%s-%s-%d", seed, saltHuman, s)
}

// BotRollKey is the die key of an automated seat's roll.
func BotRollKey(seed string, s Seat) string {
	return fmt.Sprintf("%s-%s-%d", seed, saltBot, s)
}

// TieBreakKey is the die key of a re-roll during tie-break iteration iter.
func TieBreakKey(seed string, s Seat, iter int) string {
	return fmt.Sprintf("%s-%s-%d-%d", seed, saltTieBreak, s, iter)
}
