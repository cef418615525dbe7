package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"bloktris/internal/domain"
)

const ticketIssuer = "bloktris"

// ReplayTicket describes a seeded deal that can be started again.
type ReplayTicket struct {
	MatchID string
	Seed    string
	Humans  int
}

// Start returns the command that replays the ticket's deal under a new match id.
func (t ReplayTicket) Start() domain.Start {
	return domain.Start{HumanCount: t.Humans, Seed: t.Seed}
}

// TicketFor describes m as a replay ticket.
func TicketFor(m *domain.Match) ReplayTicket {
	humans := 0
	for _, p := range m.Players {
		if !p.IsBot {
			humans++
		}
	}
	return ReplayTicket{MatchID: m.Meta.MatchID, Seed: m.Meta.RNGSeed, Humans: humans}
}

// TicketService signs and verifies replay tickets.
type TicketService struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketService(secret string, ttl time.Duration) *TicketService {
	return &TicketService{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs t as an HS256 token.
func (s *TicketService) Issue(t ReplayTicket) (string, error) {
	if s == nil || s.secret == "" {
		return "", fmt.Errorf("ticket service is not configured")
	}
	if t.Seed == "" {
		return "", fmt.Errorf("seed is required")
	}
	if t.Humans != SoloHumans && t.Humans != HotSeatHumans {
		return "", fmt.Errorf("unsupported human count: %d", t.Humans)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":      ticketIssuer,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
		"seed":     t.Seed,
		"humans":   t.Humans,
		"match_id": t.MatchID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Parse verifies a token and returns its ticket.
func (s *TicketService) Parse(raw string) (ReplayTicket, error) {
	if s == nil || s.secret == "" {
		return ReplayTicket{}, fmt.Errorf("ticket service is not configured")
	}
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return ReplayTicket{}, fmt.Errorf("%w: %v", ErrBadTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid || !claims.VerifyIssuer(ticketIssuer, true) {
		return ReplayTicket{}, ErrBadTicket
	}

	seed, _ := claims["seed"].(string)
	humans, _ := claims["humans"].(float64)
	matchID, _ := claims["match_id"].(string)
	if seed == "" {
		return ReplayTicket{}, fmt.Errorf("%w: missing seed", ErrBadTicket)
	}
	return ReplayTicket{MatchID: matchID, Seed: seed, Humans: int(humans)}, nil
}
