// internal/game/session.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/yaniv/internal/models"
)

// MaxPlayers is the seat count of a Yaniv room.
const MaxPlayers = 2

// Session holds the authoritative state of one room. It is not safe for
// concurrent use; the Registry serialises access per room.
type Session struct {
	ID string

	Players   []string
	TurnIndex int
	Phase     Phase

	Hands                map[string][]models.Card
	Deck                 []models.Card
	Discard              []models.DiscardEntry
	LastDiscardsByPlayer map[string][]models.DiscardEntry

	IsGameActive bool
	Scores       map[string]int
	RematchVotes map[string]struct{}

	Rules   Rules
	Shuffle Shuffler

	// ActionIndex counts applied commands, for the action journal.
	ActionIndex int
}

// NewSession builds an empty room. A nil shuffler means RandomShuffle.
func NewSession(id string, rules Rules, shuffle Shuffler) *Session {
	if shuffle == nil {
		shuffle = RandomShuffle
	}
	return &Session{
		ID:                   id,
		Phase:                PhaseTurnStart,
		Hands:                make(map[string][]models.Card),
		LastDiscardsByPlayer: make(map[string][]models.DiscardEntry),
		Scores:               make(map[string]int),
		RematchVotes:         make(map[string]struct{}),
		Rules:                rules,
		Shuffle:              shuffle,
	}
}

// HasPlayer reports whether name is seated in the room.
func (s *Session) HasPlayer(name string) bool {
	return s.playerIndex(name) >= 0
}

func (s *Session) playerIndex(name string) int {
	for i, p := range s.Players {
		if p == name {
			return i
		}
	}
	return -1
}

// Empty reports whether every player has left.
func (s *Session) Empty() bool {
	return len(s.Players) == 0
}

// Playable reports whether the room has its full two players.
func (s *Session) Playable() bool {
	return len(s.Players) == MaxPlayers
}

// CurrentPlayer returns the turn holder, or "" when nobody is seated.
func (s *Session) CurrentPlayer() string {
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return ""
	}
	return s.Players[s.TurnIndex]
}

// opponentOf returns the first other seated player, or "".
func (s *Session) opponentOf(name string) string {
	for _, p := range s.Players {
		if p != name {
			return p
		}
	}
	return ""
}

// deal shuffles a fresh deck and starts a round with players[0] to move.
// Scores are kept; everything else about the round is reset, rematch votes included.
func (s *Session) deal() error {
	if !s.Playable() {
		return fmt.Errorf("deal in room %s: %w", s.ID, ErrNotEnoughPlayers)
	}
	d, err := DealCards(CreateDeck(s.Shuffle))
	if err != nil {
		return fmt.Errorf("deal in room %s: %w", s.ID, err)
	}
	p1, p2 := s.Players[0], s.Players[1]
	s.Hands = map[string][]models.Card{p1: d.Player1, p2: d.Player2}
	s.Deck = d.Deck
	s.Discard = d.Discard
	s.LastDiscardsByPlayer = make(map[string][]models.DiscardEntry)
	s.RematchVotes = make(map[string]struct{})
	s.TurnIndex = 0
	s.Phase = PhaseTurnStart
	s.IsGameActive = true
	return nil
}

// clearRound drops the board after a match is abandoned.
func (s *Session) clearRound() {
	for _, p := range s.Players {
		s.Hands[p] = nil
	}
	s.Deck = nil
	s.Discard = nil
	s.LastDiscardsByPlayer = make(map[string][]models.DiscardEntry)
	s.TurnIndex = 0
	s.Phase = PhaseTurnStart
	s.IsGameActive = false
}

// removePlayer drops every trace of a player from the room.
func (s *Session) removePlayer(name string) {
	idx := s.playerIndex(name)
	if idx < 0 {
		return
	}
	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	delete(s.Hands, name)
	delete(s.Scores, name)
	delete(s.RematchVotes, name)
	delete(s.LastDiscardsByPlayer, name)
	if s.TurnIndex >= len(s.Players) {
		s.TurnIndex = 0
	}
}
