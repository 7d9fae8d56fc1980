package game

import (
	"testing"

	"github.com/jason-s-yu/yaniv/internal/models"
	"github.com/stretchr/testify/require"
)

func card(rank, suit string) models.Card {
	return models.NewCard(rank, suit)
}

func ref(c models.Card) models.CardRef {
	return models.CardRef{Rank: c.Rank, Suit: c.Suit}
}

var joker = models.NewCard(models.RankJoker, models.SuitJoker)

// stacked returns a shuffler that moves front to the top of the deck in order
// and leaves every other card in construction order.
func stacked(front ...models.Card) Shuffler {
	return func(deck []models.Card) {
		skip := make(map[string]int, len(front))
		for _, c := range front {
			skip[c.Key()]++
		}
		out := append([]models.Card{}, front...)
		for _, c := range deck {
			if skip[c.Key()] > 0 {
				skip[c.Key()]--
				continue
			}
			out = append(out, c)
		}
		copy(deck, out)
	}
}

func noShuffle([]models.Card) {}

func hdr(room, player string) Header {
	return Header{RoomID: room, PlayerName: player}
}

// startedSession seats alice and bob in room r1 and deals with shuffle.
func startedSession(t *testing.T, shuffle Shuffler) *Session {
	t.Helper()
	s := NewSession("r1", DefaultRules(), shuffle)
	_, err := s.Apply(JoinRoom{hdr("r1", "alice")})
	require.NoError(t, err)
	_, err = s.Apply(JoinRoom{hdr("r1", "bob")})
	require.NoError(t, err)
	require.True(t, s.IsGameActive)
	return s
}

func eventTypes(out Outcome) []GameEventType {
	types := make([]GameEventType, len(out.Messages))
	for i, m := range out.Messages {
		types[i] = m.Event.Type
	}
	return types
}

// requireConserved checks that deck, hands and discard hold exactly the 54 cards.
func requireConserved(t *testing.T, s *Session) {
	t.Helper()
	counts := make(map[string]int)
	for _, c := range s.Deck {
		counts[c.Key()]++
	}
	for _, h := range s.Hands {
		for _, c := range h {
			counts[c.Key()]++
		}
	}
	for _, e := range s.Discard {
		counts[e.Card.Key()]++
	}
	want := make(map[string]int)
	for _, c := range NewDeck() {
		want[c.Key()]++
	}
	require.Equal(t, want, counts)
}
