// internal/game/deck.go
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jason-s-yu/yaniv/internal/models"
)

const (
	// DeckSize is the number of cards in a Yaniv deck: 52 standard cards plus two jokers.
	DeckSize = 54
	// HandSize is the number of cards dealt to each player.
	HandSize = 5
	// jokerCount is the number of indistinguishable jokers in the deck.
	jokerCount = 2
)

// Shuffler permutes a deck in place. Tests inject deterministic shufflers.
type Shuffler func(deck []models.Card)

// RandomShuffle is a uniform Fisher-Yates shuffle.
func RandomShuffle(deck []models.Card) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// NewDeck builds the 54-card deck in suit-major order without shuffling.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, suit := range models.StandardSuits {
		for _, rank := range models.StandardRanks {
			deck = append(deck, models.NewCard(rank, suit))
		}
	}
	for i := 0; i < jokerCount; i++ {
		deck = append(deck, models.NewCard(models.RankJoker, models.SuitJoker))
	}
	return deck
}

// CreateDeck returns a freshly shuffled 54-card deck.
func CreateDeck(shuffle Shuffler) []models.Card {
	deck := NewDeck()
	if shuffle == nil {
		shuffle = RandomShuffle
	}
	shuffle(deck)
	return deck
}

// Deal is the result of splitting a deck for a two-player round.
type Deal struct {
	Player1 []models.Card
	Player2 []models.Card
	Deck    []models.Card
	Discard []models.DiscardEntry
}

// DealCards gives the first five cards to player one, the next five to player two,
// and seeds the discard pile with the last card of the remainder.
func DealCards(deck []models.Card) (Deal, error) {
	if len(deck) < 2*HandSize+1 {
		return Deal{}, fmt.Errorf("deal needs at least %d cards, have %d", 2*HandSize+1, len(deck))
	}
	remaining := append([]models.Card(nil), deck[2*HandSize:]...)
	seed := remaining[len(remaining)-1]
	remaining = remaining[:len(remaining)-1]

	return Deal{
		Player1: append([]models.Card(nil), deck[:HandSize]...),
		Player2: append([]models.Card(nil), deck[HandSize:2*HandSize]...),
		Deck:    remaining,
		Discard: []models.DiscardEntry{{Card: seed}},
	}, nil
}
