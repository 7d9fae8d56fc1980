// internal/models/card.go
package models

import "fmt"

// Ranks, in deck-construction order.
const (
	RankAce   = "A"
	RankJack  = "J"
	RankQueen = "Q"
	RankKing  = "K"
	RankJoker = "JOKER"
)

// Suits. Jokers carry SuitJoker so every card has a (rank, suit) identity.
const (
	SuitSpades   = "♠"
	SuitClubs    = "♣"
	SuitHearts   = "♥"
	SuitDiamonds = "♦"
	SuitJoker    = "🃏"
)

// StandardRanks lists the thirteen non-joker ranks.
var StandardRanks = []string{RankAce, "2", "3", "4", "5", "6", "7", "8", "9", "10", RankJack, RankQueen, RankKing}

// StandardSuits lists the four non-joker suits.
var StandardSuits = []string{SuitSpades, SuitClubs, SuitHearts, SuitDiamonds}

var rankValues = map[string]int{
	RankAce: 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	RankJack: 11, RankQueen: 12, RankKing: 13, RankJoker: 0,
}

// Card is an immutable playing card. Identity is (Rank, Suit); Value is derived from Rank.
type Card struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Value int    `json:"value"`
}

// NewCard builds a card with its value filled in from the rank.
func NewCard(rank, suit string) Card {
	v, _ := RankValue(rank)
	return Card{Rank: rank, Suit: suit, Value: v}
}

// RankValue returns the point value of a rank and whether the rank is known.
func RankValue(rank string) (int, bool) {
	v, ok := rankValues[rank]
	return v, ok
}

// IsJoker reports whether the card is a joker.
func (c Card) IsJoker() bool {
	return c.Rank == RankJoker
}

// Same reports whether two cards share the same (rank, suit) identity.
func (c Card) Same(o Card) bool {
	return c.Rank == o.Rank && c.Suit == o.Suit
}

// Key returns the identity of the card as a map key.
func (c Card) Key() string {
	return c.Rank + "-" + c.Suit
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// CardRef is a client-submitted card reference. Only rank and suit are trusted;
// any value the client sends is ignored.
type CardRef struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// Valid reports whether the reference names a card that exists in a Yaniv deck.
func (r CardRef) Valid() bool {
	if r.Rank == RankJoker {
		return r.Suit == SuitJoker
	}
	if _, ok := RankValue(r.Rank); !ok {
		return false
	}
	switch r.Suit {
	case SuitSpades, SuitClubs, SuitHearts, SuitDiamonds:
		return true
	}
	return false
}

// Card resolves the reference to a server-side card.
func (r CardRef) Card() Card {
	return NewCard(r.Rank, r.Suit)
}
