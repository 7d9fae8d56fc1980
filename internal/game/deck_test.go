package game

import (
	"testing"

	"github.com/jason-s-yu/yaniv/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[string]int)
	jokers := 0
	for _, c := range deck {
		seen[c.Key()]++
		if c.IsJoker() {
			jokers++
			assert.Equal(t, 0, c.Value)
		}
	}
	assert.Equal(t, 2, jokers)
	assert.Len(t, seen, 53, "52 distinct standard cards plus one joker identity")
	for _, suit := range models.StandardSuits {
		for _, rank := range models.StandardRanks {
			assert.Equal(t, 1, seen[rank+"-"+suit], "%s%s", rank, suit)
		}
	}
}

func TestCreateDeckIsPermutation(t *testing.T) {
	want := make(map[string]int)
	for _, c := range NewDeck() {
		want[c.Key()]++
	}
	for i := 0; i < 20; i++ {
		got := make(map[string]int)
		for _, c := range CreateDeck(nil) {
			got[c.Key()]++
		}
		require.Equal(t, want, got)
	}
}

func TestDealCardsPartition(t *testing.T) {
	deck := NewDeck()
	d, err := DealCards(deck)
	require.NoError(t, err)

	assert.Equal(t, deck[:5], d.Player1)
	assert.Equal(t, deck[5:10], d.Player2)
	require.Len(t, d.Deck, 43)
	assert.Equal(t, deck[10:53], d.Deck)
	require.Len(t, d.Discard, 1)
	assert.Equal(t, deck[53], d.Discard[0].Card)
	assert.Empty(t, d.Discard[0].By)
}

func TestDealCardsTooSmall(t *testing.T) {
	_, err := DealCards(NewDeck()[:10])
	assert.Error(t, err)
}

func TestDealCardsDoesNotAliasInput(t *testing.T) {
	deck := NewDeck()
	d, err := DealCards(deck)
	require.NoError(t, err)
	d.Player1[0] = joker
	assert.Equal(t, models.RankAce, deck[0].Rank)
}
