// internal/game/rules.go
package game

import "github.com/jason-s-yu/yaniv/internal/models"

// Rules holds the server-side options that change how strictly a round is sequenced.
type Rules struct {
	// EnforcePhases requires discard -> draw ordering within a turn and limits
	// declare_yaniv to the current player before they discard. When false only
	// the turn holder check applies to discard/draw, and any member may declare
	// while a match is active.
	EnforcePhases bool `json:"enforcePhases"`
}

// DefaultRules enables strict phase sequencing.
func DefaultRules() Rules {
	return Rules{EnforcePhases: true}
}

// YanivThreshold is the highest hand total that may legally declare Yaniv.
const YanivThreshold = 5

// IsValidDiscard reports whether cards form a legal discard batch: zero or one
// card, or any number of cards whose non-joker ranks are all identical.
func IsValidDiscard(cards []models.Card) bool {
	if len(cards) <= 1 {
		return true
	}
	rank := ""
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if rank == "" {
			rank = c.Rank
			continue
		}
		if c.Rank != rank {
			return false
		}
	}
	return true
}

// missingFromHand returns the submitted cards that the hand cannot cover,
// treating both as multisets keyed by (rank, suit).
func missingFromHand(hand, cards []models.Card) []models.Card {
	held := make(map[string]int, len(hand))
	for _, c := range hand {
		held[c.Key()]++
	}
	var missing []models.Card
	for _, c := range cards {
		if held[c.Key()] == 0 {
			missing = append(missing, c)
			continue
		}
		held[c.Key()]--
	}
	return missing
}

// removeFromHand removes one hand card per submitted card. Callers check membership first.
func removeFromHand(hand, cards []models.Card) []models.Card {
	remove := make(map[string]int, len(cards))
	for _, c := range cards {
		remove[c.Key()]++
	}
	out := make([]models.Card, 0, len(hand))
	for _, c := range hand {
		if remove[c.Key()] > 0 {
			remove[c.Key()]--
			continue
		}
		out = append(out, c)
	}
	return out
}

// HandTotal sums the point values of a hand.
func HandTotal(hand []models.Card) int {
	total := 0
	for _, c := range hand {
		total += c.Value
	}
	return total
}
