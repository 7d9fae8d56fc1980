// internal/models/discard.go
package models

// DiscardEntry is one card on the discard pile together with the player who put it there.
// By is empty for the card seeded by the deal.
type DiscardEntry struct {
	Card Card   `json:"card"`
	By   string `json:"by"`
}
