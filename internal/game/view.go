// internal/game/view.go
package game

import "github.com/jason-s-yu/yaniv/internal/models"

// handsFor projects every hand for viewer: the viewer's own cards in full and
// every other hand as a size only.
func (s *Session) handsFor(viewer string) map[string]HandView {
	hands := make(map[string]HandView, len(s.Players))
	for _, p := range s.Players {
		hand := s.Hands[p]
		if p == viewer {
			hands[p] = HandView{Cards: append([]models.Card{}, hand...), Size: len(hand)}
			continue
		}
		hands[p] = HandView{Size: len(hand), Hidden: true}
	}
	return hands
}

// StateFor builds the update_state payload as seen by viewer.
func (s *Session) StateFor(viewer string) StatePayload {
	last := make(map[string][]models.DiscardEntry, len(s.LastDiscardsByPlayer))
	for p, batch := range s.LastDiscardsByPlayer {
		last[p] = append([]models.DiscardEntry{}, batch...)
	}
	st := StatePayload{
		Deck:                 append([]models.Card{}, s.Deck...),
		Discard:              append([]models.DiscardEntry{}, s.Discard...),
		Hands:                s.handsFor(viewer),
		LastDiscardsByPlayer: last,
		Phase:                s.Phase,
		Active:               s.IsGameActive,
	}
	if s.IsGameActive {
		st.Turn = s.CurrentPlayer()
	}
	return st
}

// dealFor builds the start_game / rematch_ready payload as seen by viewer.
func (s *Session) dealFor(viewer string) DealPayload {
	return DealPayload{
		Turn:    s.CurrentPlayer(),
		Hands:   s.handsFor(viewer),
		Deck:    append([]models.Card{}, s.Deck...),
		Discard: append([]models.DiscardEntry{}, s.Discard...),
	}
}

// stateUpdates returns one update_state envelope per seated player.
func (s *Session) stateUpdates() []Envelope {
	out := make([]Envelope, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, toPlayer(p, EventUpdateState, s.StateFor(p)))
	}
	return out
}

// dealAnnouncements returns one projected deal envelope per seated player.
func (s *Session) dealAnnouncements(t GameEventType) []Envelope {
	out := make([]Envelope, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, toPlayer(p, t, s.dealFor(p)))
	}
	return out
}
