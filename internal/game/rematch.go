// internal/game/rematch.go
package game

// requestRematch records actor's vote. Once every seated player has voted the
// room is re-dealt; scores carry over.
func (s *Session) requestRematch(actor string) (Outcome, error) {
	if err := s.requireMember(actor); err != nil {
		return Outcome{}, err
	}
	if s.IsGameActive {
		return Outcome{}, reject(RuleViolation, ErrGameActive, "the current match is still in progress")
	}
	if !s.Playable() {
		return Outcome{}, reject(RuleViolation, ErrNotEnoughPlayers, "a rematch needs two players in the room")
	}

	s.RematchVotes[actor] = struct{}{}
	if len(s.RematchVotes) < len(s.Players) {
		return Outcome{}, nil
	}

	if err := s.deal(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Messages: s.dealAnnouncements(EventRematchReady)}, nil
}
