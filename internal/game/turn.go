// internal/game/turn.go
package game

// Phase is the server-held position within the current player's turn.
type Phase string

const (
	// PhaseTurnStart: the turn holder may declare Yaniv or discard.
	PhaseTurnStart Phase = "turn_start"
	// PhaseAwaitingDraw: the turn holder has discarded and must draw.
	PhaseAwaitingDraw Phase = "awaiting_draw"
)

// requireMember rejects commands from players not seated in the room.
func (s *Session) requireMember(actor string) error {
	if !s.HasPlayer(actor) {
		return reject(RuleViolation, ErrUnknownPlayer, "you are not a player in this room")
	}
	return nil
}

// requireTurn checks the match is live, that actor holds the turn, and, when
// phases are enforced, that the turn is in the wanted phase.
func (s *Session) requireTurn(actor string, want Phase) error {
	if err := s.requireMember(actor); err != nil {
		return err
	}
	if !s.IsGameActive {
		return reject(RuleViolation, ErrGameInactive, "no match is in progress")
	}
	if s.CurrentPlayer() != actor {
		return reject(RuleViolation, ErrNotYourTurn, "it is not your turn")
	}
	if s.Rules.EnforcePhases && s.Phase != want {
		switch want {
		case PhaseTurnStart:
			return reject(RuleViolation, ErrWrongPhase, "you have already discarded this turn; draw a card")
		default:
			return reject(RuleViolation, ErrWrongPhase, "discard before drawing")
		}
	}
	return nil
}

// passTurn hands the turn to the next seat and announces it to the room.
func (s *Session) passTurn() Envelope {
	s.TurnIndex = (s.TurnIndex + 1) % len(s.Players)
	s.Phase = PhaseTurnStart
	return toRoom(EventYourTurn, TurnPayload{Player: s.CurrentPlayer()})
}
