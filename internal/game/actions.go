// internal/game/actions.go
package game

import (
	"github.com/jason-s-yu/yaniv/internal/models"
)

// join seats actor if there is room. The second distinct player starts the match.
// Rejoining an occupied seat is idempotent and resends the opponent and board.
func (s *Session) join(actor string) (Outcome, error) {
	if s.HasPlayer(actor) {
		var out Outcome
		if opp := s.opponentOf(actor); opp != "" {
			out.Messages = append(out.Messages, toPlayer(actor, EventJoined, JoinedPayload{Opponent: opp}))
		}
		if s.IsGameActive {
			out.Messages = append(out.Messages, toPlayer(actor, EventUpdateState, s.StateFor(actor)))
		}
		return out, nil
	}
	if len(s.Players) >= MaxPlayers {
		return Outcome{}, reject(RuleViolation, ErrRoomFull, "this room already has two players")
	}

	s.Players = append(s.Players, actor)
	if _, ok := s.Scores[actor]; !ok {
		s.Scores[actor] = 0
	}

	if !s.Playable() || s.IsGameActive {
		return Outcome{}, nil
	}
	if err := s.deal(); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	for _, p := range s.Players {
		out.Messages = append(out.Messages, toPlayer(p, EventJoined, JoinedPayload{Opponent: s.opponentOf(p)}))
	}
	out.Messages = append(out.Messages, s.dealAnnouncements(EventStartGame)...)
	return out, nil
}

// discard moves a legal batch from actor's hand onto the discard pile and
// replaces actor's last-discard batch with it.
func (s *Session) discard(actor string, refs []models.CardRef) (Outcome, error) {
	if err := s.requireTurn(actor, PhaseTurnStart); err != nil {
		return Outcome{}, err
	}

	cards := make([]models.Card, len(refs))
	for i, r := range refs {
		cards[i] = r.Card()
	}
	if missing := missingFromHand(s.Hands[actor], cards); len(missing) > 0 {
		return Outcome{}, missingCardsError(missing)
	}
	if !IsValidDiscard(cards) {
		return Outcome{}, reject(RuleViolation, ErrMixedRanks, "when discarding several cards they must all share one rank (jokers excepted)")
	}

	s.Hands[actor] = removeFromHand(s.Hands[actor], cards)
	batch := make([]models.DiscardEntry, len(cards))
	for i, c := range cards {
		batch[i] = models.DiscardEntry{Card: c, By: actor}
	}
	s.Discard = append(s.Discard, batch...)
	s.LastDiscardsByPlayer[actor] = batch
	s.Phase = PhaseAwaitingDraw

	out := Outcome{Messages: s.stateUpdates()}
	out.Messages = append(out.Messages, toSender(EventDiscardComplete, emptyPayload{}))
	return out, nil
}

// drawFromDeck gives actor the front card of the deck and passes the turn.
func (s *Session) drawFromDeck(actor string) (Outcome, error) {
	if err := s.requireTurn(actor, PhaseAwaitingDraw); err != nil {
		return Outcome{}, err
	}
	if len(s.Deck) == 0 {
		return Outcome{}, reject(RuleViolation, ErrDeckEmpty, "the deck is empty")
	}

	card := s.Deck[0]
	s.Deck = s.Deck[1:]
	s.Hands[actor] = append(s.Hands[actor], card)
	return s.completeDraw(), nil
}

// drawFromDiscard takes the most recent discard-pile entry matching ref. Only
// that entry decides eligibility: it must not have been discarded by actor.
func (s *Session) drawFromDiscard(actor string, ref models.CardRef) (Outcome, error) {
	if err := s.requireTurn(actor, PhaseAwaitingDraw); err != nil {
		return Outcome{}, err
	}

	want := ref.Card()
	idx := -1
	for i := len(s.Discard) - 1; i >= 0; i-- {
		if s.Discard[i].Card.Same(want) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Outcome{}, reject(NotFound, ErrDiscardNotFound, "that card is not on the discard pile")
	}
	entry := s.Discard[idx]
	if entry.By == actor {
		return Outcome{}, reject(RuleViolation, ErrOwnDiscard, "you cannot take back a card you discarded")
	}

	s.Discard = append(s.Discard[:idx:idx], s.Discard[idx+1:]...)
	s.Hands[actor] = append(s.Hands[actor], entry.Card)
	return s.completeDraw(), nil
}

// completeDraw passes the turn and builds the post-draw notifications.
func (s *Session) completeDraw() Outcome {
	turn := s.passTurn()
	out := Outcome{Messages: s.stateUpdates()}
	out.Messages = append(out.Messages, toSender(EventDrawComplete, emptyPayload{}), turn)
	return out
}

// leave removes actor from the room. Leaving mid-match abandons the match.
func (s *Session) leave(actor string) (Outcome, error) {
	if err := s.requireMember(actor); err != nil {
		return Outcome{}, err
	}
	wasActive := s.IsGameActive
	s.removePlayer(actor)
	if wasActive {
		s.clearRound()
	}
	if s.Empty() {
		return Outcome{}, nil
	}

	var out Outcome
	for _, p := range s.Players {
		out.Messages = append(out.Messages, toPlayer(p, EventOpponentLeft, LeftPayload{Leaver: actor}))
	}
	out.Messages = append(out.Messages, s.stateUpdates()...)
	return out, nil
}
