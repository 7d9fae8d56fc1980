package game

import (
	"encoding/json"
	"testing"

	"github.com/jason-s-yu/yaniv/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinDealsOnSecondPlayer(t *testing.T) {
	s := NewSession("r1", DefaultRules(), noShuffle)

	out, err := s.Apply(JoinRoom{hdr("r1", "alice")})
	require.NoError(t, err)
	assert.Empty(t, out.Messages)
	assert.False(t, s.IsGameActive)
	assert.Equal(t, 0, s.Scores["alice"])

	out, err = s.Apply(JoinRoom{hdr("r1", "bob")})
	require.NoError(t, err)
	assert.Equal(t, []GameEventType{EventJoined, EventJoined, EventStartGame, EventStartGame}, eventTypes(out))
	assert.Equal(t, JoinedPayload{Opponent: "bob"}, out.Messages[0].Event.Payload)
	assert.Equal(t, "alice", out.Messages[0].To.Player)
	assert.Equal(t, JoinedPayload{Opponent: "alice"}, out.Messages[1].Event.Payload)

	deal := out.Messages[2].Event.Payload.(DealPayload)
	assert.Equal(t, "alice", deal.Turn)
	assert.Len(t, deal.Hands["alice"].Cards, HandSize)
	assert.True(t, deal.Hands["bob"].Hidden)
	assert.Len(t, deal.Deck, 43)
	assert.Len(t, deal.Discard, 1)

	assert.True(t, s.IsGameActive)
	assert.Equal(t, "alice", s.CurrentPlayer())
	assert.Equal(t, PhaseTurnStart, s.Phase)
	requireConserved(t, s)
}

func TestJoinIsIdempotent(t *testing.T) {
	s := startedSession(t, noShuffle)
	hand := append([]models.Card{}, s.Hands["alice"]...)

	out, err := s.Apply(JoinRoom{hdr("r1", "alice")})
	require.NoError(t, err)
	assert.Equal(t, []GameEventType{EventJoined, EventUpdateState}, eventTypes(out))
	assert.Equal(t, hand, s.Hands["alice"], "rejoin must not re-deal")
	assert.Len(t, s.Players, 2)
}

func TestJoinRejectsThirdPlayer(t *testing.T) {
	s := startedSession(t, noShuffle)

	_, err := s.Apply(JoinRoom{hdr("r1", "carol")})
	require.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, []string{"alice", "bob"}, s.Players)

	out := Dispatch(s, JoinRoom{hdr("r1", "carol")})
	require.Len(t, out.Messages, 1)
	assert.Equal(t, ToSender, out.Messages[0].To.Kind)
	assert.Equal(t, EventInvalidAction, out.Messages[0].Event.Type)
}

func TestDiscardBatch(t *testing.T) {
	seven := []models.Card{card("7", models.SuitSpades), card("7", models.SuitHearts), joker}
	s := startedSession(t, stacked(append(seven,
		card("2", models.SuitClubs), card("3", models.SuitClubs),
		card("8", models.SuitClubs), card("9", models.SuitClubs), card("10", models.SuitClubs),
		card(models.RankJack, models.SuitClubs), card(models.RankQueen, models.SuitClubs))...))

	out, err := s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{ref(seven[0]), ref(seven[1]), ref(seven[2])}})
	require.NoError(t, err)

	assert.Equal(t, []GameEventType{EventUpdateState, EventUpdateState, EventDiscardComplete}, eventTypes(out))
	assert.Equal(t, ToSender, out.Messages[2].To.Kind)
	assert.Len(t, s.Hands["alice"], 2)
	assert.Equal(t, PhaseAwaitingDraw, s.Phase)

	require.Len(t, s.Discard, 4)
	for i, c := range seven {
		assert.Equal(t, models.DiscardEntry{Card: c, By: "alice"}, s.Discard[i+1])
	}
	assert.Len(t, s.LastDiscardsByPlayer["alice"], 3)
	requireConserved(t, s)

	_, err = s.Apply(DrawFromDeck{hdr("r1", "alice")})
	require.NoError(t, err)
	_, err = s.Apply(DiscardCards{hdr("r1", "bob"), []models.CardRef{{Rank: "8", Suit: models.SuitClubs}}})
	require.NoError(t, err)
	_, err = s.Apply(DrawFromDeck{hdr("r1", "bob")})
	require.NoError(t, err)

	// A second discard overwrites the previous batch.
	_, err = s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{{Rank: "2", Suit: models.SuitClubs}}})
	require.NoError(t, err)
	assert.Equal(t, []models.DiscardEntry{{Card: card("2", models.SuitClubs), By: "alice"}}, s.LastDiscardsByPlayer["alice"])
	assert.Len(t, s.LastDiscardsByPlayer["bob"], 1)
}

func TestDiscardRejections(t *testing.T) {
	// alice holds A-5 of spades, bob 6-10 of spades.
	s := startedSession(t, noShuffle)

	t.Run("not your turn", func(t *testing.T) {
		out := Dispatch(s, DiscardCards{hdr("r1", "bob"), []models.CardRef{{Rank: "6", Suit: models.SuitSpades}}})
		require.ErrorIs(t, out.Err, ErrNotYourTurn)
		assert.Equal(t, []GameEventType{EventInvalidDiscardDraw}, eventTypes(out))
	})

	t.Run("mixed ranks", func(t *testing.T) {
		out := Dispatch(s, DiscardCards{hdr("r1", "alice"), []models.CardRef{
			{Rank: "2", Suit: models.SuitSpades}, {Rank: "3", Suit: models.SuitSpades},
		}})
		require.ErrorIs(t, out.Err, ErrMixedRanks)
		assert.Equal(t, []GameEventType{EventInvalidDiscardDraw}, eventTypes(out))
	})

	t.Run("not held", func(t *testing.T) {
		out := Dispatch(s, DiscardCards{hdr("r1", "alice"), []models.CardRef{
			{Rank: "6", Suit: models.SuitSpades}, {Rank: "6", Suit: models.SuitHearts},
		}})
		require.ErrorIs(t, out.Err, ErrCardsNotHeld)
		var ae *ActionError
		require.ErrorAs(t, out.Err, &ae)
		assert.Equal(t, OwnershipViolation, ae.Kind)
		assert.Len(t, ae.Missing, 2)
		msg := out.Messages[0].Event.Payload.(MessagePayload).Message
		assert.Contains(t, msg, "6♠")
		assert.Contains(t, msg, "6♥")
	})

	t.Run("unknown card", func(t *testing.T) {
		out := Dispatch(s, DiscardCards{hdr("r1", "alice"), []models.CardRef{{Rank: "1", Suit: models.SuitSpades}}})
		var ae *ActionError
		require.ErrorAs(t, out.Err, &ae)
		assert.Equal(t, StructuralInvalid, ae.Kind)
	})

	t.Run("non member", func(t *testing.T) {
		out := Dispatch(s, DiscardCards{hdr("r1", "mallory"), nil})
		require.ErrorIs(t, out.Err, ErrUnknownPlayer)
	})

	assert.Len(t, s.Hands["alice"], HandSize)
	assert.Len(t, s.Discard, 1)
	assert.Equal(t, PhaseTurnStart, s.Phase)
	assert.Equal(t, 2, s.ActionIndex, "only the two joins were applied")
}

func TestPhaseOrdering(t *testing.T) {
	s := startedSession(t, noShuffle)

	_, err := s.Apply(DrawFromDeck{hdr("r1", "alice")})
	require.ErrorIs(t, err, ErrWrongPhase, "draw before discard")

	_, err = s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{{Rank: models.RankAce, Suit: models.SuitSpades}}})
	require.NoError(t, err)
	_, err = s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{{Rank: "2", Suit: models.SuitSpades}}})
	require.ErrorIs(t, err, ErrWrongPhase, "double discard")
}

func TestLenientPhasesAllowDrawWithoutDiscard(t *testing.T) {
	s := NewSession("r1", Rules{EnforcePhases: false}, noShuffle)
	_, _ = s.Apply(JoinRoom{hdr("r1", "alice")})
	_, _ = s.Apply(JoinRoom{hdr("r1", "bob")})

	_, err := s.Apply(DrawFromDeck{hdr("r1", "alice")})
	require.NoError(t, err)
	assert.Equal(t, "bob", s.CurrentPlayer())

	_, err = s.Apply(DrawFromDeck{hdr("r1", "alice")})
	require.ErrorIs(t, err, ErrNotYourTurn)
}

func TestDrawFromDeckPassesTurn(t *testing.T) {
	s := startedSession(t, noShuffle)
	top := s.Deck[0]

	_, err := s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{{Rank: models.RankAce, Suit: models.SuitSpades}}})
	require.NoError(t, err)
	out, err := s.Apply(DrawFromDeck{hdr("r1", "alice")})
	require.NoError(t, err)

	assert.Equal(t, []GameEventType{EventUpdateState, EventUpdateState, EventDrawComplete, EventYourTurn}, eventTypes(out))
	assert.Equal(t, TurnPayload{Player: "bob"}, out.Messages[3].Event.Payload)
	assert.Equal(t, ToRoom, out.Messages[3].To.Kind)

	assert.Equal(t, top, s.Hands["alice"][len(s.Hands["alice"])-1])
	assert.Len(t, s.Deck, 42)
	assert.Equal(t, "bob", s.CurrentPlayer())
	assert.Equal(t, PhaseTurnStart, s.Phase)
	requireConserved(t, s)
}

func TestDrawFromEmptyDeck(t *testing.T) {
	s := startedSession(t, noShuffle)
	_, err := s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{{Rank: models.RankAce, Suit: models.SuitSpades}}})
	require.NoError(t, err)
	s.Deck = nil

	out := Dispatch(s, DrawFromDeck{hdr("r1", "alice")})
	require.ErrorIs(t, out.Err, ErrDeckEmpty)
	assert.Equal(t, []GameEventType{EventInvalidAction}, eventTypes(out))
	assert.Equal(t, "alice", s.CurrentPlayer())
}

func TestDrawFromDiscardMostRecentMatchDecides(t *testing.T) {
	s := startedSession(t, stacked(
		joker, card("2", models.SuitSpades), card("3", models.SuitSpades), card("4", models.SuitSpades), card("5", models.SuitSpades),
		joker, card("7", models.SuitHearts), card("8", models.SuitHearts), card("9", models.SuitHearts), card("10", models.SuitHearts),
	))
	seed := s.Discard[0].Card
	jokerRef := ref(joker)

	_, err := s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{jokerRef}})
	require.NoError(t, err)
	_, err = s.Apply(DrawFromDeck{hdr("r1", "alice")})
	require.NoError(t, err)
	_, err = s.Apply(DiscardCards{hdr("r1", "bob"), []models.CardRef{jokerRef}})
	require.NoError(t, err)

	// Pile is [seed, JOKER by alice, JOKER by bob]. Only bob's, the most recent, counts.
	out := Dispatch(s, DrawFromDiscard{hdr("r1", "bob"), jokerRef})
	require.ErrorIs(t, out.Err, ErrOwnDiscard)
	assert.Equal(t, []GameEventType{EventInvalidDiscardDraw}, eventTypes(out))
	require.Len(t, s.Discard, 3)

	out = Dispatch(s, DrawFromDiscard{hdr("r1", "bob"), models.CardRef{Rank: "6", Suit: models.SuitDiamonds}})
	require.ErrorIs(t, out.Err, ErrDiscardNotFound)

	_, err = s.Apply(DrawFromDiscard{hdr("r1", "bob"), ref(seed)})
	require.NoError(t, err)
	assert.Equal(t, seed, s.Hands["bob"][len(s.Hands["bob"])-1])
	require.Len(t, s.Discard, 2)

	_, err = s.Apply(DiscardCards{hdr("r1", "alice"), []models.CardRef{{Rank: "2", Suit: models.SuitSpades}}})
	require.NoError(t, err)
	out, err = s.Apply(DrawFromDiscard{hdr("r1", "alice"), jokerRef})
	require.NoError(t, err)
	assert.Equal(t, EventYourTurn, out.Messages[len(out.Messages)-1].Event.Type)

	// bob's joker was removed; alice's earlier one stays.
	require.Len(t, s.Discard, 2)
	assert.Equal(t, models.DiscardEntry{Card: joker, By: "alice"}, s.Discard[0])
	assert.Equal(t, models.DiscardEntry{Card: card("2", models.SuitSpades), By: "alice"}, s.Discard[1])
	requireConserved(t, s)
}

func TestStateViewHidesOpponentHand(t *testing.T) {
	s := startedSession(t, noShuffle)

	raw, err := json.Marshal(s.StateFor("alice"))
	require.NoError(t, err)
	var decoded struct {
		Hands map[string]json.RawMessage `json:"hands"`
		Turn  string                     `json:"turn"`
		Phase string                     `json:"phase"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.JSONEq(t, "5", string(decoded.Hands["bob"]))
	var own []models.Card
	require.NoError(t, json.Unmarshal(decoded.Hands["alice"], &own))
	assert.Equal(t, s.Hands["alice"], own)
	assert.Equal(t, "alice", decoded.Turn)
	assert.Equal(t, string(PhaseTurnStart), decoded.Phase)

	for _, c := range s.Hands["bob"] {
		assert.NotContains(t, string(raw), `"rank":"`+c.Rank+`","suit":"`+c.Suit+`"`)
	}
}

func TestStateViewIsACopy(t *testing.T) {
	s := startedSession(t, noShuffle)
	st := s.StateFor("alice")
	st.Hands["alice"].Cards[0] = joker
	st.Deck[0] = joker
	assert.NotEqual(t, joker, s.Hands["alice"][0])
	assert.NotEqual(t, joker, s.Deck[0])
}

func TestRematch(t *testing.T) {
	s := startedSession(t, noShuffle)

	out := Dispatch(s, RequestRematch{hdr("r1", "alice")})
	require.ErrorIs(t, out.Err, ErrGameActive)

	_, err := s.Apply(DeclareYaniv{hdr("r1", "alice")})
	require.NoError(t, err)
	require.Equal(t, 1, s.Scores["bob"])

	out, err = s.Apply(RequestRematch{hdr("r1", "alice")})
	require.NoError(t, err)
	assert.Empty(t, out.Messages)
	out, err = s.Apply(RequestRematch{hdr("r1", "alice")})
	require.NoError(t, err)
	assert.Empty(t, out.Messages, "duplicate vote is a no-op")
	assert.False(t, s.IsGameActive)

	out, err = s.Apply(RequestRematch{hdr("r1", "bob")})
	require.NoError(t, err)
	assert.Equal(t, []GameEventType{EventRematchReady, EventRematchReady}, eventTypes(out))
	deal := out.Messages[1].Event.Payload.(DealPayload)
	assert.Equal(t, "alice", deal.Turn)
	assert.Len(t, deal.Hands["bob"].Cards, HandSize)

	assert.True(t, s.IsGameActive)
	assert.Empty(t, s.RematchVotes)
	assert.Empty(t, s.LastDiscardsByPlayer)
	assert.Equal(t, 0, s.TurnIndex)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 1}, s.Scores, "scores carry over")
	requireConserved(t, s)
}

func TestRematchVoteDroppedOnLeave(t *testing.T) {
	s := startedSession(t, noShuffle)
	_, err := s.Apply(DeclareYaniv{hdr("r1", "alice")})
	require.NoError(t, err)
	_, err = s.Apply(RequestRematch{hdr("r1", "bob")})
	require.NoError(t, err)

	_, err = s.Apply(LeaveRoom{hdr("r1", "bob")})
	require.NoError(t, err)
	assert.Empty(t, s.RematchVotes)

	out := Dispatch(s, RequestRematch{hdr("r1", "alice")})
	require.ErrorIs(t, out.Err, ErrNotEnoughPlayers)
}

func TestFreshDealClearsStaleRematchVotes(t *testing.T) {
	s := startedSession(t, noShuffle)
	_, err := s.Apply(DeclareYaniv{hdr("r1", "alice")})
	require.NoError(t, err)
	_, err = s.Apply(RequestRematch{hdr("r1", "alice")})
	require.NoError(t, err)

	_, err = s.Apply(LeaveRoom{hdr("r1", "bob")})
	require.NoError(t, err)
	out, err := s.Apply(JoinRoom{hdr("r1", "carol")})
	require.NoError(t, err)
	require.Contains(t, eventTypes(out), EventStartGame)
	assert.Empty(t, s.RematchVotes, "a new deal starts with no votes")

	_, err = s.Apply(DeclareYaniv{hdr("r1", "alice")})
	require.NoError(t, err)
	out, err = s.Apply(RequestRematch{hdr("r1", "carol")})
	require.NoError(t, err)
	assert.Empty(t, out.Messages, "one vote is not a quorum")
	assert.False(t, s.IsGameActive)

	out, err = s.Apply(RequestRematch{hdr("r1", "alice")})
	require.NoError(t, err)
	assert.Equal(t, []GameEventType{EventRematchReady, EventRematchReady}, eventTypes(out))
}

func TestLeaveMidMatch(t *testing.T) {
	s := startedSession(t, noShuffle)

	out, err := s.Apply(LeaveRoom{hdr("r1", "bob")})
	require.NoError(t, err)
	assert.Equal(t, []GameEventType{EventOpponentLeft, EventUpdateState}, eventTypes(out))
	assert.Equal(t, "alice", out.Messages[0].To.Player)
	assert.Equal(t, LeftPayload{Leaver: "bob"}, out.Messages[0].Event.Payload)

	assert.False(t, s.IsGameActive)
	assert.Equal(t, []string{"alice"}, s.Players)
	assert.NotContains(t, s.Scores, "bob")
	assert.NotContains(t, s.Hands, "bob")

	// A new opponent starts a fresh match.
	out, err = s.Apply(JoinRoom{hdr("r1", "carol")})
	require.NoError(t, err)
	assert.Contains(t, eventTypes(out), EventStartGame)
	requireConserved(t, s)

	out, err = s.Apply(LeaveRoom{hdr("r1", "alice")})
	require.NoError(t, err)
	out, err = s.Apply(LeaveRoom{hdr("r1", "carol")})
	require.NoError(t, err)
	assert.Empty(t, out.Messages)
	assert.True(t, s.Empty())

	_, err = s.Apply(LeaveRoom{hdr("r1", "carol")})
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(nil))
	assert.Error(t, Validate(JoinRoom{hdr("", "alice")}))
	assert.Error(t, Validate(JoinRoom{hdr("r1", "  ")}))
	assert.Error(t, Validate(DrawFromDiscard{hdr("r1", "a"), models.CardRef{Rank: models.RankJoker, Suit: models.SuitSpades}}))
	assert.NoError(t, Validate(DiscardCards{Header: hdr("r1", "a")}))
	assert.NoError(t, Validate(DrawFromDiscard{hdr("r1", "a"), models.CardRef{Rank: "10", Suit: models.SuitDiamonds}}))
}
