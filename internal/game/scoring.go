// internal/game/scoring.go
package game

// Verdict classifies how a Yaniv declaration resolved.
type Verdict string

const (
	VerdictYaniv   Verdict = "yaniv"   // declarer ≤ 5 and strictly lowest
	VerdictAsaf    Verdict = "asaf"    // an opponent matched or beat a legal declaration
	VerdictInvalid Verdict = "invalid" // declarer held more than 5
)

var verdictReasons = map[Verdict]string{
	VerdictYaniv:   "Yaniv! The declarer has the lowest hand",
	VerdictAsaf:    "Asaf! An opponent's hand is equal or lower",
	VerdictInvalid: "Invalid Yaniv: the declarer's hand totals more than 5",
}

// Reason returns the human-readable text for a verdict.
func (v Verdict) Reason() string {
	return verdictReasons[v]
}

// PlayerTotal is one player's hand total at declaration time.
type PlayerTotal struct {
	Player string
	Total  int
}

// RoundResult is the outcome of a resolved declaration.
type RoundResult struct {
	RoomID   string
	Declarer string
	Winner   string
	Verdict  Verdict
	Totals   []PlayerTotal
}

// ResolveDeclaration decides who wins when declarer calls Yaniv. Totals are in
// seat order. Ties always go to the non-declaring side.
func ResolveDeclaration(declarer string, totals []PlayerTotal) (string, Verdict) {
	declared := 0
	var others, lowerOrEqual []PlayerTotal
	for _, t := range totals {
		if t.Player == declarer {
			declared = t.Total
			continue
		}
		others = append(others, t)
	}
	for _, o := range others {
		if o.Total <= declared {
			lowerOrEqual = append(lowerOrEqual, o)
		}
	}

	switch {
	case declared > YanivThreshold:
		if len(lowerOrEqual) > 0 {
			return lowerOrEqual[0].Player, VerdictInvalid
		}
		// Nobody is at or below the declarer; the illegal call still forfeits the round.
		if len(others) > 0 {
			return others[0].Player, VerdictInvalid
		}
		return declarer, VerdictInvalid
	case len(lowerOrEqual) == 0:
		return declarer, VerdictYaniv
	default:
		return lowerOrEqual[0].Player, VerdictAsaf
	}
}

// totals returns every seated player's hand total in seat order.
func (s *Session) totals() []PlayerTotal {
	out := make([]PlayerTotal, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, PlayerTotal{Player: p, Total: HandTotal(s.Hands[p])})
	}
	return out
}

// declareYaniv resolves a declaration, ends the round and credits the winner.
func (s *Session) declareYaniv(actor string) (Outcome, error) {
	if err := s.requireMember(actor); err != nil {
		return Outcome{}, err
	}
	if !s.IsGameActive {
		return Outcome{}, reject(RuleViolation, ErrGameInactive, "you cannot declare Yaniv right now")
	}
	if s.Rules.EnforcePhases {
		if err := s.requireTurn(actor, PhaseTurnStart); err != nil {
			return Outcome{}, err
		}
	}

	totals := s.totals()
	winner, verdict := ResolveDeclaration(actor, totals)
	s.Scores[winner]++
	s.IsGameActive = false
	s.Phase = PhaseTurnStart

	byPlayer := make(map[string]int, len(totals))
	for _, t := range totals {
		byPlayer[t.Player] = t.Total
	}
	scores := make(map[string]int, len(s.Scores))
	for p, n := range s.Scores {
		scores[p] = n
	}

	return Outcome{
		Messages: []Envelope{toRoom(EventGameResult, ResultPayload{
			Winner:   winner,
			Reason:   verdict.Reason(),
			Verdict:  verdict,
			Declarer: actor,
			Totals:   byPlayer,
			Scores:   scores,
		})},
		Round: &RoundResult{
			RoomID:   s.ID,
			Declarer: actor,
			Winner:   winner,
			Verdict:  verdict,
			Totals:   totals,
		},
	}, nil
}
