// internal/game/events.go
package game

import (
	"encoding/json"

	"github.com/jason-s-yu/yaniv/internal/models"
)

// GameEventType names a server-to-client notification.
type GameEventType string

const (
	EventJoined             GameEventType = "joined"               // Private: opponent's name once the room is full.
	EventStartGame          GameEventType = "start_game"           // Private: projected deal for a new match.
	EventYourTurn           GameEventType = "your_turn"            // Public: new turn holder.
	EventUpdateState        GameEventType = "update_state"         // Private: projected board after a mutation.
	EventDiscardComplete    GameEventType = "discard_complete"     // Sender: discard accepted.
	EventDrawComplete       GameEventType = "draw_complete"        // Sender: draw accepted.
	EventInvalidDiscardDraw GameEventType = "invalid_discard_draw" // Sender: discard or discard-pile draw rejected.
	EventInvalidAction      GameEventType = "invalid_action"       // Sender: any other rejection.
	EventGameResult         GameEventType = "game_result"          // Public: declaration resolved.
	EventRematchReady       GameEventType = "rematch_ready"        // Private: projected deal for a rematch.
	EventOpponentLeft       GameEventType = "opponent_left"        // Public: a player left the room.
)

// GameEvent is the wire envelope for every notification.
type GameEvent struct {
	Type    GameEventType `json:"type"`
	Payload any           `json:"payload"`
}

// RecipientKind selects who receives an Envelope.
type RecipientKind int

const (
	ToRoom   RecipientKind = iota // every connection in the room
	ToPlayer                      // every connection bound to Recipient.Player
	ToSender                      // only the connection that issued the command
)

// Recipient addresses an outbound event.
type Recipient struct {
	Kind   RecipientKind
	Player string
}

// Envelope pairs an event with its audience.
type Envelope struct {
	To    Recipient
	Event GameEvent
}

func toRoom(t GameEventType, payload any) Envelope {
	return Envelope{To: Recipient{Kind: ToRoom}, Event: GameEvent{Type: t, Payload: payload}}
}

func toPlayer(player string, t GameEventType, payload any) Envelope {
	return Envelope{To: Recipient{Kind: ToPlayer, Player: player}, Event: GameEvent{Type: t, Payload: payload}}
}

func toSender(t GameEventType, payload any) Envelope {
	return Envelope{To: Recipient{Kind: ToSender}, Event: GameEvent{Type: t, Payload: payload}}
}

// HandView is one hand as seen by a particular viewer: the cards themselves for
// the owner, only the count for everyone else.
type HandView struct {
	Cards  []models.Card
	Size   int
	Hidden bool
}

// MarshalJSON encodes an owned hand as a card array and a hidden hand as a number.
func (h HandView) MarshalJSON() ([]byte, error) {
	if h.Hidden {
		return json.Marshal(h.Size)
	}
	cards := h.Cards
	if cards == nil {
		cards = []models.Card{}
	}
	return json.Marshal(cards)
}

// JoinedPayload tells a player who they are facing.
type JoinedPayload struct {
	Opponent string `json:"opponent"`
}

// DealPayload is sent for start_game and rematch_ready.
type DealPayload struct {
	Turn    string                `json:"turn"`
	Hands   map[string]HandView   `json:"hands"`
	Deck    []models.Card         `json:"deck"`
	Discard []models.DiscardEntry `json:"discard"`
}

// TurnPayload names the player whose turn it now is.
type TurnPayload struct {
	Player string `json:"player"`
}

// StatePayload is the per-recipient board projection sent as update_state.
type StatePayload struct {
	Deck                 []models.Card                    `json:"deck"`
	Discard              []models.DiscardEntry            `json:"discard"`
	Hands                map[string]HandView              `json:"hands"`
	LastDiscardsByPlayer map[string][]models.DiscardEntry `json:"lastDiscardsByPlayer"`
	Turn                 string                           `json:"turn,omitempty"`
	Phase                Phase                            `json:"phase"`
	Active               bool                             `json:"active"`
}

// MessagePayload carries a human-readable rejection reason.
type MessagePayload struct {
	Message string `json:"message"`
}

// ResultPayload announces the outcome of a Yaniv declaration.
type ResultPayload struct {
	Winner   string         `json:"winner"`
	Reason   string         `json:"reason"`
	Verdict  Verdict        `json:"verdict"`
	Declarer string         `json:"declarer"`
	Totals   map[string]int `json:"totals"`
	Scores   map[string]int `json:"scores"`
}

// LeftPayload names the departing player.
type LeftPayload struct {
	Leaver string `json:"leaver"`
}

// emptyPayload encodes as {} for acknowledgement events.
type emptyPayload struct{}
