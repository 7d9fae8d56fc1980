// internal/game/commands.go
package game

import (
	"strings"

	"github.com/jason-s-yu/yaniv/internal/models"
)

// CommandKind names a client-to-server command.
type CommandKind string

const (
	CmdJoinRoom        CommandKind = "join_room"
	CmdDiscardCards    CommandKind = "discard_cards"
	CmdDrawFromDeck    CommandKind = "draw_from_deck"
	CmdDrawFromDiscard CommandKind = "draw_from_discard"
	CmdDeclareYaniv    CommandKind = "declare_yaniv"
	CmdRequestRematch  CommandKind = "request_rematch"
	CmdLeaveRoom       CommandKind = "leave_room"
)

// Header carries the room and actor every command names.
type Header struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// Head returns the header itself so embedding types satisfy Command.
func (h Header) Head() Header { return h }

// Command is one inbound request against a room.
type Command interface {
	Kind() CommandKind
	Head() Header
}

type JoinRoom struct{ Header }

type DiscardCards struct {
	Header
	Cards []models.CardRef `json:"cards"`
}

type DrawFromDeck struct{ Header }

type DrawFromDiscard struct {
	Header
	Card models.CardRef `json:"card"`
}

type DeclareYaniv struct{ Header }

type RequestRematch struct{ Header }

type LeaveRoom struct{ Header }

func (JoinRoom) Kind() CommandKind        { return CmdJoinRoom }
func (DiscardCards) Kind() CommandKind    { return CmdDiscardCards }
func (DrawFromDeck) Kind() CommandKind    { return CmdDrawFromDeck }
func (DrawFromDiscard) Kind() CommandKind { return CmdDrawFromDiscard }
func (DeclareYaniv) Kind() CommandKind    { return CmdDeclareYaniv }
func (RequestRematch) Kind() CommandKind  { return CmdRequestRematch }
func (LeaveRoom) Kind() CommandKind       { return CmdLeaveRoom }

// RejectionEvent is the event a rejected command of this kind is reported with.
func (k CommandKind) RejectionEvent() GameEventType {
	switch k {
	case CmdDiscardCards, CmdDrawFromDiscard:
		return EventInvalidDiscardDraw
	default:
		return EventInvalidAction
	}
}

// Validate checks the shape of cmd without consulting any session.
func Validate(cmd Command) error {
	if cmd == nil {
		return reject(StructuralInvalid, ErrMalformed, "missing command")
	}
	h := cmd.Head()
	if strings.TrimSpace(h.RoomID) == "" || strings.TrimSpace(h.PlayerName) == "" {
		return reject(StructuralInvalid, ErrMalformed, "roomId and playerName are required")
	}
	switch c := cmd.(type) {
	case DiscardCards:
		for _, ref := range c.Cards {
			if !ref.Valid() {
				return reject(StructuralInvalid, ErrMalformed, "unknown card "+ref.Rank+ref.Suit)
			}
		}
	case DrawFromDiscard:
		if !c.Card.Valid() {
			return reject(StructuralInvalid, ErrMalformed, "unknown card "+c.Card.Rank+c.Card.Suit)
		}
	}
	return nil
}
