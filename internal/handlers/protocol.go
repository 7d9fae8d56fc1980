// internal/handlers/protocol.go
package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/yaniv/internal/game"
	"github.com/jason-s-yu/yaniv/internal/models"
)

// GameMessage is the flat shape of every inbound websocket frame.
type GameMessage struct {
	Type string `json:"type"`

	RoomID     string `json:"roomId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`

	// Cards is the batch for discard_cards.
	Cards []models.CardRef `json:"cards,omitempty"`
	// Card is the requested discard-pile card for draw_from_discard.
	Card *models.CardRef `json:"card,omitempty"`
}

// msgPing is answered directly by the transport and never reaches a room.
const msgPing = "ping"

// toCommand converts a decoded frame into a room command.
func (m GameMessage) toCommand() (game.Command, error) {
	h := game.Header{RoomID: m.RoomID, PlayerName: m.PlayerName}
	switch game.CommandKind(m.Type) {
	case game.CmdJoinRoom:
		return game.JoinRoom{Header: h}, nil
	case game.CmdDiscardCards:
		return game.DiscardCards{Header: h, Cards: m.Cards}, nil
	case game.CmdDrawFromDeck:
		return game.DrawFromDeck{Header: h}, nil
	case game.CmdDrawFromDiscard:
		if m.Card == nil {
			return nil, fmt.Errorf("draw_from_discard requires a card")
		}
		return game.DrawFromDiscard{Header: h, Card: *m.Card}, nil
	case game.CmdDeclareYaniv:
		return game.DeclareYaniv{Header: h}, nil
	case game.CmdRequestRematch:
		return game.RequestRematch{Header: h}, nil
	case game.CmdLeaveRoom:
		return game.LeaveRoom{Header: h}, nil
	}
	return nil, fmt.Errorf("unknown message type: %q", m.Type)
}

// decodeMessage parses a raw frame.
func decodeMessage(data []byte) (GameMessage, error) {
	var msg GameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return GameMessage{}, fmt.Errorf("invalid JSON format: %w", err)
	}
	return msg, nil
}

// withHeader returns cmd with its header replaced.
func withHeader(cmd game.Command, h game.Header) game.Command {
	switch c := cmd.(type) {
	case game.JoinRoom:
		c.Header = h
		return c
	case game.DiscardCards:
		c.Header = h
		return c
	case game.DrawFromDeck:
		c.Header = h
		return c
	case game.DrawFromDiscard:
		c.Header = h
		return c
	case game.DeclareYaniv:
		c.Header = h
		return c
	case game.RequestRematch:
		c.Header = h
		return c
	case game.LeaveRoom:
		c.Header = h
		return c
	}
	return cmd
}
