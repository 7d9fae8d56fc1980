// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/yaniv/internal/cache"
	"github.com/jason-s-yu/yaniv/internal/database"
	"github.com/jason-s-yu/yaniv/internal/game"
	"github.com/sirupsen/logrus"
)

// RoundRecorder persists resolved rounds and serves them back per room.
type RoundRecorder interface {
	RecordRoundResult(ctx context.Context, res game.RoundResult) (uuid.UUID, error)
	ScoreHistory(ctx context.Context, roomID string, limit int) ([]database.RoundRecord, error)
}

// ActionLog serves the journaled commands of a room back in applied order.
type ActionLog interface {
	RoomActions(ctx context.Context, roomID string) ([]cache.ActionRecord, error)
}

// GameServer routes decoded websocket frames into the room registry and
// delivers the resulting events to the bound connections.
type GameServer struct {
	Registry *game.Registry
	Conns    *ConnTable
	Journal  cache.Journal
	// Results is optional; nil disables round history.
	Results RoundRecorder
	// Actions is optional; nil disables the action replay route.
	Actions ActionLog
	Logger  *logrus.Logger

	AllowedOrigins []string
	WriteTimeout   time.Duration
	SendBuffer     int
}

// NewGameServer returns a server with no journal and no round history.
func NewGameServer(reg *game.Registry, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Registry:     reg,
		Conns:        NewConnTable(),
		Journal:      cache.NopJournal{},
		Logger:       logger,
		WriteTimeout: 5 * time.Second,
		SendBuffer:   32,
	}
}

var (
	errNotJoined       = errors.New("join a room before sending game commands")
	errBindingMismatch = errors.New("roomId/playerName do not match this connection")
)

// HandleMessage processes one inbound frame from c.
func (gs *GameServer) HandleMessage(ctx context.Context, c *Client, data []byte) {
	msg, err := decodeMessage(data)
	if err != nil {
		gs.sendMessage(c, game.EventInvalidAction, err.Error())
		return
	}
	if msg.Type == msgPing {
		c.Send(encodeEvent(gs.Logger, game.GameEvent{Type: "pong", Payload: struct{}{}}))
		return
	}

	cmd, err := msg.toCommand()
	if err != nil {
		gs.sendMessage(c, game.EventInvalidAction, err.Error())
		return
	}
	cmd, err = gs.resolve(c, cmd)
	if err != nil {
		gs.sendMessage(c, cmd.Kind().RejectionEvent(), err.Error())
		return
	}
	gs.execute(ctx, c, cmd, data)
}

// resolve checks cmd against the connection's binding and fills in the
// room and player the connection acts as.
func (gs *GameServer) resolve(c *Client, cmd game.Command) (game.Command, error) {
	h := cmd.Head()
	b, bound := gs.Conns.Binding(c.ID)
	if !bound {
		if cmd.Kind() != game.CmdJoinRoom {
			return cmd, errNotJoined
		}
		return cmd, nil
	}
	if cmd.Kind() == game.CmdJoinRoom && h.RoomID != "" && h.RoomID != b.RoomID {
		return cmd, fmt.Errorf("already in room %s; leave it first", b.RoomID)
	}
	if (h.RoomID != "" && h.RoomID != b.RoomID) || (h.PlayerName != "" && h.PlayerName != b.Player) {
		return cmd, errBindingMismatch
	}
	return withHeader(cmd, game.Header{RoomID: b.RoomID, PlayerName: b.Player}), nil
}

// HandleDisconnect forgets c and, unless another connection still acts as the
// same player, leaves the room on its behalf.
func (gs *GameServer) HandleDisconnect(ctx context.Context, c *Client) {
	b, ok := gs.Conns.Remove(c.ID)
	c.Close()
	if !ok {
		return
	}
	if len(gs.Conns.PlayerClients(b.RoomID, b.Player)) > 0 {
		return
	}
	gs.execute(ctx, nil, game.LeaveRoom{Header: game.Header{RoomID: b.RoomID, PlayerName: b.Player}}, nil)
}

// execute runs cmd and delivers its events. c is nil for server-initiated commands.
func (gs *GameServer) execute(ctx context.Context, c *Client, cmd game.Command, raw []byte) {
	h := cmd.Head()
	entry := gs.Logger.WithFields(logrus.Fields{
		"room":   h.RoomID,
		"player": h.PlayerName,
		"action": cmd.Kind(),
	})

	out := gs.Registry.ExecuteThen(cmd, func(out game.Outcome) {
		if out.Err == nil && c != nil && cmd.Kind() == game.CmdJoinRoom {
			gs.Conns.Bind(c.ID, Binding{RoomID: h.RoomID, Player: h.PlayerName})
		}
		if out.Err == nil && cmd.Kind() == game.CmdLeaveRoom {
			gs.Conns.UnbindPlayer(h.RoomID, h.PlayerName)
		}
		gs.deliver(c, h.RoomID, out)
	})

	if out.Err != nil {
		var ae *game.ActionError
		if errors.As(out.Err, &ae) {
			entry.WithField("kind", ae.Kind).Debugf("Rejected: %s", ae.Message)
		} else {
			entry.WithError(out.Err).Error("Command failed")
		}
		return
	}
	entry.WithField("action_index", out.ActionIndex).Debug("Command applied")

	gs.journal(ctx, entry, cmd, out, raw)
	if out.Round != nil {
		gs.recordRound(ctx, entry, *out.Round)
	}
}

// deliver fans out an outcome's envelopes to the addressed connections.
func (gs *GameServer) deliver(sender *Client, roomID string, out game.Outcome) {
	for _, env := range out.Messages {
		frame := encodeEvent(gs.Logger, env.Event)
		if frame == nil {
			continue
		}
		switch env.To.Kind {
		case game.ToSender:
			if sender != nil {
				sender.Send(frame)
			}
		case game.ToPlayer:
			for _, c := range gs.Conns.PlayerClients(roomID, env.To.Player) {
				c.Send(frame)
			}
		case game.ToRoom:
			for _, c := range gs.Conns.RoomClients(roomID) {
				c.Send(frame)
			}
		}
	}
}

func (gs *GameServer) journal(ctx context.Context, entry *logrus.Entry, cmd game.Command, out game.Outcome, raw []byte) {
	h := cmd.Head()
	rec := cache.NewActionRecord(h.RoomID, out.ActionIndex, h.PlayerName, string(cmd.Kind()), json.RawMessage(raw))
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := gs.Journal.Publish(pubCtx, rec); err != nil {
		entry.WithError(err).Warn("Failed to publish action record")
	}
}

func (gs *GameServer) recordRound(ctx context.Context, entry *logrus.Entry, res game.RoundResult) {
	entry = entry.WithFields(logrus.Fields{"winner": res.Winner, "verdict": res.Verdict})
	if gs.Results == nil {
		entry.Info("Round resolved")
		return
	}
	recCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	id, err := gs.Results.RecordRoundResult(recCtx, res)
	if err != nil {
		entry.WithError(err).Warn("Failed to record round result")
		return
	}
	entry.WithField("round_id", id).Info("Round resolved")
}

// CloseAll stops every live connection.
func (gs *GameServer) CloseAll() {
	for _, c := range gs.Conns.All() {
		c.Close()
	}
}

// sendMessage sends a {message} event to one connection.
func (gs *GameServer) sendMessage(c *Client, t game.GameEventType, message string) {
	if frame := encodeEvent(gs.Logger, game.GameEvent{Type: t, Payload: game.MessagePayload{Message: message}}); frame != nil {
		c.Send(frame)
	}
}

// encodeEvent marshals ev, logging and returning nil on failure.
func encodeEvent(logger *logrus.Logger, ev game.GameEvent) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("Failed to marshal GameEvent type %s: %v", ev.Type, err)
		return nil
	}
	return data
}
