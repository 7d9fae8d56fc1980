// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/yaniv/internal/middleware"
	"github.com/sirupsen/logrus"
)

// pingInterval is how often the write pump pings an idle client.
const pingInterval = 30 * time.Second

// GameWSHandler upgrades the request to a websocket speaking the yaniv
// subprotocol and pumps frames between it and the game server until either
// side closes. Disconnecting is an implicit leave_room.
func GameWSHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: gs.AllowedOrigins,
		})
		if err != nil {
			gs.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the yaniv subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		client := NewClient(gs.SendBuffer, cancel, gs.Logger)
		gs.Conns.Add(client)
		connLog := middleware.LogWebSocketConnect(gs.Logger, r, client.ID.String())

		go writePump(ctx, c, client, gs.WriteTimeout, gs.Logger)
		err = readPump(ctx, c, client, gs)

		b, _ := gs.Conns.Binding(client.ID)
		gs.HandleDisconnect(context.Background(), client)
		middleware.LogWebSocketDisconnect(connLog, b.RoomID, b.Player, err)
	}
}

// readPump feeds inbound text frames to the game server. It returns nil on a
// normal close and the read error otherwise.
func readPump(ctx context.Context, c *websocket.Conn, client *Client, gs *GameServer) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			client.logger.Warnf("Received non-text message type %d. Ignoring.", typ)
			continue
		}
		gs.HandleMessage(ctx, client, data)
	}
}

// writePump drains the client's queue onto the socket and keeps it alive with
// periodic pings. Any write failure ends the connection.
func writePump(ctx context.Context, c *websocket.Conn, client *Client, timeout time.Duration, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer func() {
		client.Close()
		_ = c.Close(websocket.StatusGoingAway, "write pump stopping")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-client.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, timeout)
			err := c.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				client.logger.Warnf("Failed to write to websocket: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.WithField("conn", client.ID.String()).Warnf("Failed to ping: %v. Assuming disconnect.", err)
				return
			}
		}
	}
}
