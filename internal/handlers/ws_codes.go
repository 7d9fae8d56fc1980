// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game handler.
const (
	BadSubprotocolError = 3000 // Client connected without the yaniv subprotocol.
)

// Subprotocol is the websocket subprotocol clients must offer.
const Subprotocol = "yaniv"
