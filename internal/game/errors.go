// internal/game/errors.go
package game

import (
	"errors"
	"strings"

	"github.com/jason-s-yu/yaniv/internal/models"
)

// ErrorKind classifies why a command was rejected. No kind is fatal to the session.
type ErrorKind string

const (
	StructuralInvalid  ErrorKind = "structural_invalid"
	OwnershipViolation ErrorKind = "ownership_violation"
	RuleViolation      ErrorKind = "rule_violation"
	NotFound           ErrorKind = "not_found"
)

// Sentinel causes. They are wrapped in an ActionError carrying the user-facing message.
var (
	ErrMalformed        = errors.New("malformed command")
	ErrUnknownPlayer    = errors.New("player is not in this room")
	ErrRoomFull         = errors.New("room already has two players")
	ErrGameInactive     = errors.New("no match in progress")
	ErrGameActive       = errors.New("match still in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrWrongPhase       = errors.New("action not allowed in the current phase")
	ErrMixedRanks       = errors.New("mixed ranks in discard")
	ErrCardsNotHeld     = errors.New("cards not in hand")
	ErrDeckEmpty        = errors.New("deck is empty")
	ErrDiscardNotFound  = errors.New("card not on discard pile")
	ErrOwnDiscard       = errors.New("cannot reclaim own discard")
	ErrNotEnoughPlayers = errors.New("two players required")
)

// ActionError is a rejected command. Cause is one of the sentinel errors above.
type ActionError struct {
	Kind    ErrorKind
	Cause   error
	Message string
	// Missing lists submitted cards the actor does not hold (OwnershipViolation only).
	Missing []models.Card
}

func (e *ActionError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

func reject(kind ErrorKind, cause error, msg string) *ActionError {
	return &ActionError{Kind: kind, Cause: cause, Message: msg}
}

func missingCardsError(missing []models.Card) *ActionError {
	names := make([]string, len(missing))
	for i, c := range missing {
		names[i] = c.String()
	}
	return &ActionError{
		Kind:    OwnershipViolation,
		Cause:   ErrCardsNotHeld,
		Message: "these cards are not in your hand: " + strings.Join(names, ", "),
		Missing: missing,
	}
}

// ErrRoomNotFound is returned by the Registry for commands other than join that
// name a room with no live session.
var ErrRoomNotFound = errors.New("room not found")
