// internal/game/dispatch.go
package game

import (
	"errors"
	"fmt"
)

// Outcome is everything a command produced: the notifications to deliver, the
// resolved round if the command ended one, and the rejection if any.
type Outcome struct {
	Messages []Envelope
	Round    *RoundResult
	Err      error

	// ActionIndex is the session's applied-command count after this command.
	ActionIndex int
}

// Apply validates cmd and runs it against the session. A rejected command
// leaves the session untouched.
func (s *Session) Apply(cmd Command) (Outcome, error) {
	if err := Validate(cmd); err != nil {
		return Outcome{}, err
	}
	actor := cmd.Head().PlayerName

	var (
		out Outcome
		err error
	)
	switch c := cmd.(type) {
	case JoinRoom:
		out, err = s.join(actor)
	case DiscardCards:
		out, err = s.discard(actor, c.Cards)
	case DrawFromDeck:
		out, err = s.drawFromDeck(actor)
	case DrawFromDiscard:
		out, err = s.drawFromDiscard(actor, c.Card)
	case DeclareYaniv:
		out, err = s.declareYaniv(actor)
	case RequestRematch:
		out, err = s.requestRematch(actor)
	case LeaveRoom:
		out, err = s.leave(actor)
	default:
		err = reject(StructuralInvalid, ErrMalformed, fmt.Sprintf("unsupported command %q", cmd.Kind()))
	}
	if err != nil {
		return Outcome{}, err
	}
	s.ActionIndex++
	out.ActionIndex = s.ActionIndex
	return out, nil
}

// Dispatch applies cmd and, on rejection, addresses the failure to the sender.
func Dispatch(s *Session, cmd Command) Outcome {
	out, err := s.Apply(cmd)
	if err == nil {
		return out
	}
	return Rejection(cmd, err)
}

// Rejection builds the sender-only notification for a failed command.
func Rejection(cmd Command, err error) Outcome {
	kind := CmdJoinRoom
	if cmd != nil {
		kind = cmd.Kind()
	}
	msg := err.Error()
	var ae *ActionError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	return Outcome{
		Messages: []Envelope{toSender(kind.RejectionEvent(), MessagePayload{Message: msg})},
		Err:      err,
	}
}
