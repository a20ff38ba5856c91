package flow

import (
	"errors"
	"fmt"
)

// EventKind enumerates navigation events.
type EventKind uint8

// Event kinds.
const (
	AuthChecked EventKind = iota
	SignedIn
	SignedUp
	ShowSignUp
	ShowLogin
	Select
	LoggedOut
	Back
)

var eventNames = [...]string{
	AuthChecked: "auth-checked",
	SignedIn:    "signed-in",
	SignedUp:    "signed-up",
	ShowSignUp:  "show-signup",
	ShowLogin:   "show-login",
	Select:      "select",
	LoggedOut:   "logged-out",
	Back:        "back",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Event is a discrete user or completion event. Authenticated is only read for
// AuthChecked and Target only for Select.
type Event struct {
	Kind          EventKind
	Authenticated bool
	Target        Screen
}

// ErrInvalidTransition is wrapped by every TransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError reports an event that is not accepted in the current screen.
type TransitionError struct {
	From  Screen
	Event Event
}

func (e *TransitionError) Error() string {
	if e.Event.Kind == Select {
		return fmt.Sprintf("invalid transition: %s from %s to %s", e.Event.Kind, e.From, e.Event.Target)
	}
	return fmt.Sprintf("invalid transition: %s from %s", e.Event.Kind, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Next returns the screen that follows current on ev.
func Next(current Screen, ev Event) (Screen, error) {
	switch current {
	case Loading:
		if ev.Kind == AuthChecked {
			if ev.Authenticated {
				return Landing, nil
			}
			return Login, nil
		}
	case Login:
		switch ev.Kind {
		case SignedIn:
			return Landing, nil
		case ShowSignUp:
			return SignUp, nil
		}
	case SignUp:
		switch ev.Kind {
		case SignedUp:
			return Landing, nil
		case ShowLogin, Back:
			return Login, nil
		}
	case Landing:
		switch ev.Kind {
		case Select:
			if ev.Target.IsLeaf() {
				return ev.Target, nil
			}
		case LoggedOut:
			return Login, nil
		}
	default:
		if current.IsLeaf() && ev.Kind == Back {
			return Landing, nil
		}
	}
	return current, &TransitionError{From: current, Event: ev}
}
