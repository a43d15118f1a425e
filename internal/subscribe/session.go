package subscribe

import (
	"errors"
	"fmt"
	"strings"
)

type State string

const (
	StateIdle               State = "idle"
	StateURIsBuilt          State = "uris-built"
	StateClipboardAttempted State = "clipboard-attempted"
	StateDialogShown        State = "dialog-shown"
	StateAccepted           State = "accepted"
	StateDeclined           State = "declined"
)

type ActionID string

const (
	ActionYes ActionID = "yes"
	ActionNo  ActionID = "no"
)

var (
	ErrSessionClosed = errors.New("session already decided")
	ErrNotShown      = errors.New("dialog not shown")
	ErrUnknownAction = errors.New("unknown action")
)

// Session is one subscription handoff in progress.
type Session struct {
	ID              string
	Title           string
	URIs            []string
	Download        string
	ClipboardFormat string
	State           State
	Target          string
}

// Payload is the clipboard text: every protocol URI, newline separated.
func (s *Session) Payload() string {
	return strings.Join(s.URIs, "\n")
}

// Action is a dialog button and the location it navigates to.
type Action struct {
	ID     ActionID
	Label  string
	Target string
}

// Dialog describes the choice shown to the user. Rendering it is up to a
// Renderer.
type Dialog struct {
	Title   string
	Message string
	Actions []Action
}

func (d Dialog) Action(id ActionID) (Action, bool) {
	for _, action := range d.Actions {
		if action.ID == id {
			return action, true
		}
	}
	return Action{}, false
}

// Dialog builds the view for s. Yes always targets the first URI; the
// clipboard already carries the rest.
func (s *Session) Dialog() Dialog {
	title := s.Title
	if title == "" {
		title = "Subscribe to this feed"
		if len(s.URIs) > 1 {
			title = fmt.Sprintf("Subscribe to %d feeds", len(s.URIs))
		}
	}

	message := "Do you already have a feed reader app installed?"
	if s.ClipboardFormat != "" {
		message += " The feed links were copied to your clipboard."
	}

	var first string
	if len(s.URIs) > 0 {
		first = s.URIs[0]
	}
	return Dialog{
		Title:   title,
		Message: message,
		Actions: []Action{
			{ID: ActionYes, Label: "Yes", Target: first},
			{ID: ActionNo, Label: "No", Target: s.Download},
		},
	}
}

// Choose records the user's decision and returns the navigation target.
func (s *Session) Choose(id ActionID) (string, error) {
	switch s.State {
	case StateAccepted, StateDeclined:
		return "", ErrSessionClosed
	case StateDialogShown:
	default:
		return "", fmt.Errorf("%w: state %s", ErrNotShown, s.State)
	}

	action, ok := s.Dialog().Action(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	if id == ActionYes {
		s.State = StateAccepted
	} else {
		s.State = StateDeclined
	}
	s.Target = action.Target
	return action.Target, nil
}

func ParseActionID(value string) (ActionID, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes":
		return ActionYes, nil
	case "n", "no":
		return ActionNo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, value)
}
