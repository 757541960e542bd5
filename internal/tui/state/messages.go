package state

// RefreshMsg is sent when browser state changed outside the update loop:
// a page finished loading, a selection frame ran or tabs were opened.
type RefreshMsg struct{}

// actionDoneMsg reports a command, menu or popup action.
type actionDoneMsg struct {
	action  string
	success string
	err     error
}

// statusTickMsg redraws so expired status messages disappear.
type statusTickMsg struct{}
