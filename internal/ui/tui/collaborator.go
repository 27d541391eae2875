package tui

import (
	"bmi-client/internal/bmi"
	"bmi-client/internal/coordinator"

	tea "github.com/charmbracelet/bubbletea"
)

// Collaborator forwards coordinator callbacks into the Bubble Tea program
// so the model only changes inside Update.
type Collaborator struct {
	send func(tea.Msg)
}

// NewCollaborator posts every callback through send, usually
// (*tea.Program).Send.
func NewCollaborator(send func(tea.Msg)) *Collaborator {
	return &Collaborator{send: send}
}

func (c *Collaborator) OnValidationError(err *bmi.ValidationError) {
	c.send(validationFailedMsg{field: err.Field, title: err.Title(), message: err.Message()})
}

func (c *Collaborator) OnOperationStarted() { c.send(startedMsg{}) }

func (c *Collaborator) OnOperationSucceeded(rendered string) {
	c.send(succeededMsg{rendered: rendered})
}

func (c *Collaborator) OnOperationFailed(message string) {
	c.send(failedMsg{message: message})
}

func (c *Collaborator) OnOperationFinished() { c.send(finishedMsg{}) }

var _ coordinator.Collaborator = (*Collaborator)(nil)
