package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// cmdTrigger hands the field texts to the coordinator off the Update
// goroutine; Trigger may block while the coordinator loop is delivering a
// callback back into the program.
func cmdTrigger(ctx context.Context, ctl Controller, weightText, heightText string) tea.Cmd {
	return func() tea.Msg {
		if err := ctl.Trigger(ctx, weightText, heightText); err != nil {
			return triggerFailedMsg{err: err}
		}
		return nil
	}
}
