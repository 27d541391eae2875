package tui

// Messages posted by Collaborator from the coordinator loop.
type validationFailedMsg struct {
	field   string
	title   string
	message string
}

type startedMsg struct{}

type succeededMsg struct {
	rendered string
}

type failedMsg struct {
	message string
}

type finishedMsg struct{}

// triggerFailedMsg reports that the coordinator refused a trigger.
type triggerFailedMsg struct {
	err error
}
