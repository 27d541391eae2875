package tui

import (
	"context"

	"bmi-client/internal/coordinator"

	"go.uber.org/zap"
)

// Controller is the coordinator as seen by the TUI.
type Controller interface {
	Run(ctx context.Context, ui coordinator.Collaborator) error
	Trigger(ctx context.Context, weightText, heightText string) error
}

type Deps struct {
	Controller Controller
	// APIURL is shown in the header.
	APIURL string

	Logger *zap.Logger
}
