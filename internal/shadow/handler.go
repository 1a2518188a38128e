package shadow

import (
	"log/slog"

	"github.com/ekisa-team/shadowsmith/internal/blueprint"
	"github.com/ekisa-team/shadowsmith/internal/loss"
	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/optim"
)

// Handler owns the target system's model and training configuration. The
// assembler consults it only for what is not configured locally.
type Handler interface {
	// Logger returns the sink for informational messages.
	Logger() *slog.Logger

	// TargetReplica returns a fresh model of the target architecture paired
	// with the target's criterion and an optimizer over its parameters.
	TargetReplica() (Replica, error)

	// Criterion returns the target's criterion.
	Criterion() (loss.Criterion, error)

	// TargetBlueprint returns the blueprint the target model is built from.
	TargetBlueprint() (*blueprint.Blueprint, error)
}

// Replica is a model with its criterion and optimizer.
type Replica struct {
	Model     nn.Module
	Criterion loss.Criterion
	Optimizer optim.Optimizer
}

// Restored is a model with weights loaded from disk, and its criterion.
type Restored struct {
	Model     nn.Module
	Criterion loss.Criterion
}
