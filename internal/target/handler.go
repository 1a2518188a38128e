// Package target provides the Handler backed by the target model's configuration.
package target

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ekisa-team/shadowsmith/internal/blueprint"
	"github.com/ekisa-team/shadowsmith/internal/config"
	"github.com/ekisa-team/shadowsmith/internal/errdefs"
	"github.com/ekisa-team/shadowsmith/internal/loss"
	"github.com/ekisa-team/shadowsmith/internal/optim"
	"github.com/ekisa-team/shadowsmith/internal/params"
	"github.com/ekisa-team/shadowsmith/internal/shadow"
)

// ErrIncomplete is returned when the target section lacks a required field.
var ErrIncomplete = errors.New("incomplete target configuration")

// Handler supplies target replicas, the target criterion and the target
// blueprint from configuration.
type Handler struct {
	logger     *slog.Logger
	blueprint  *blueprint.Blueprint
	initParams params.Params
	optimizer  config.ComponentConfig
	criterion  config.ComponentConfig
}

var _ shadow.Handler = (*Handler)(nil)

// New resolves the target section of the config. Blueprint classes without
// a module path are looked up in catalog.
func New(cfg config.ModelConfig, catalog *blueprint.Catalog, logger *slog.Logger) (*Handler, error) {
	if !cfg.HasBlueprint() || cfg.Optimizer == nil || cfg.Criterion == nil {
		return nil, fmt.Errorf("%w: model_class, optimizer and criterion are required", ErrIncomplete)
	}

	bp, err := blueprint.Resolve(cfg.ModulePath, cfg.ModelClass, catalog)
	if err != nil {
		return nil, err
	}

	if _, err := optim.Lookup(cfg.Optimizer.Name); err != nil {
		return nil, errdefs.UnknownName("optimizer", cfg.Optimizer.Name, err)
	}
	if _, err := loss.Lookup(cfg.Criterion.Name); err != nil {
		return nil, errdefs.UnknownName("criterion", cfg.Criterion.Name, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		logger:     logger.With("component", "target"),
		blueprint:  bp,
		initParams: cfg.InitParams.Clone(),
		optimizer:  *cfg.Optimizer,
		criterion:  *cfg.Criterion,
	}, nil
}

// Logger returns the handler's logger.
func (h *Handler) Logger() *slog.Logger {
	return h.logger
}

// TargetBlueprint returns the target model's blueprint.
func (h *Handler) TargetBlueprint() (*blueprint.Blueprint, error) {
	return h.blueprint, nil
}

// InitParams returns a copy of the target model's init params.
func (h *Handler) InitParams() params.Params {
	return h.initParams.Clone()
}

// Criterion builds the target criterion.
func (h *Handler) Criterion() (loss.Criterion, error) {
	c, err := loss.New(h.criterion.Name, h.criterion.Params)
	if err != nil {
		return nil, fmt.Errorf("target criterion %s: %w", h.criterion.Name, err)
	}
	return c, nil
}

// TargetReplica builds a fresh, untrained copy of the target model with the
// target's criterion and optimizer.
func (h *Handler) TargetReplica() (shadow.Replica, error) {
	model, err := h.blueprint.Build(h.initParams)
	if err != nil {
		return shadow.Replica{}, err
	}

	ctor, err := optim.Lookup(h.optimizer.Name)
	if err != nil {
		return shadow.Replica{}, err
	}
	optimizer, err := ctor(model.Parameters(), h.optimizer.Params)
	if err != nil {
		return shadow.Replica{}, fmt.Errorf("target optimizer %s: %w", h.optimizer.Name, err)
	}

	criterion, err := h.Criterion()
	if err != nil {
		return shadow.Replica{}, err
	}

	h.logger.Debug("Built target replica", "blueprint", h.blueprint.Name)

	return shadow.Replica{Model: model, Criterion: criterion, Optimizer: optimizer}, nil
}
