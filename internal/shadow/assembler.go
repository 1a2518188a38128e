// Package shadow assembles shadow models: it decides which blueprint,
// optimizer and criterion to use, then builds a fresh model or restores
// one from saved weights.
//
// Local configuration always wins. Whatever is not configured locally is
// supplied by a Handler that knows the target model.
package shadow

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/ekisa-team/shadowsmith/internal/blueprint"
	"github.com/ekisa-team/shadowsmith/internal/config"
	"github.com/ekisa-team/shadowsmith/internal/errdefs"
	"github.com/ekisa-team/shadowsmith/internal/loss"
	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/optim"
	"github.com/ekisa-team/shadowsmith/internal/params"
	"github.com/ekisa-team/shadowsmith/internal/state"
)

type optimizerSpec struct {
	name string
	new  optim.Constructor
}

type criterionSpec struct {
	name string
	new  loss.Constructor
}

// Assembler resolves and builds shadow models.
//
// An Assembler is not safe for concurrent use. Build and restore calls do
// not change resolved state, so separate goroutines may use separate
// assemblers configured the same way.
type Assembler struct {
	handler Handler
	logger  *slog.Logger

	blueprint *blueprint.Blueprint
	optimizer *optimizerSpec
	criterion *criterionSpec

	initParams      params.Params
	optimizerConfig params.Params
	lossConfig      params.Params
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithInitParams sets the keyword params models are constructed with.
func WithInitParams(p params.Params) Option {
	return func(a *Assembler) {
		a.initParams = p.Clone()
	}
}

// WithOptimizerConfig sets the keyword params the optimizer is constructed with.
func WithOptimizerConfig(p params.Params) Option {
	return func(a *Assembler) {
		a.optimizerConfig = p.Clone()
	}
}

// WithLossConfig sets the keyword params the criterion is constructed with.
func WithLossConfig(p params.Params) Option {
	return func(a *Assembler) {
		a.lossConfig = p.Clone()
	}
}

// WithLogger overrides the logger taken from the handler.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = l
	}
}

// NewAssembler creates an assembler delegating to handler. handler may be
// nil when everything is configured locally.
func NewAssembler(handler Handler, opts ...Option) *Assembler {
	a := &Assembler{
		handler:         handler,
		initParams:      params.Params{},
		optimizerConfig: params.Params{},
		lossConfig:      params.Params{},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil && handler != nil {
		a.logger = handler.Logger()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// ImportModelFromPath loads the blueprint class className from the manifest at path.
func (a *Assembler) ImportModelFromPath(path, className string) error {
	bp, err := blueprint.Import(path, className)
	if err != nil {
		return err
	}

	a.blueprint = bp
	return nil
}

// SetBlueprint sets the local blueprint. nil clears it.
func (a *Assembler) SetBlueprint(bp *blueprint.Blueprint) {
	a.blueprint = bp
}

// Blueprint returns the local blueprint, nil when unset.
func (a *Assembler) Blueprint() *blueprint.Blueprint {
	return a.blueprint
}

// ResolveOptimizer selects the optimizer registered under name.
func (a *Assembler) ResolveOptimizer(name string) error {
	ctor, err := optim.Lookup(name)
	if err != nil {
		return errdefs.UnknownName("optimizer", name, err)
	}

	a.optimizer = &optimizerSpec{name: name, new: ctor}
	return nil
}

// ResolveCriterion selects the criterion registered under name.
func (a *Assembler) ResolveCriterion(name string) error {
	ctor, err := loss.Lookup(name)
	if err != nil {
		return errdefs.UnknownName("criterion", name, err)
	}

	a.criterion = &criterionSpec{name: name, new: ctor}
	return nil
}

// Configure applies a model config section. Blueprint classes without a
// module path are looked up in catalog, which may be nil. Fields absent from
// cfg leave the current settings alone.
func (a *Assembler) Configure(cfg config.ModelConfig, catalog *blueprint.Catalog) error {
	if cfg.HasBlueprint() {
		bp, err := blueprint.Resolve(cfg.ModulePath, cfg.ModelClass, catalog)
		if err != nil {
			return err
		}
		a.blueprint = bp
	}

	if cfg.InitParams != nil {
		a.initParams = cfg.InitParams.Clone()
	}

	if cfg.Optimizer != nil {
		if err := a.ResolveOptimizer(cfg.Optimizer.Name); err != nil {
			return err
		}
		a.optimizerConfig = cfg.Optimizer.Params.Clone()
	}

	if cfg.Criterion != nil {
		if err := a.ResolveCriterion(cfg.Criterion.Name); err != nil {
			return err
		}
		a.lossConfig = cfg.Criterion.Params.Clone()
	}

	return nil
}

// BuildFresh constructs a new model, criterion and optimizer.
//
// With a local blueprint, all three are built locally and the handler is
// not consulted. Without one, the handler's target replica is returned as is.
func (a *Assembler) BuildFresh() (Replica, error) {
	if a.blueprint == nil {
		if a.handler == nil {
			return Replica{}, errdefs.Construction("target replica", ErrNoHandler)
		}

		r, err := a.handler.TargetReplica()
		if err != nil {
			return Replica{}, errdefs.Construction("target replica", err)
		}
		return r, nil
	}

	model, err := a.blueprint.Build(a.initParams)
	if err != nil {
		return Replica{}, errdefs.Construction("model from blueprint "+a.blueprint.Name, err)
	}

	if a.optimizer == nil {
		return Replica{}, errdefs.Construction("optimizer", ErrNotResolved)
	}
	optimizer, err := a.optimizer.new(model.Parameters(), a.optimizerConfig)
	if err != nil {
		return Replica{}, errdefs.Construction("optimizer "+a.optimizer.name, err)
	}

	if a.criterion == nil {
		return Replica{}, errdefs.Construction("criterion", ErrNotResolved)
	}
	criterion, err := a.newCriterion(a.criterion)
	if err != nil {
		return Replica{}, err
	}

	a.logger.Debug("Built shadow model", "blueprint", a.blueprint.Name,
		"optimizer", a.optimizer.name, "criterion", a.criterion.name)

	return Replica{Model: model, Criterion: criterion, Optimizer: optimizer}, nil
}

// Restore constructs a model and criterion and loads the weights saved at
// path into the model.
//
// The blueprint and the criterion each come from local configuration when
// set and from the handler otherwise. Construction happens before the file
// is read; a missing file is errdefs.ErrFileNotFound and any other problem
// with the file is errdefs.ErrStateLoad. Nothing is returned on failure.
func (a *Assembler) Restore(path string) (Restored, error) {
	bp, err := resolveOrDelegate(a.blueprint, func(b *blueprint.Blueprint) (*blueprint.Blueprint, error) {
		return b, nil
	}, a.targetBlueprint)
	if err != nil {
		return Restored{}, errdefs.Construction("model from blueprint", err)
	}

	model, err := bp.Build(a.initParams)
	if err != nil {
		return Restored{}, errdefs.Construction("model from blueprint "+bp.Name, err)
	}

	criterion, err := resolveOrDelegate(a.criterion, a.newCriterion, a.handlerCriterion)
	if err != nil {
		return Restored{}, err
	}

	weights, err := state.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Restored{}, errdefs.FileNotFound("model file", path, err)
		}
		return Restored{}, errdefs.StateLoad(path, err)
	}

	if err := nn.LoadStateDict(model, weights); err != nil {
		return Restored{}, errdefs.StateLoad(path, err)
	}

	a.logger.Info("Loaded model", "path", path, "blueprint", bp.Name)

	return Restored{Model: model, Criterion: criterion}, nil
}

func (a *Assembler) newCriterion(spec *criterionSpec) (loss.Criterion, error) {
	c, err := spec.new(a.lossConfig)
	if err != nil {
		return nil, errdefs.Construction("criterion "+spec.name, err)
	}
	return c, nil
}

func (a *Assembler) targetBlueprint() (*blueprint.Blueprint, error) {
	if a.handler == nil {
		return nil, ErrNoHandler
	}

	bp, err := a.handler.TargetBlueprint()
	if err != nil {
		return nil, err
	}
	if bp == nil {
		return nil, fmt.Errorf("handler has no target blueprint: %w", ErrNotResolved)
	}
	return bp, nil
}

func (a *Assembler) handlerCriterion() (loss.Criterion, error) {
	if a.handler == nil {
		return nil, errdefs.Construction("criterion", ErrNoHandler)
	}

	c, err := a.handler.Criterion()
	if err != nil {
		return nil, errdefs.Construction("criterion from handler", err)
	}
	return c, nil
}
