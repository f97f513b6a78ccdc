package commands

import (
	"github.com/spf13/viper"
	"github.com/teranos/typeshape/cmd/shapectl/catalog"
	"github.com/teranos/typeshape/config"
	"github.com/teranos/typeshape/convention"
	"github.com/teranos/typeshape/convert"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/inspector"
	"github.com/teranos/typeshape/logger"
	"github.com/teranos/typeshape/nullability"
	"go.uber.org/zap"
)

var (
	current      *config.Config
	currentViper *viper.Viper
	configPath   string

	// Verbosity is the -v count of the running command.
	Verbosity int
)

// Setup loads and validates the configuration used by every command. An
// empty path searches for typeshape.toml from the working directory up.
func Setup(path string) (*config.Config, error) {
	v, err := config.LoadViper(path)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	current, currentViper, configPath = cfg, v, v.ConfigFileUsed()
	return cfg, nil
}

// engine is one configured set of typeshape components.
type engine struct {
	registry  *convention.Registry
	ctx       *convention.Context
	inspector *inspector.Inspector
	convert   *convert.Registry
}

func newEngine(cfg *config.Config) (*engine, error) {
	var source nullability.AnnotationSource
	if cfg.Nullability.AnnotationFile != "" {
		a, err := nullability.LoadAnnotationFile(cfg.Nullability.AnnotationFile)
		if err != nil {
			return nil, err
		}
		source = a
	}

	registry := convention.NewRegistry()
	convention.Register[inspector.InspectionPolicy](registry, cfg.Conventions.DefaultScope,
		inspector.PolicyFactory(cfg.DefaultContext()))

	ctx := convention.NewContext(registry,
		convention.WithDefaultScope(cfg.Conventions.DefaultScope),
		convention.WithLogger(logger.ComponentLogger("convention")))

	// Converter creation is logged per type pair; only -vvv wants that.
	convLog := zap.NewNop().Sugar()
	if logger.ShouldLogTrace(Verbosity) {
		convLog = logger.ComponentLogger("convert")
	}
	conv := convert.New(
		convert.WithScalars(cfg.Conversion.Scalars),
		convert.WithLogger(convLog))
	catalog.RegisterEnums(conv)

	insp := inspector.New(
		inspector.WithAnnotations(source),
		inspector.WithConventions(ctx, ""))

	return &engine{
		registry:  registry,
		ctx:       ctx,
		inspector: insp,
		convert:   conv,
	}, nil
}

func currentEngine() (*engine, error) {
	if current == nil {
		if _, err := Setup(""); err != nil {
			return nil, err
		}
	}
	return newEngine(current)
}
