package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// Profile type names accepted in ProfilerConfig.ProfileTypes
const (
	ProfileTypeCPU           = "cpu"
	ProfileTypeAllocObjects  = "alloc_objects"
	ProfileTypeAllocSpace    = "alloc_space"
	ProfileTypeInuseObjects  = "inuse_objects"
	ProfileTypeInuseSpace    = "inuse_space"
	ProfileTypeGoroutines    = "goroutines"
	ProfileTypeMutexCount    = "mutex_count"
	ProfileTypeMutexDuration = "mutex_duration"
	ProfileTypeBlockCount    = "block_count"
	ProfileTypeBlockDuration = "block_duration"
)

var profileTypes = map[string]pyroscope.ProfileType{
	ProfileTypeCPU:           pyroscope.ProfileCPU,
	ProfileTypeAllocObjects:  pyroscope.ProfileAllocObjects,
	ProfileTypeAllocSpace:    pyroscope.ProfileAllocSpace,
	ProfileTypeInuseObjects:  pyroscope.ProfileInuseObjects,
	ProfileTypeInuseSpace:    pyroscope.ProfileInuseSpace,
	ProfileTypeGoroutines:    pyroscope.ProfileGoroutines,
	ProfileTypeMutexCount:    pyroscope.ProfileMutexCount,
	ProfileTypeMutexDuration: pyroscope.ProfileMutexDuration,
	ProfileTypeBlockCount:    pyroscope.ProfileBlockCount,
	ProfileTypeBlockDuration: pyroscope.ProfileBlockDuration,
}

// DefaultProfileTypes is used when ProfilerConfig.ProfileTypes is empty
var DefaultProfileTypes = []string{
	ProfileTypeCPU,
	ProfileTypeAllocSpace,
	ProfileTypeInuseSpace,
	ProfileTypeGoroutines,
}

// ProfilerConfig holds Pyroscope continuous profiling configuration.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string
	MutexFraction     int // default 5 when mutex profiles are on
	BlockRate         int // default 5 when block profiles are on
}

// ResolveProfileTypes maps profile type names to Pyroscope types. An empty
// list resolves to DefaultProfileTypes.
func ResolveProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	if len(names) == 0 {
		names = DefaultProfileTypes
	}
	out := make([]pyroscope.ProfileType, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		t, ok := profileTypes[name]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, t)
	}
	return out, nil
}

// Profiler wraps the Pyroscope profiler with lifecycle management.
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	config   ProfilerConfig
	mu       sync.Mutex
	stopped  bool
}

// NewProfiler starts a Pyroscope profiler. A disabled config returns a
// profiler whose Stop is a no-op.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return p, nil
	}

	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiler application name is required when profiling is enabled")
	}

	types, err := ResolveProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}
	configureRuntimeSampling(cfg, types, logger)

	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            newPyroscopeLogger(logger),
		Tags:              tags,
		ProfileTypes:      types,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(types)),
	)
	return p, nil
}

func configureRuntimeSampling(cfg ProfilerConfig, types []pyroscope.ProfileType, logger *zap.Logger) {
	var mutex, block bool
	for _, t := range types {
		switch t {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			mutex = true
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			block = true
		}
	}
	if mutex {
		fraction := cfg.MutexFraction
		if fraction <= 0 {
			fraction = 5
		}
		runtime.SetMutexProfileFraction(fraction)
		logger.Debug("Mutex profiling enabled", zap.Int("fraction", fraction))
	}
	if block {
		rate := cfg.BlockRate
		if rate <= 0 {
			rate = 5
		}
		runtime.SetBlockProfileRate(rate)
		logger.Debug("Block profiling enabled", zap.Int("rate", rate))
	}
}

// Stop flushes pending profiles. Safe to call multiple times.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.profiler == nil {
		p.stopped = true
		return nil
	}
	p.stopped = true

	if err := p.profiler.Stop(); err != nil {
		p.logger.Error("Error stopping profiler", zap.Error(err))
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	p.logger.Info("Pyroscope profiler stopped")
	return nil
}

// IsEnabled returns whether profiles are being collected.
func (p *Profiler) IsEnabled() bool {
	return p.config.Enabled && p.profiler != nil
}

type pyroscopeLogger struct {
	sugar *zap.SugaredLogger
}

func newPyroscopeLogger(logger *zap.Logger) pyroscope.Logger {
	return &pyroscopeLogger{sugar: logger.Named("pyroscope").Sugar()}
}

func (l *pyroscopeLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *pyroscopeLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *pyroscopeLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
