package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"roilab/internal/descriptor"
	"roilab/internal/sequence"
)

// ErrNotFound reports that no plugin matches the requested name. Callers
// branch on it with errors.Is.
var ErrNotFound = errors.New("plugin not found")

// Env is the execution environment handed to a plugin. Fields may be nil
// when the host has nothing to offer (headless runs without an image, for
// example).
type Env struct {
	Sequence    *sequence.Sequence
	Descriptors *descriptor.Registry
	OutputDir   string

	// Workers bounds the plugin's parallel work. Zero means one goroutine
	// per CPU.
	Workers int

	logger zerolog.Logger
}

// SetLogger replaces the environment logger.
func (e *Env) SetLogger(logger zerolog.Logger) {
	e.logger = logger
}

// Logger returns the environment logger.
func (e *Env) Logger() zerolog.Logger {
	return e.logger
}

// Executable is implemented by plugins that can run headless.
type Executable interface {
	Descriptor() *Descriptor
	Run(ctx context.Context, env *Env, args []string) error
}

// Registry tracks known plugins: built-in executables registered at startup
// plus descriptors discovered from XML files on disk.
type Registry struct {
	mu          sync.RWMutex
	executables map[string]Executable
	descriptors map[string]*Descriptor

	logger zerolog.Logger
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		executables: make(map[string]Executable),
		descriptors: make(map[string]*Descriptor),
		logger:      zerolog.Nop(),
	}
}

// SetLogger replaces the registry logger.
func (r *Registry) SetLogger(logger zerolog.Logger) {
	r.logger = logger
}

// Register adds a built-in executable plugin. A later registration with the
// same class name wins only when its version is greater.
func (r *Registry) Register(exe Executable) error {
	d := exe.Descriptor()
	if d == nil || d.ClassName == "" {
		return fmt.Errorf("plugin has no class name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.executables[d.ClassName]; ok {
		if !d.Version.IsGreater(prev.Descriptor().Version) {
			return fmt.Errorf("plugin %s %s already registered", d.ClassName, prev.Descriptor().Version)
		}
	}
	r.executables[d.ClassName] = exe
	r.descriptors[d.ClassName] = d
	r.logger.Debug().Str("plugin", d.ClassName).Str("version", d.Version.String()).Msg("plugin registered")
	return nil
}

// DiscoverDir scans dir for *.xml plugin descriptors and records them.
// A missing directory is not an error. Returns the number of descriptors
// loaded.
func (r *Registry) DiscoverDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading plugin dir: %w", err)
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			r.logger.Warn().Err(err).Str("path", path).Msg("skipping plugin descriptor")
			continue
		}
		d, err := LoadXML(f)
		f.Close()
		if err != nil {
			r.logger.Warn().Err(err).Str("path", path).Msg("skipping plugin descriptor")
			continue
		}
		r.mu.Lock()
		prev, ok := r.descriptors[d.ClassName]
		if !ok || d.Version.IsGreater(prev.Version) {
			r.descriptors[d.ClassName] = d
			loaded++
		}
		r.mu.Unlock()
	}
	return loaded, nil
}

// Find locates a plugin descriptor by class name or simple name. Simple
// name matching is case-insensitive and requires a unique match.
func (r *Registry) Find(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.descriptors[name]; ok {
		return d, nil
	}
	var found *Descriptor
	for _, d := range r.descriptors {
		if strings.EqualFold(d.SimpleName(), name) {
			if found != nil {
				return nil, fmt.Errorf("plugin name %q is ambiguous", name)
			}
			found = d
		}
	}
	if found == nil {
		return nil, fmt.Errorf("plugin %q: %w", name, ErrNotFound)
	}
	return found, nil
}

// Descriptors returns all known descriptors ordered by class name.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out
}

// Launch resolves name to an executable plugin and runs it. The kernel
// version gate is checked first: a plugin requiring a newer kernel than
// ours refuses to start.
func (r *Registry) Launch(ctx context.Context, name string, env *Env, args []string, kernel Version) error {
	d, err := r.Find(name)
	if err != nil {
		return err
	}
	if !kernel.IsZero() && d.RequiredKernelVersion.IsGreater(kernel) {
		return fmt.Errorf("plugin %s requires kernel %s, have %s",
			d.ClassName, d.RequiredKernelVersion, kernel)
	}
	r.mu.RLock()
	exe, ok := r.executables[d.ClassName]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("plugin %s has no executable entry point", d.ClassName)
	}
	if env == nil {
		env = &Env{}
	}
	env.logger = r.logger.With().Str("plugin", d.SimpleName()).Logger()
	env.logger.Info().Str("version", d.Version.String()).Msg("launching plugin")
	if err := exe.Run(ctx, env, args); err != nil {
		return fmt.Errorf("plugin %s: %w", d.ClassName, err)
	}
	return nil
}
