package app

import (
	"context"
	"fmt"
	"time"

	"roilab/internal/plugin"
	"roilab/internal/sequence"
	"roilab/internal/version"
)

// RunOptions controls a headless session.
type RunOptions struct {
	ImagePath  string   // optional input image or stack member
	Execute    string   // plugin class or simple name; empty means no execution
	PluginArgs []string // arguments passed through to the plugin
	StayAlive  bool     // keep the process running after execution
}

// watchInterval is how often the plugin directory is polled while the
// shell stays alive.
const watchInterval = 2 * time.Second

// Run drives a headless session: open the input image, discover plugins,
// execute the requested one, then either exit or stay alive watching the
// plugin directory.
func (s *State) Run(ctx context.Context, opts RunOptions) error {
	if opts.ImagePath != "" {
		seq, err := sequence.Load(opts.ImagePath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", opts.ImagePath, err)
		}
		s.AddSequence(seq)
		s.logger.Info().Str("image", opts.ImagePath).
			Int("width", seq.Width()).Int("height", seq.Height()).
			Msg("sequence opened")
	}

	n, err := s.plugins.DiscoverDir(s.Config.PluginDir)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug().Int("count", n).Str("dir", s.Config.PluginDir).Msg("plugin descriptors discovered")
	}

	if opts.Execute != "" {
		if err := s.ExecutePlugin(ctx, opts.Execute, opts.PluginArgs); err != nil {
			return err
		}
	}

	if !opts.StayAlive {
		return nil
	}

	watcher := plugin.NewWatcher(s.Config.PluginDir, watchInterval)
	watcher.OnChange(func() {
		if _, err := s.plugins.DiscoverDir(s.Config.PluginDir); err != nil {
			s.logger.Warn().Err(err).Msg("plugin rescan failed")
		} else {
			s.logger.Info().Msg("plugin directory changed, descriptors reloaded")
		}
	})
	watcher.Start()
	defer watcher.Stop()

	s.logger.Info().Msg("staying alive, interrupt to exit")
	<-ctx.Done()
	return nil
}

// ExecutePlugin launches the named plugin against the active sequence.
func (s *State) ExecutePlugin(ctx context.Context, name string, args []string) error {
	env := &plugin.Env{
		Sequence:    s.Active(),
		Descriptors: s.descriptors,
		OutputDir:   s.Config.OutputDir,
		Workers:     s.Config.Workers,
	}
	if err := s.plugins.Launch(ctx, name, env, args, KernelVersion()); err != nil {
		return err
	}
	s.Emit(EventPluginExecuted, name)
	return nil
}

// KernelVersion reports the shell version used for plugin compatibility
// gating.
func KernelVersion() plugin.Version {
	v, err := plugin.ParseVersion(version.Version)
	if err != nil {
		return plugin.Version{}
	}
	return v
}
