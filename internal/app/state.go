// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"roilab/internal/config"
	"roilab/internal/descriptor"
	"roilab/internal/plugin"
	"roilab/internal/prefs"
	"roilab/internal/roi"
	"roilab/internal/sequence"
	"roilab/internal/worker"
)

// State holds the application state: open sequences, ROI selection,
// the descriptor and plugin registries, and shell configuration.
type State struct {
	mu sync.RWMutex

	Config config.Config
	Prefs  *prefs.Prefs

	sequences []*sequence.Sequence
	active    *sequence.Sequence

	selected roi.ROI
	focused  roi.ROI

	descriptors *descriptor.Registry
	cache       *descriptor.Cache
	plugins     *plugin.Registry
	recompute   *worker.SingleRunner

	logger zerolog.Logger

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventSequenceOpened EventType = iota
	EventSequenceClosed
	EventROIAdded
	EventROIRemoved
	EventSelectionChanged
	EventFocusChanged
	EventPluginExecuted
	EventDescriptorsComputed
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state wired to the default descriptor
// registry.
func NewState(cfg config.Config, logger zerolog.Logger) *State {
	reg := descriptor.DefaultRegistry()
	cache := descriptor.NewCache(reg)
	cache.SetEnabled(cfg.Cache)
	plugins := plugin.NewRegistry()
	plugins.SetLogger(logger)
	recompute := worker.NewSingleRunner()
	recompute.OnError = func(err error) {
		if !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Msg("descriptor recompute failed")
		}
	}

	return &State{
		Config:      cfg,
		Prefs:       prefs.Load(),
		descriptors: reg,
		cache:       cache,
		plugins:     plugins,
		recompute:   recompute,
		logger:      logger,
		listeners:   make(map[EventType][]EventListener),
	}
}

// Logger returns the shell logger.
func (s *State) Logger() zerolog.Logger { return s.logger }

// Descriptors returns the descriptor registry.
func (s *State) Descriptors() *descriptor.Registry { return s.descriptors }

// Cache returns the descriptor result cache.
func (s *State) Cache() *descriptor.Cache { return s.cache }

// Plugins returns the plugin registry.
func (s *State) Plugins() *plugin.Registry { return s.plugins }

// Recompute returns the shared background runner for descriptor rebuilds.
func (s *State) Recompute() *worker.SingleRunner { return s.recompute }

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// AddSequence registers an open sequence and makes it active. ROIs attached
// to the sequence from anywhere, plugins included, are wired to the
// descriptor cache through the attach listener.
func (s *State) AddSequence(seq *sequence.Sequence) {
	seq.OnROIChange(func(r roi.ROI, attached bool) {
		if attached {
			s.cache.Attach(r)
			s.Emit(EventROIAdded, r)
			s.scheduleRecompute(seq)
			return
		}
		s.cache.Forget(r)
		s.mu.Lock()
		wasSelected := s.selected == r
		wasFocused := s.focused == r
		if wasSelected {
			s.selected = nil
		}
		if wasFocused {
			s.focused = nil
		}
		s.mu.Unlock()
		if wasSelected {
			r.SetSelected(false)
		}
		if wasFocused {
			r.SetFocused(false)
		}
		s.Emit(EventROIRemoved, r)
	})

	s.mu.Lock()
	s.sequences = append(s.sequences, seq)
	s.active = seq
	s.mu.Unlock()
	s.Emit(EventSequenceOpened, seq)
}

// scheduleRecompute queues a background descriptor pass warming the cache
// for every ROI attached to seq, then emits EventDescriptorsComputed.
// Bursts of attachments collapse to a single pass on the runner.
func (s *State) scheduleRecompute(seq *sequence.Sequence) {
	s.recompute.Submit(func(ctx context.Context) error {
		for _, r := range seq.ROIs() {
			for _, d := range s.descriptors.All() {
				_, err := s.cache.Compute(ctx, d, r, seq)
				switch {
				case err == nil:
				case errors.Is(err, descriptor.ErrUnsupported),
					errors.Is(err, descriptor.ErrNilSequence):
				default:
					return err
				}
			}
		}
		s.Emit(EventDescriptorsComputed, seq)
		return nil
	})
}

// CloseSequence removes a sequence. The most recently opened remaining
// sequence becomes active.
func (s *State) CloseSequence(seq *sequence.Sequence) {
	s.mu.Lock()
	for i, candidate := range s.sequences {
		if candidate == seq {
			s.sequences = append(s.sequences[:i], s.sequences[i+1:]...)
			break
		}
	}
	if s.active == seq {
		s.active = nil
		if n := len(s.sequences); n > 0 {
			s.active = s.sequences[n-1]
		}
	}
	s.mu.Unlock()
	s.Emit(EventSequenceClosed, seq)
}

// Active returns the active sequence, or nil when nothing is open.
func (s *State) Active() *sequence.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Sequences returns a snapshot of the open sequences.
func (s *State) Sequences() []*sequence.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*sequence.Sequence, len(s.sequences))
	copy(out, s.sequences)
	return out
}

// AddROI attaches r to the active sequence. Cache wiring and the ROIAdded
// event come from the sequence attach listener.
func (s *State) AddROI(r roi.ROI) {
	if seq := s.Active(); seq != nil {
		seq.AddROI(r)
	}
}

// RemoveROI detaches r from the active sequence. Cached descriptor values
// are dropped and stale selection or focus cleared by the detach listener.
func (s *State) RemoveROI(r roi.ROI) {
	if seq := s.Active(); seq != nil {
		seq.RemoveROI(r)
	}
}

// Select makes r the selected ROI. Passing nil clears the selection. The
// affected ROIs publish SelectionChanged through their own dispatchers.
func (s *State) Select(r roi.ROI) {
	s.mu.Lock()
	if s.selected == r {
		s.mu.Unlock()
		return
	}
	prev := s.selected
	s.selected = r
	s.mu.Unlock()
	if prev != nil {
		prev.SetSelected(false)
	}
	if r != nil {
		r.SetSelected(true)
	}
	s.Emit(EventSelectionChanged, r)
}

// Selected returns the selected ROI, or nil.
func (s *State) Selected() roi.ROI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Focus makes r the focused ROI. Passing nil clears the focus.
func (s *State) Focus(r roi.ROI) {
	s.mu.Lock()
	if s.focused == r {
		s.mu.Unlock()
		return
	}
	prev := s.focused
	s.focused = r
	s.mu.Unlock()
	if prev != nil {
		prev.SetFocused(false)
	}
	if r != nil {
		r.SetFocused(true)
	}
	s.Emit(EventFocusChanged, r)
}

// Focused returns the focused ROI, or nil.
func (s *State) Focused() roi.ROI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focused
}

// Close shuts down background work and persists preferences.
func (s *State) Close() error {
	s.recompute.Close()
	return s.Prefs.Save()
}
