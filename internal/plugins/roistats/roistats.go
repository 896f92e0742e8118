// Package roistats exports the descriptor table of every attached ROI to CSV.
package roistats

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"roilab/internal/descriptor"
	"roilab/internal/plugin"
	"roilab/internal/roi"
	"roilab/internal/worker"
)

// ClassName is the plugin identity.
const ClassName = "roilab.plugins.roistats"

// Plugin computes every registered descriptor for every ROI attached to
// the open sequence and writes one CSV row per ROI. Descriptors that do
// not apply to a ROI's dimensionality leave an empty cell.
type Plugin struct {
	desc *plugin.Descriptor
}

// New creates the plugin with its descriptor metadata.
func New() *Plugin {
	d := plugin.NewDescriptor(ClassName, plugin.Version{Major: 1})
	d.Author = "roilab"
	d.Description = "Exports ROI descriptor statistics to CSV"
	return &Plugin{desc: d}
}

// Register adds the plugin to reg.
func Register(reg *plugin.Registry) error {
	return reg.Register(New())
}

// Descriptor returns the plugin metadata.
func (p *Plugin) Descriptor() *plugin.Descriptor { return p.desc }

// Run computes the descriptor table and writes it to out (default
// roistats.csv in the environment output directory).
func (p *Plugin) Run(ctx context.Context, env *plugin.Env, args []string) error {
	fs := flag.NewFlagSet("roistats", flag.ContinueOnError)
	out := fs.String("out", "roistats.csv", "output CSV file name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if env.Sequence == nil {
		return fmt.Errorf("no sequence open")
	}
	if env.Descriptors == nil {
		return fmt.Errorf("no descriptor registry")
	}
	rois := env.Sequence.ROIs()
	if len(rois) == 0 {
		logger := env.Logger()
		logger.Warn().Msg("sequence has no rois, nothing to export")
		return nil
	}

	descriptors := env.Descriptors.All()
	header := []string{"roi", "type"}
	for _, d := range descriptors {
		header = append(header, d.ID())
	}

	rows := make([][]string, len(rois))
	err := worker.Map(ctx, len(rois), env.Workers, func(ctx context.Context, i int) error {
		row, err := p.row(ctx, env, rois[i], descriptors)
		if err != nil {
			return err
		}
		rows[i] = row
		return nil
	})
	if err != nil {
		return err
	}

	path := filepath.Join(env.OutputDir, *out)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	logger := env.Logger()
	logger.Info().Str("path", path).Int("rois", len(rois)).Msg("descriptor table written")
	return nil
}

// row evaluates the descriptor columns for one ROI. Unsupported
// descriptors produce empty cells so every row has the same shape.
func (p *Plugin) row(ctx context.Context, env *plugin.Env, r roi.ROI, descriptors []descriptor.Descriptor) ([]string, error) {
	results, err := env.Descriptors.ComputeAll(ctx, r, env.Sequence)
	if err != nil {
		return nil, fmt.Errorf("roi %s: %w", r.Name(), err)
	}
	values := make(map[string]float64, len(results))
	for _, res := range results {
		values[res.Descriptor.ID()] = res.Value
	}

	row := []string{r.Name(), r.TypeName()}
	for _, d := range descriptors {
		if v, ok := values[d.ID()]; ok {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		} else {
			row = append(row, "")
		}
	}
	return row, nil
}
