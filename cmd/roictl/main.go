// Command roictl inspects roilab artifacts from the command line: plugin
// descriptors, saved ROI files, and the built-in descriptor set.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"roilab/internal/descriptor"
	"roilab/internal/plugin"
	"roilab/internal/roi"
	"roilab/internal/sequence"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "roictl",
		Short:         "Inspect roilab plugins, ROI files and descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// plugin group
	pluginCmd := &cobra.Command{Use: "plugin", Short: "Work with plugin descriptors"}
	pluginList := &cobra.Command{
		Use:   "list <dir>",
		Short: "List plugin descriptors in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := plugin.NewRegistry()
			n, err := reg.DiscoverDir(args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Println("no plugin descriptors found")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLASS\tVERSION\tKERNEL\tNAME")
			for _, d := range reg.Descriptors() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					d.ClassName, d.Version, d.RequiredKernelVersion, d.Name)
			}
			return w.Flush()
		},
	}
	pluginInspect := &cobra.Command{
		Use:   "inspect <xml>",
		Short: "Show one plugin descriptor in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			d, err := plugin.LoadXML(f)
			if err != nil {
				return err
			}
			fmt.Printf("class:       %s\n", d.ClassName)
			fmt.Printf("version:     %s\n", d.Version)
			fmt.Printf("kernel:      %s\n", d.RequiredKernelVersion)
			fmt.Printf("name:        %s\n", d.Name)
			if d.Author != "" {
				fmt.Printf("author:      %s\n", d.Author)
			}
			if d.Description != "" {
				fmt.Printf("description: %s\n", d.Description)
			}
			for _, dep := range d.Dependencies {
				fmt.Printf("dependency:  %s (any)\n", dep.ClassName)
			}
			return nil
		},
	}
	pluginCmd.AddCommand(pluginList, pluginInspect)
	root.AddCommand(pluginCmd)

	// roi group
	roiCmd := &cobra.Command{Use: "roi", Short: "Work with saved ROI files"}
	roiValidate := &cobra.Command{
		Use:   "validate <xml>",
		Short: "Parse a ROI file and report its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rois, err := loadROIFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d rois ok\n", args[0], len(rois))
			for _, r := range rois {
				fmt.Printf("  %s (%s)\n", r.Name(), r.TypeName())
			}
			return nil
		},
	}
	var statsImage string
	roiStats := &cobra.Command{
		Use:   "stats <xml>",
		Short: "Compute the descriptor table for a ROI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rois, err := loadROIFile(args[0])
			if err != nil {
				return err
			}
			var seq *sequence.Sequence
			if statsImage != "" {
				if seq, err = sequence.Load(statsImage); err != nil {
					return err
				}
			}
			reg := descriptor.DefaultRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, r := range rois {
				results, err := reg.ComputeAll(context.Background(), r, seq)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s (%s)\n", r.Name(), r.TypeName())
				for _, res := range results {
					unit := res.Descriptor.Unit(seq)
					fmt.Fprintf(w, "  %s\t%g\t%s\n", res.Descriptor.ID(), res.Value, unit)
				}
			}
			return w.Flush()
		},
	}
	roiStats.Flags().StringVar(&statsImage, "image", "", "image to sample intensities from")
	roiCmd.AddCommand(roiValidate, roiStats)
	root.AddCommand(roiCmd)

	// descriptor group
	descriptorCmd := &cobra.Command{Use: "descriptor", Short: "Work with the descriptor set"}
	descriptorList := &cobra.Command{
		Use:   "list",
		Short: "List the built-in descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, d := range descriptor.DefaultRegistry().All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID(), d.Name(), d.Description())
			}
			return w.Flush()
		},
	}
	descriptorCmd.AddCommand(descriptorList)
	root.AddCommand(descriptorCmd)

	return root
}

func loadROIFile(path string) ([]roi.ROI, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return roi.LoadROIs(f)
}
