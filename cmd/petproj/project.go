package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"petproj/internal/models"
	"petproj/pkg/compression"
	"petproj/pkg/config"
	"petproj/pkg/engine"
	"petproj/pkg/grid"
	"petproj/pkg/interfile"
	"petproj/pkg/metrics"
	"petproj/pkg/phantom"
	"petproj/pkg/projector"
	"petproj/pkg/visualization"
)

var (
	phantomArg  string
	outputArg   string
	imagesArg   bool
	subsetArg   int
	subsetsArg  int
	zstdLevel   int
	checkAdjArg bool
)

var forwardCmd = &cobra.Command{
	Use:   "forward [VOLUME_HEADER]",
	Short: "Forward project a volume into projection data",
	Long: `Forward project a volume into projection data.

The volume is read from an interfile header, or generated with --phantom
(derenzo or cylinder) on the default grid of the configured scanner.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		desc, err := descriptor(cfg)
		if err != nil {
			return err
		}

		var g grid.Grid
		var vol *models.Array
		switch {
		case len(args) == 1:
			if g, vol, err = interfile.ReadVolume(args[0]); err != nil {
				return err
			}
		case phantomArg != "":
			if g, err = desc.DefaultGrid(cfg.GridOptions()); err != nil {
				return err
			}
			if vol, err = makePhantom(phantomArg, g); err != nil {
				return err
			}
		default:
			return fmt.Errorf("either a volume header or --phantom is required")
		}

		f, err := newForward(cmd, cfg, logger, g, desc)
		if err != nil {
			return err
		}

		start := time.Now()
		proj, err := f.Apply(vol)
		if err != nil {
			return err
		}
		logger.Info("Forward projection done", "duration", time.Since(start))
		report(cmd, "projection data", proj)

		if checkAdjArg {
			if err := checkAdjoint(cmd, f, vol, proj); err != nil {
				return err
			}
		}

		out := outputPath(cfg, outputArg, "projection.hs")
		if err := interfile.WriteProjData(out, desc, proj, writeOptions(cfg)...); err != nil {
			return err
		}
		logger.Info("Wrote projection data", "path", out)

		if phantomArg != "" {
			volOut := filepath.Join(filepath.Dir(out), "phantom.hv")
			if err := interfile.WriteVolume(volOut, g, vol, writeOptions(cfg)...); err != nil {
				return err
			}
			logger.Info("Wrote phantom", "path", volOut)
		}

		if imagesArg {
			return saveSinograms(cfg, desc, proj, logger)
		}
		return nil
	},
}

var backCmd = &cobra.Command{
	Use:   "back PROJECTION_HEADER",
	Short: "Back project projection data into a volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		desc, proj, err := interfile.ReadProjData(args[0], cfg.Scanner.Catalog())
		if err != nil {
			return err
		}
		g, err := desc.DefaultGrid(cfg.GridOptions())
		if err != nil {
			return err
		}

		f, err := newForward(cmd, cfg, logger, g, desc)
		if err != nil {
			return err
		}

		start := time.Now()
		vol, err := f.Back().Apply(proj)
		if err != nil {
			return err
		}
		logger.Info("Back projection done", "duration", time.Since(start))
		report(cmd, "volume", vol)

		out := outputPath(cfg, outputArg, "backprojection.hv")
		if err := interfile.WriteVolume(out, g, vol, writeOptions(cfg)...); err != nil {
			return err
		}
		logger.Info("Wrote volume", "path", out)

		if imagesArg {
			dir := filepath.Join(cfg.Output.Dir, "slices")
			if err := visualization.NewViewer(vol).SaveSliceSequence("z", dir); err != nil {
				return err
			}
			logger.Info("Saved slices", "dir", dir)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{forwardCmd, backCmd} {
		f := c.Flags()
		f.StringVarP(&outputArg, "output", "o", "", "output header path")
		f.BoolVar(&imagesArg, "images", false, "also save images of the result")
		f.IntVar(&subsetArg, "subset", 0, "subset index")
		f.IntVar(&subsetsArg, "num-subsets", 0, "number of view subsets")
		f.IntVar(&zstdLevel, "zstd", 3, "zstd level used when output compression is enabled")
	}
	forwardCmd.Flags().StringVar(&phantomArg, "phantom", "", "generate the input volume: derenzo or cylinder")
	forwardCmd.Flags().BoolVar(&checkAdjArg, "check-adjoint", false, "report <Ax, y> against <x, A*y>")

	rootCmd.AddCommand(forwardCmd, backCmd)
}

func newForward(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, g grid.Grid, desc *compression.Descriptor) (*projector.Forward, error) {
	if cmd.Flags().Changed("num-subsets") {
		cfg.Projector.NumSubsets = subsetsArg
	}
	if cmd.Flags().Changed("subset") {
		cfg.Projector.Subset = subsetArg
	}

	cache, err := engine.NewCache(cfg.Projector.CacheSize)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	f, err := projector.NewForward(g, desc, models.NewArray(g.Shape()), models.NewArray(desc.Shape()),
		projector.WithSubset(cfg.Projector.Subset, cfg.Projector.NumSubsets),
		projector.WithTangentialLORs(cfg.Projector.TangentialLORs),
		projector.WithRestrictToCylindricalFOV(cfg.Projector.RestrictToCylindricalFOV),
		projector.WithWorkers(cfg.Projector.NumCores),
		projector.WithCache(cache),
		projector.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Projection engine ready",
		"grid", g.String(), "sinograms", desc.NumSinograms(), "duration", time.Since(start))
	return f, nil
}

func makePhantom(name string, g grid.Grid) (*models.Array, error) {
	switch name {
	case "derenzo":
		return phantom.Derenzo(g), nil
	case "cylinder":
		return phantom.Cylinder(g, 0.8, 1), nil
	default:
		return nil, fmt.Errorf("unknown phantom %q (must be derenzo or cylinder)", name)
	}
}

func checkAdjoint(cmd *cobra.Command, f *projector.Forward, vol, proj *models.Array) error {
	y := f.Range().One()
	back, err := f.Back().Apply(y)
	if err != nil {
		return err
	}
	lhs, err := metrics.Dot(proj, y)
	if err != nil {
		return err
	}
	rhs, err := metrics.Dot(vol, back)
	if err != nil {
		return err
	}
	rel := 0.0
	if rhs != 0 {
		rel = (lhs - rhs) / rhs
	}
	fmt.Fprintf(cmd.OutOrStdout(), "<Ax, y> = %g, <x, A*y> = %g, relative difference %.2e\n", lhs, rhs, rel)
	return nil
}

func report(cmd *cobra.Command, what string, a *models.Array) {
	s := metrics.Summarize(a)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %v: %s values, min %g, max %g, mean %g, sum %g\n",
		what, a.Shape, humanize.Comma(int64(s.Count)), s.Min, s.Max, s.Mean, s.Sum)
}

func outputPath(cfg *config.Config, explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(cfg.Output.Dir, name)
}

func writeOptions(cfg *config.Config) []interfile.WriteOption {
	if !cfg.Output.Compress {
		return nil
	}
	return []interfile.WriteOption{interfile.WithZstd(zstdLevel)}
}

func saveSinograms(cfg *config.Config, desc *compression.Descriptor, proj *models.Array, logger *slog.Logger) error {
	dir := filepath.Join(cfg.Output.Dir, "sinograms")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, seg := range desc.Segments() {
		n, err := desc.NumAxial(seg)
		if err != nil {
			return err
		}
		img, err := visualization.Sinogram(desc, proj, seg, n/2)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("segment_%+d.png", seg))
		if err := visualization.SaveSlice(img, name); err != nil {
			return err
		}
	}
	logger.Info("Saved sinograms", "dir", dir)
	return nil
}
