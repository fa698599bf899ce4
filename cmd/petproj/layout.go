package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"petproj/pkg/config"
	"petproj/pkg/scanner"
)

var scannersCmd = &cobra.Command{
	Use:   "scanners",
	Short: "List the built-in scanner geometries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := scanner.Builtin()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tRINGS\tDETECTORS\tRADIUS (mm)\tCONSISTENT")
		for _, name := range catalog.Names() {
			g, err := catalog.Lookup(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%t\n",
				g.Name, g.NumRings, g.NumDetectorsPerRing, g.InnerRingRadius, g.CheckConsistency())
		}
		return w.Flush()
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the sinogram layout of the configured scanner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		desc, err := descriptor(cfg)
		if err != nil {
			return err
		}
		g, err := desc.DefaultGrid(cfg.GridOptions())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		shape := desc.Shape()
		fmt.Fprintf(out, "Scanner:                 %s\n", desc.Scanner().Name)
		fmt.Fprintf(out, "Span:                    %d\n", desc.Span())
		fmt.Fprintf(out, "Maximum ring difference: %d\n", desc.MaxRingDifference())
		fmt.Fprintf(out, "Segments:                %d to %d\n", desc.MinSegment(), desc.MaxSegment())
		fmt.Fprintf(out, "Views:                   %d\n", desc.Views())
		fmt.Fprintf(out, "Tangential bins:         %d (%.3f mm, arc corrected: %t)\n",
			desc.TangentialBins(), desc.BinSize(), desc.ArcCorrected())
		fmt.Fprintf(out, "Projection data:         %v, %s values, %s\n", shape,
			humanize.Comma(int64(shape[0]*shape[1]*shape[2])),
			humanize.IBytes(uint64(shape[0]*shape[1]*shape[2]*4)))
		fmt.Fprintf(out, "Default volume:          %s, %s\n", g, humanize.IBytes(uint64(g.Size()*4)))

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\nSEGMENT\tRING DIFFERENCES\tAXIAL\tFIRST OFFSET")
		for _, seg := range desc.Segments() {
			s, err := desc.Segment(seg)
			if err != nil {
				return err
			}
			first, err := desc.Offset(seg, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t[%d, %d]\t%d\t%d\n", seg, s.MinRingDiff, s.MaxRingDiff, s.NumAxial, first)
		}
		return w.Flush()
	},
}

var offsetCmd = &cobra.Command{
	Use:   "offset SEGMENT AXIAL | offset --locate OFFSET",
	Short: "Convert between (segment, axial position) and sinogram offset",
	Long: `Convert between (segment, axial position) and sinogram offset.

Negative segments must follow "--", for example: petproj offset -- -1 3`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		desc, err := descriptor(cfg)
		if err != nil {
			return err
		}

		nums := make([]int, len(args))
		for i, a := range args {
			if nums[i], err = strconv.Atoi(a); err != nil {
				return fmt.Errorf("invalid argument %q: %w", a, err)
			}
		}

		locate, _ := cmd.Flags().GetBool("locate")
		if locate {
			if len(nums) != 1 {
				return fmt.Errorf("--locate takes exactly one offset")
			}
			seg, ax, err := desc.Locate(nums[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "segment %d, axial position %d\n", seg, ax)
			return nil
		}

		if len(nums) != 2 {
			return fmt.Errorf("expected SEGMENT and AXIAL")
		}
		off, err := desc.Offset(nums[0], nums[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), off)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init-config [PATH]",
	Short: "Write a configuration file with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.CreateDefaultConfigFile(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	offsetCmd.Flags().Bool("locate", false, "treat the argument as a sinogram offset")

	rootCmd.AddCommand(scannersCmd, infoCmd, offsetCmd, configInitCmd)
}
