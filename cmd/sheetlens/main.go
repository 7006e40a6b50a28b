// Package main provides the sheetlens CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hmasato/sheetlens/pkg/sheetlens"
	"github.com/hmasato/sheetlens/pkg/sheetlens/output"
	"github.com/hmasato/sheetlens/pkg/sheetlens/scan"
	"github.com/hmasato/sheetlens/pkg/sheetlens/xlsxhost"
)

var (
	outputPath string
	pretty     bool
	quiet      bool

	targetSheets      []string
	groupSimilar      bool
	includeEmpty      bool
	minutesPerFormula float64
	blockRows         int
	blockCols         int
	massiveThreshold  int
	sampleCellCap     int
	findingCap        int
	reportPath        string

	mapSheet   string
	visualPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetlens",
		Short: "Review spreadsheet models for complexity and hard-coded values",
		Long: `sheetlens scans every cell of a workbook, classifies formulas and
hard-coded literals, scores structural complexity, and renders a symbolic
map of copy/fill patterns per sheet.`,
	}
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [input.xlsx]",
		Short: "Scan a workbook and report formulas and hard-coded values",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringSliceVar(&targetSheets, "sheets", nil, "Restrict the scan to these sheet names")
	analyzeCmd.Flags().BoolVar(&groupSimilar, "group-similar", false, "Group formulas by reference-normalized text")
	analyzeCmd.Flags().BoolVar(&includeEmpty, "include-empty", true, "Include blank-valued formula cells in counts")
	analyzeCmd.Flags().Float64Var(&minutesPerFormula, "minutes-per-formula", sheetlens.DefaultMinutesPerFormula, "Review-time estimate per unique formula")
	analyzeCmd.Flags().IntVar(&blockRows, "block-rows", 0, "Streaming block height (0 = default)")
	analyzeCmd.Flags().IntVar(&blockCols, "block-cols", 0, "Streaming block width (0 = default)")
	analyzeCmd.Flags().IntVar(&massiveThreshold, "massive-threshold", 0, "Cell count at which a sheet is skimmed (0 = default)")
	analyzeCmd.Flags().IntVar(&sampleCellCap, "sample-cells", 0, "Max instance addresses stored per unique formula (0 = default)")
	analyzeCmd.Flags().IntVar(&findingCap, "max-findings", 0, "Max findings retained per sheet (0 = default)")
	analyzeCmd.Flags().StringVar(&reportPath, "report", "", "Also write an xlsx review report to this path")

	mapCmd := &cobra.Command{
		Use:   "map [input.xlsx]",
		Short: "Render the fill-pattern map of one worksheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runMap,
	}
	mapCmd.Flags().StringVar(&mapSheet, "sheet", "", "Worksheet to map (default: first sheet)")
	mapCmd.Flags().StringVar(&visualPath, "visual", "", "Also write an xlsx map visualizer to this path")
	mapCmd.Flags().IntVar(&blockRows, "block-rows", 0, "Streaming block height (0 = default)")
	mapCmd.Flags().IntVar(&blockCols, "block-cols", 0, "Streaming block width (0 = default)")

	rootCmd.AddCommand(analyzeCmd, mapCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildOptions() sheetlens.Options {
	opts := sheetlens.DefaultOptions()
	opts.TargetSheets = targetSheets
	opts.GroupSimilarFormulas = groupSimilar
	opts.IncludeEmptyCells = includeEmpty
	opts.MinutesPerFormula = minutesPerFormula
	opts.BlockRows = blockRows
	opts.BlockCols = blockCols
	opts.MassiveCellThreshold = massiveThreshold
	opts.SampleCellCap = sampleCellCap
	opts.FindingCap = findingCap
	if !quiet {
		opts.Progress = func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		}
	}
	return opts
}

func openHost(path string) (*xlsxhost.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return xlsxhost.Open(path)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	host, err := openHost(args[0])
	if err != nil {
		return err
	}
	defer host.Close()

	res, err := sheetlens.Analyze(context.Background(), host, host.BookName(), buildOptions())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	jsonData, err := output.ToJSON(res, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if err := writeOutput(jsonData); err != nil {
		return err
	}

	if reportPath != "" {
		if err := output.WriteReport(res, reportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func runMap(cmd *cobra.Command, args []string) error {
	host, err := openHost(args[0])
	if err != nil {
		return err
	}
	defer host.Close()

	sheet := mapSheet
	if sheet == "" {
		names := host.SheetNames()
		if len(names) == 0 {
			return errors.New("workbook has no sheets")
		}
		sheet = names[0]
	}

	m, err := sheetlens.GenerateMap(context.Background(), host, sheet, buildOptions())
	if err != nil {
		if errors.Is(err, scan.ErrEmptyRegion) {
			return fmt.Errorf("sheet %q is empty", sheet)
		}
		return fmt.Errorf("map generation failed: %w", err)
	}

	if outputPath != "" {
		jsonData, err := output.MapToJSON(m, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Print(output.RenderMapText(m))
	}

	if visualPath != "" {
		if err := output.WriteMapSheet(m, visualPath); err != nil {
			return fmt.Errorf("failed to write map visualizer: %w", err)
		}
	}
	return nil
}

func writeOutput(data []byte) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(data))
	return nil
}
