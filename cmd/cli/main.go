package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"radonlab/adapters/csvdata"
	"radonlab/adapters/excel"
	"radonlab/adapters/sampler"
	"radonlab/app"
	"radonlab/domain/dataset"
	"radonlab/domain/model"
	"radonlab/internal/config"
	"radonlab/internal/logx"
	"radonlab/internal/report"
	"radonlab/internal/testkit"
	"radonlab/ports"
)

func main() {
	_ = godotenv.Load()
	logger := logx.New()
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "radonlab",
		Short: "Multilevel Bayesian regression workbench for grouped radon measurements",
	}

	rootCmd.AddCommand(
		newFitCmd(logger),
		newCompareCmd(logger),
		newSynthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type sampleFlags struct {
	chains int
	warmup int
	draws  int
	seed   int64
}

func (f *sampleFlags) register(cmd *cobra.Command, defaults config.SamplingConfig) {
	cmd.Flags().IntVar(&f.chains, "chains", defaults.Chains, "Independent MCMC chains")
	cmd.Flags().IntVar(&f.warmup, "warmup", defaults.Warmup, "Adaptation draws discarded per chain")
	cmd.Flags().IntVar(&f.draws, "draws", defaults.Draws, "Retained draws per chain")
	cmd.Flags().Int64Var(&f.seed, "seed", defaults.Seed, "Base random seed")
}

func (f *sampleFlags) options() ports.SampleOptions {
	return ports.SampleOptions{
		Chains: f.chains,
		Warmup: f.warmup,
		Draws:  f.draws,
		Seed:   f.seed,
	}
}

func newFitCmd(logger *slog.Logger) *cobra.Command {
	var flags sampleFlags
	var dataPath string

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := &cobra.Command{
		Use:   "fit [pooled|unpooled|hierarchical]",
		Short: "Fit one model variant and print its posterior summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(cmd.Context(), cfg, dataPath)
			if err != nil {
				return err
			}

			engine := sampler.New(logger)
			fitSvc := app.NewFitService(engine, logger)
			fr, err := fitSvc.Fit(cmd.Context(), model.Variant(args[0]), table, flags.options())
			if err != nil {
				return err
			}

			summaries, err := fr.Posterior.SummaryTable()
			if err != nil {
				return err
			}
			fmt.Printf("run %s (%s) healthy=%v\n\n", fr.RunID, fr.Variant, fr.Posterior.Diagnostics.Healthy())
			fmt.Printf("%-12s %10s %10s %10s %10s %8s %8s\n",
				"parameter", "mean", "sd", "q5", "q95", "rhat", "ess")
			for _, s := range summaries {
				fmt.Printf("%-12s %10.3f %10.3f %10.3f %10.3f %8.3f %8.0f\n",
					s.Name, s.Mean, s.SD, s.Q5, s.Q95, s.RHat, s.ESS)
			}
			for _, w := range fr.Posterior.Diagnostics.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", cfg.Data.Path, "Input CSV path")
	flags.register(cmd, cfg.Sampling)
	return cmd
}

func newCompareCmd(logger *slog.Logger) *cobra.Command {
	var flags sampleFlags
	var dataPath, reportPath, workbookPath, jsonPath string

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Fit all three variants, score them, and report shrinkage",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(cmd.Context(), cfg, dataPath)
			if err != nil {
				return err
			}

			engine := sampler.New(logger)
			fitSvc := app.NewFitService(engine, logger)
			cmpSvc := app.NewCompareService(fitSvc, logger)

			rep, err := cmpSvc.Compare(cmd.Context(), table, flags.options())
			if err != nil {
				return err
			}

			md := report.Markdown(rep)
			if reportPath != "" {
				if err := os.WriteFile(reportPath, []byte(md), 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				logger.Info("report written", "path", reportPath)
			} else {
				fmt.Print(md)
			}

			if workbookPath != "" {
				exporter := excel.NewExporter()
				if err := exporter.Export(cmd.Context(), rep, workbookPath); err != nil {
					return err
				}
				logger.Info("workbook written", "path", workbookPath)
			}

			if jsonPath != "" {
				if err := writeJSON(rep, jsonPath); err != nil {
					return err
				}
				logger.Info("artifact written", "path", jsonPath)
			}

			for _, s := range rep.Scores {
				fmt.Printf("%-14s RMSD %.4f\n", s.Variant, s.RMSD)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", cfg.Data.Path, "Input CSV path")
	cmd.Flags().StringVar(&reportPath, "report", cfg.Output.ReportPath, "Markdown report destination (empty prints to stdout)")
	cmd.Flags().StringVar(&workbookPath, "workbook", cfg.Output.WorkbookPath, "Optional .xlsx destination")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Optional JSON artifact destination (consumed by serve)")
	flags.register(cmd, cfg.Sampling)
	return cmd
}

func newSynthCmd() *cobra.Command {
	var out string
	var seed int64
	var sizes []int

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a synthetic grouped table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultConfig()
			cfg.Seed = seed
			if len(sizes) > 0 {
				cfg.GroupSizes = sizes
			}

			table, err := testkit.NewGenerator(cfg).Generate()
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()

			w := csv.NewWriter(f)
			if err := w.Write([]string{"county", "floor", "log_radon"}); err != nil {
				return err
			}
			for i := 0; i < table.Len(); i++ {
				o := table.Row(i)
				rec := []string{
					o.Group.String(),
					strconv.Itoa(o.Basement),
					strconv.FormatFloat(o.LogRadon, 'f', 6, 64),
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		},
	}

	cmd.Flags().StringVar(&out, "out", "synthetic.csv", "Output CSV path")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().IntSliceVar(&sizes, "sizes", nil, "Group sizes, e.g. 2,50,50")
	return cmd
}

func loadTable(ctx context.Context, cfg *config.Config, dataPath string) (*dataset.Table, error) {
	if dataPath == "" {
		return nil, fmt.Errorf("no input table: pass --data or set RADON_DATA")
	}
	loader := csvdata.NewLoader(csvdata.Config{
		GroupColumn:    cfg.Data.GroupColumn,
		CovariateCol:   cfg.Data.CovariateCol,
		ResponseColumn: cfg.Data.ResponseColumn,
	})
	return loader.Load(ctx, dataPath)
}

func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
