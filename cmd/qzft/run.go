package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qzft/pkg/archive"
	"qzft/pkg/config"
	"qzft/pkg/render"
	"qzft/pkg/sim"
)

func newRunCmd() *cobra.Command {
	var (
		reMin, reMax float64
		imMin, imMax float64
		step         float64
		alpha        float64
		threshold    float64
		workers      int
		strict       bool
		natsURL      string
		plotPath     string
		saveData     bool
		dataPrefix   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and render the field plots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			params := sim.FromConfig(cfg)

			// flags explicitly set by the user win over the config file
			flagSet := cmd.Flags()
			if flagSet.Changed("re-min") {
				params.Region.ReMin = reMin
			}
			if flagSet.Changed("re-max") {
				params.Region.ReMax = reMax
			}
			if flagSet.Changed("im-min") {
				params.Region.ImMin = imMin
			}
			if flagSet.Changed("im-max") {
				params.Region.ImMax = imMax
			}
			if flagSet.Changed("step") {
				params.Region.Step = step
			}
			if flagSet.Changed("alpha") {
				params.Alpha = alpha
			}
			if flagSet.Changed("threshold") {
				params.Threshold = threshold
			}
			if flagSet.Changed("workers") {
				params.Workers = workers
			}
			if flagSet.Changed("strict") {
				params.Strict = strict
			}
			if flagSet.Changed("nats") {
				params.NATSURL = natsURL
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := sim.Run(ctx, params, logger)
			if err != nil {
				return err
			}

			for _, z := range res.Zeros {
				logger.Info("zero candidate",
					zap.Float64("sigma", z.Sigma),
					zap.Float64("t", z.T),
					zap.Float64("zetaAbs", z.Magnitude))
			}

			f, err := os.Create(plotPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := render.WritePNG(f, res.Grid, res.ZetaAbs, res.Fields, res.Zeros, render.Options{}); err != nil {
				return err
			}
			logger.Info("plot saved", zap.String("path", plotPath))

			if saveData {
				arcPath := dataPrefix + ".qza"
				csvPath := dataPrefix + ".csv"
				if err := archive.FromResult(res.Grid, res.ZetaAbs, res.Fields).Save(arcPath); err != nil {
					return err
				}
				logger.Info("archive saved", zap.String("path", arcPath))
				if err := archive.SaveCSV(csvPath, res.Grid, res.ZetaAbs, res.Fields); err != nil {
					return err
				}
				logger.Info("csv saved", zap.String("path", csvPath))
			}
			return nil
		},
	}

	defaults := sim.FromConfig(config.Default())
	cmd.Flags().Float64Var(&reMin, "re-min", defaults.Region.ReMin, "minimum Re(s)")
	cmd.Flags().Float64Var(&reMax, "re-max", defaults.Region.ReMax, "maximum Re(s)")
	cmd.Flags().Float64Var(&imMin, "im-min", defaults.Region.ImMin, "minimum Im(s)")
	cmd.Flags().Float64Var(&imMax, "im-max", defaults.Region.ImMax, "maximum Im(s)")
	cmd.Flags().Float64Var(&step, "step", defaults.Region.Step, "lattice step size")
	cmd.Flags().Float64Var(&alpha, "alpha", defaults.Alpha, "collapse penalty weight")
	cmd.Flags().Float64Var(&threshold, "threshold", defaults.Threshold, "zero-candidate magnitude threshold")
	cmd.Flags().IntVar(&workers, "workers", 0, "evaluation workers (0 = all CPUs)")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on the first evaluation failure")
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS URL for distributed evaluation (empty = local)")
	cmd.Flags().StringVar(&plotPath, "plot", "qzft_plot.png", "output PNG path")
	cmd.Flags().BoolVar(&saveData, "save-data", false, "also write the archive and CSV files")
	cmd.Flags().StringVar(&dataPrefix, "data-prefix", "qzft_data", "path prefix for --save-data outputs")

	return cmd
}
