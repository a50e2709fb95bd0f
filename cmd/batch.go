package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/report"
)

var (
	batchFile        string
	batchConcurrency int
	batchXLSX        string
	batchSave        bool
	batchOffline     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the audit pipeline for many profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var profiles []model.AuditProfile
		if err := readJSONFile(batchFile, &profiles); err != nil {
			return eris.Wrap(err, "batch: read profiles")
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentAudits
		}

		var run auditFunc
		if batchSave {
			env, err := initEnv(ctx, config.ModeBatch, batchOffline)
			if err != nil {
				return err
			}
			defer env.Close()
			run = env.Audits.Submit
		} else {
			if err := cfg.Validate(config.ModeBatch); err != nil {
				return err
			}
			ranker := initRanker(batchOffline, metrics.Default())
			run = func(ctx context.Context, p model.AuditProfile) (*model.AuditReport, error) {
				r := report.BuildAuditReport(ctx, ranker, p)
				return &r, nil
			}
		}

		reports, err := processBatch(ctx, profiles, concurrency, run)
		if err != nil {
			return err
		}

		if batchXLSX != "" {
			if err := writeWorkbookFile(batchXLSX, reports); err != nil {
				return err
			}
		}
		return writeJSON(cmd.OutOrStdout(), reports)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "JSON array of audit profiles (- for stdin)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent audits (default from config)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "also write the reports as an XLSX workbook")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "store each audit and its report")
	batchCmd.Flags().BoolVar(&batchOffline, "offline", false, "skip the advice service and use the fallback list")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// auditFunc is the callback signature for running the audit pipeline on a
// profile.
type auditFunc func(ctx context.Context, p model.AuditProfile) (*model.AuditReport, error)

// processBatch runs fn over profiles concurrently. Results keep the input
// order; failed profiles are logged and left out.
func processBatch(ctx context.Context, profiles []model.AuditProfile, concurrency int, fn auditFunc) ([]model.AuditReport, error) {
	if len(profiles) == 0 {
		zap.L().Info("no audit profiles to process")
		return []model.AuditReport{}, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("profiles", len(profiles)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	results := make([]*model.AuditReport, len(profiles))
	var succeeded, failed atomic.Int64

	for i, p := range profiles {
		g.Go(func() error {
			log := zap.L().With(zap.Int("index", i), zap.String("audit_id", p.ID))

			r, err := fn(gctx, p)
			if err != nil {
				failed.Add(1)
				log.Error("audit failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			results[i] = r
			succeeded.Add(1)
			log.Debug("audit complete",
				zap.Int("score", r.Score),
				zap.String("advice_origin", string(r.AdviceOrigin)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	out := make([]model.AuditReport, 0, len(profiles))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return out, nil
}

func writeWorkbookFile(path string, reports []model.AuditReport) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "batch: create %s", path)
	}
	if err := report.WriteAuditWorkbook(f, reports); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "batch: close %s", path)
	}
	zap.L().Info("workbook written", zap.String("path", path), zap.Int("reports", len(reports)))
	return nil
}
