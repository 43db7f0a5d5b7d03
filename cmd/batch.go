package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/equity-cli/internal/model"
	"github.com/sells-group/equity-cli/internal/provider"
	"github.com/sells-group/equity-cli/internal/store"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <ticker> [ticker...]",
	Short: "Analyze several companies concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentTickers
		}

		return processBatch(ctx, st, newProvider(""), dedupeTickers(args), concurrency)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max tickers analyzed in parallel (default from config)")
	rootCmd.AddCommand(batchCmd)
}

// dedupeTickers uppercases and deduplicates tickers, preserving order.
func dedupeTickers(args []string) []string {
	seen := make(map[string]bool, len(args))
	tickers := make([]string, 0, len(args))
	for _, arg := range args {
		t := strings.ToUpper(strings.TrimSpace(arg))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	return tickers
}

// processBatch analyzes tickers concurrently. Individual failures are
// recorded on their runs and logged; they never abort the batch.
func processBatch(ctx context.Context, st store.Store, prov provider.Provider, tickers []string, concurrency int) error {
	if len(tickers) == 0 {
		zap.L().Info("no tickers to analyze")
		return nil
	}

	zap.L().Info("processing batch",
		zap.Int("tickers", len(tickers)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	results := make([]*model.Run, len(tickers))

	for i, ticker := range tickers {
		g.Go(func() error {
			log := zap.L().With(zap.String("ticker", ticker))

			run, _, err := runAnalysis(gctx, st, prov, ticker)
			if err != nil {
				failed.Add(1)
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			results[i] = run
			log.Info("analysis complete",
				zap.Int("score", run.Result.Underperformance.Score),
				zap.String("recommendation", string(run.Recommendation)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch analysis")
	}

	formatBatchResults(os.Stdout, tickers, results)

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

// formatBatchResults writes a tabular summary of batch outcomes to out.
// results is parallel to tickers; a nil entry marks a failed analysis.
func formatBatchResults(out io.Writer, tickers []string, results []*model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TICKER\tSCORE\tASSESSMENT\tRECOMMENDATION")
	_, _ = fmt.Fprintln(w, "------\t-----\t----------\t--------------")

	for i, ticker := range tickers {
		run := results[i]
		if run == nil || run.Result == nil {
			_, _ = fmt.Fprintf(w, "%s\t-\tFAILED\t-\n", ticker)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			ticker,
			run.Result.Underperformance.Score,
			run.Result.Underperformance.Assessment,
			run.Recommendation,
		)
	}
	_ = w.Flush()
}
