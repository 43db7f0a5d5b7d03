package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/equity-cli/internal/report"
)

var (
	analyzeSnapshot string
	analyzeReport   bool
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticker>",
	Short: "Analyze a single company's market performance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ticker := strings.ToUpper(strings.TrimSpace(args[0]))

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		prov := newProvider(analyzeSnapshot)
		run, snap, err := runAnalysis(ctx, st, prov, ticker)
		if err != nil {
			return eris.Wrapf(err, "analyze %s", ticker)
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		data := report.Data{
			Profile:      run.Profile,
			Result:       run.Result,
			Peers:        snap.Peers,
			CurrentPrice: currentPrice(snap.Financials),
		}
		if analyzeReport {
			fmt.Print(report.Text(data))
			return nil
		}
		fmt.Print(report.Summary(data))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSnapshot, "snapshot", "", "YAML snapshot file to analyze instead of calling the API")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report", false, "print the full text report")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the persisted run as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
