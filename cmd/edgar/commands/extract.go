package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/razor389/sec-queries/internal/extract"
	"github.com/razor389/sec-queries/internal/resolve"
	"github.com/razor389/sec-queries/internal/secclient"
	"github.com/razor389/sec-queries/pkg/logger"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract TICKER",
	Short: "Extract metrics from a company's latest filing",
	Long: `Fetches a filing from EDGAR, parses its XBRL instance document and
resolves every configured metric, segment and category total.

The report is written to stdout as JSON.

Example:
  go run ./cmd/edgar extract PGR
  go run ./cmd/edgar extract PRI --form 10-K --year 2017
  go run ./cmd/edgar extract BRK-B --accession 0000950123-24-002518`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extractForm      string
	extractAccession string
	extractYear      int
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractForm, "form", "10-K", "filing form type")
	extractCmd.Flags().StringVar(&extractAccession, "accession", "", "specific accession number (default: most recent)")
	extractCmd.Flags().IntVar(&extractYear, "year", 0, "only report this fiscal year")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ticker := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	_, engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	client := secclient.New(cfg, log)
	service := extract.New(client, engine, nil, log)

	report, err := service.Extract(context.Background(), extract.Request{
		Ticker:    ticker,
		Form:      extractForm,
		Accession: extractAccession,
	})
	if err != nil {
		return fmt.Errorf("extract %s: %w", ticker, err)
	}

	if extractYear != 0 {
		var kept []*resolve.Result
		for _, year := range report.Years {
			if year.FiscalYear == extractYear {
				kept = append(kept, year)
			}
		}
		if len(kept) == 0 {
			return fmt.Errorf("fiscal year %d not present in filing %s", extractYear, report.Accession)
		}
		report.Years = kept
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
