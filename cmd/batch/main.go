package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"shipment-status/internal/core/logger"
	"shipment-status/internal/features/shipment/adapters"
	"shipment-status/internal/features/shipment/domain"
	"shipment-status/internal/features/shipment/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Input column names recognized in the CSV header. Matches the workbook
// naming the reporting side already uses.
const (
	colTrackingNumber = "Tracking Number"
	colCarrierCode    = "Carrier Code"
	colLatestEvent    = "LatestEventTimestampUtc"
)

var (
	inputPath        string
	outputPath       string
	replayDir        string
	referenceDate    string
	stalledThreshold int
	noStalledReason  bool
	workers          int
	logLevel         string
)

var rootCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich a CSV of shipments from recorded carrier payloads",
	Long: `Reads a CSV with a "Tracking Number" column, enriches every row from a
directory of recorded carrier payloads, and writes a CSV with the normalized
status fields, indicators, and calculated status appended in contract order.`,
	RunE: runBatch,
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV path (required)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (required)")
	rootCmd.Flags().StringVar(&replayDir, "replay-dir", "./replays", "directory of <trackingNumber>.json recorded payloads")
	rootCmd.Flags().StringVar(&referenceDate, "reference-date", "", "reference instant for day-age metrics, RFC3339 or YYYY-MM-DD (default: now)")
	rootCmd.Flags().IntVar(&stalledThreshold, "stalled-threshold", 4, "minimum event age in days for the stalled indicator")
	rootCmd.Flags().BoolVar(&noStalledReason, "no-stalled-reason", false, "omit Stalled from CalculatedReasons")
	rootCmd.Flags().IntVar(&workers, "workers", 8, "concurrent enrichment workers")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "logging verbosity")

	rootCmd.MarkFlagRequired("input")
	rootCmd.MarkFlagRequired("output")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := logger.Init("development", logLevel); err != nil {
		return err
	}
	defer logger.Sync()
	l := logger.Get()

	referenceNow := time.Now().UTC()
	if referenceDate != "" {
		t, ok := domain.ParseTimestamp(referenceDate)
		if !ok {
			return fmt.Errorf("unparseable reference date: %s", referenceDate)
		}
		referenceNow = t
	}

	header, records, err := readCSV(inputPath)
	if err != nil {
		return err
	}

	cols := columnIndex(header)
	tnIdx, ok := cols[colTrackingNumber]
	if !ok {
		return fmt.Errorf("input CSV has no %q column", colTrackingNumber)
	}

	ccIdx := lookup(cols, colCarrierCode)
	leIdx := lookup(cols, colLatestEvent)

	rows := make([]service.Row, len(records))
	for i, record := range records {
		rows[i] = service.Row{
			TrackingNumber:          fieldAt(record, tnIdx),
			CarrierCode:             fieldAt(record, ccIdx),
			LatestEventTimestampUtc: fieldAt(record, leIdx),
		}
	}

	ruleSet := domain.DefaultRuleSet()
	ruleSet.StalledThresholdDays = stalledThreshold
	ruleSet.IncludeStalledReason = !noStalledReason

	enricher := service.NewEnricher(adapters.NewReplayStore(replayDir), ruleSet)

	l.Info("Enriching shipments",
		zap.Int("rows", len(rows)),
		zap.String("replay_dir", replayDir),
		zap.Time("reference_now", referenceNow),
	)

	enrichments := enricher.EnrichAll(context.Background(), rows, referenceNow, workers)

	if err := writeCSV(outputPath, header, records, enrichments); err != nil {
		return err
	}

	l.Info("Wrote enriched CSV", zap.String("output", outputPath))
	return nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("input CSV is empty")
	}
	return all[0], all[1:], nil
}

// writeCSV writes the original columns followed by the contract columns.
// Contract columns already present in the input keep their position and are
// overwritten with enriched values; the rest are appended in contract order.
func writeCSV(path string, header []string, records [][]string, enrichments []service.Enrichment) error {
	original := columnIndex(header)

	outHeader := append([]string{}, header...)
	for _, col := range service.OutputColumns() {
		if _, exists := original[col]; !exists {
			outHeader = append(outHeader, col)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(outHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, record := range records {
		values := enrichments[i].ColumnValues()

		row := make([]string, len(outHeader))
		for j, col := range outHeader {
			if v, enriched := values[col]; enriched {
				row[j] = v
			} else if idx, ok := original[col]; ok {
				row[j] = fieldAt(record, idx)
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	w.Flush()
	return w.Error()
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// lookup returns the column position, or -1 when the header lacks it.
func lookup(cols map[string]int, name string) int {
	if idx, ok := cols[name]; ok {
		return idx
	}
	return -1
}

// fieldAt tolerates ragged rows and missing columns.
func fieldAt(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
