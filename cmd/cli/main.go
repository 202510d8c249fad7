package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/domain"
	"invoice-insight/internal/ingest"
	"invoice-insight/internal/logger"
	"invoice-insight/internal/sample"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sample":
		runSample(log)
	case "validate":
		runValidate(log)
	case "analyze":
		runAnalyze(log)
	case "quality":
		runQuality(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Invoice Insight CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  sample    Generate a synthetic tax-invoice CSV")
	fmt.Println("  validate  Validate a CSV against the invoice schema")
	fmt.Println("  analyze   Run anomaly detection and risk scoring on a CSV")
	fmt.Println("  quality   Print the data quality report for a CSV")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runSample(log zerolog.Logger) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	rows := fs.Int("rows", sample.DefaultRows, "number of rows to generate")
	seed := fs.Int64("seed", 1, "generator seed")
	out := fs.String("out", "sample.csv", "output file path")
	fs.Parse(os.Args[2:])

	ds := sample.Generate(*rows, *seed)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer f.Close()

	if err := writeCSV(f, ds); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV")
	}

	fmt.Printf("Wrote %d rows to %s\n", len(ds.Rows), *out)
}

func runValidate(log zerolog.Logger) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	file := fs.String("file", "", "CSV file to validate")
	strict := fs.Bool("strict", false, "validate against the strict Sale/Purchase schema")
	fs.Parse(os.Args[2:])

	ds := loadDataset(log, *file)

	mode := analytics.Lenient
	if *strict {
		mode = analytics.Strict
	}

	report, err := analytics.ValidateSchema(ds, mode)
	if err != nil {
		log.Fatal().Err(err).Msg("Validation failed")
	}

	fmt.Printf("Schema: valid (%s mode)\n", report.Mode)
	fmt.Printf("Rows: %d (encoding %s)\n", len(ds.Rows), ds.SourceEncoding)
	if report.CoercionFailures > 0 {
		fmt.Printf("Coercion failures: %d\n", report.CoercionFailures)
	}
	for _, w := range report.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "CSV file to analyze")
	contamination := fs.Float64("contamination", analytics.DefaultContamination, "expected anomaly fraction in (0, 1)")
	month := fs.String("month", "", "restrict to one YYYY-MM period")
	fs.Parse(os.Args[2:])

	ds := loadDataset(log, *file).FilterPeriod(*month)

	res, err := analytics.Analyze(ds, *contamination)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	fmt.Printf("Transactions: %d\n", res.KPIs.TotalCount)
	fmt.Printf("Anomalies: %d (%.1f%%)\n", res.Detection.AnomalyCount, res.Detection.AnomalyRate*100)
	fmt.Printf("Risk: %.1f/100 (%s)\n", res.Risk.Score, res.Risk.Level)
	for _, insight := range res.Risk.Insights {
		fmt.Printf("  - %s\n", insight)
	}
}

func runQuality(log zerolog.Logger) {
	fs := flag.NewFlagSet("quality", flag.ExitOnError)
	file := fs.String("file", "", "CSV file to analyze")
	fs.Parse(os.Args[2:])

	ds := loadDataset(log, *file)
	res := analytics.AnalyzeQuality(ds)
	fmt.Println(res.Report)
}

func loadDataset(log zerolog.Logger, path string) *domain.Dataset {
	if path == "" {
		log.Fatal().Msg("Error: -file is required")
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	defer f.Close()

	ds, err := ingest.ReadCSV(f, path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse CSV")
	}
	return ds
}

func writeCSV(f *os.File, ds *domain.Dataset) error {
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(ds.Columns); err != nil {
		return err
	}
	for _, tx := range ds.Rows {
		record := []string{
			tx.Period,
			string(tx.Type),
			string(tx.Form),
			amountField(tx.SupplyAmount),
			amountField(tx.TaxAmount),
		}
		if ds.HasColumn(analytics.ColAccountCategory) {
			record = append(record, tx.AccountCategory)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func amountField(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
