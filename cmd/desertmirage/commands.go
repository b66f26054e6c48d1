package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/DesertMirage/internal/model"
	"github.com/himanishpuri/DesertMirage/pkg/desertmirage"
	"github.com/himanishpuri/DesertMirage/pkg/logger"
)

var (
	workers   int
	seedFile  string
	channel   string
	csvOutput bool
)

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Analyse survey CSV files and store the results",
	Long: `Analyse one or more survey CSV files (columns Line, X, Y and the response
channel) against the seed table of the run file.

Examples:
  desertmirage run --config ivs.yaml day1.csv day2.csv
  DESERTMIRAGE_RESPONSE_CHANNEL=Ch3 desertmirage run -c ivs.yaml --workers 8 *.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var resultsCmd = &cobra.Command{
	Use:   "results <run-id>",
	Short: "Print the daily results first stored by a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runResults,
}

var summaryCmd = &cobra.Command{
	Use:   "summary <run-id>",
	Short: "Print the standard values (mean response and offset) of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel file workers (default from run file)")
	runCmd.Flags().StringVar(&seedFile, "seeds", "", "seed table CSV (overrides seed_file)")
	runCmd.Flags().StringVar(&channel, "channel", "", "response channel (overrides response_channel)")

	resultsCmd.Flags().BoolVar(&csvOutput, "csv", false, "write CSV instead of a table")
	summaryCmd.Flags().BoolVar(&csvOutput, "csv", false, "write CSV instead of a table")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if seedFile != "" {
		cfg.SeedFile = seedFile
	}
	if channel != "" {
		cfg.ResponseChannel = channel
	}

	fmt.Println("🔧 Initializing service...")
	svc, err := desertmirage.NewService(desertmirage.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📡 Analysing %d file(s) against %d seed item(s)...\n", len(args), len(svc.SeedItems()))
	start := time.Now()

	report, err := svc.Analyze(ctx, args)
	if err != nil {
		log.Errorf("Analyze failed: %v", err)
		return err
	}

	outcomes := report.Outcomes()
	fmt.Printf("\n✅ Run %s complete in %s\n", report.Run.ID, time.Since(start).Round(time.Millisecond))
	fmt.Printf("   Units:     %d (%d skipped)\n", len(report.Units), len(report.Skipped()))
	fmt.Printf("   Accepted:  %d record(s), %d new in store\n", len(report.Records), report.Run.Inserted)
	fmt.Printf("   Outcomes:  both=%d forward=%d backward=%d rejected=%d\n",
		outcomes[model.OutcomeAcceptBoth],
		outcomes[model.OutcomeAcceptForward],
		outcomes[model.OutcomeAcceptBackward],
		outcomes[model.OutcomeReject])
	if report.Dropped > 0 {
		fmt.Printf("   Dropped:   %d invalid row(s)\n", report.Dropped)
	}

	for _, u := range report.Skipped() {
		if model.IsDataQuality(u.Err) {
			log.Debugf("Skipped %s/%s: %v", u.File, u.SensorID, u.Err)
		}
	}

	if len(report.StandardValues) > 0 {
		fmt.Println("\n📊 Standard values:")
		writeStandardValues(os.Stdout, report.StandardValues)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("📭 No runs in result store")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tTEST\tSURVEY\tCHANNEL\tFILES\tUNITS\tRECORDS\tNEW")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.TestID, r.SurveyType,
			r.Channel, r.Files, r.Units, r.Records, r.Inserted)
	}
	return tw.Flush()
}

func runResults(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.DailyResults(args[0])
	if err != nil {
		return err
	}

	header := []string{"Filename", "Date", "AM_PM", "Sensor_ID", "Test_Item_ID", "Test_ID", "Response", "X", "Y", "Offset", "Channel"}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Filename, r.Date, r.AMPM, r.SensorID, r.TestItemID, r.TestID,
			ftoa(r.Response), ftoa(r.X), ftoa(r.Y), ftoa(r.Offset), r.Channel,
		}
	}
	return writeRows(os.Stdout, header, rows)
}

func runSummary(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	values, err := store.StandardValues(args[0])
	if err != nil {
		return err
	}
	if csvOutput {
		return writeRows(os.Stdout, standardHeader, standardRows(values))
	}
	return writeStandardValues(os.Stdout, values)
}

var standardHeader = []string{"Sensor_ID", "Test_Item_ID", "Mean_Response", "Mean_Offset", "Count"}

func standardRows(values []model.StandardValue) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v.SensorID, v.TestItemID, ftoa(v.MeanResponse), ftoa(v.MeanOffset), strconv.Itoa(v.Count)}
	}
	return rows
}

func writeStandardValues(w io.Writer, values []model.StandardValue) error {
	return writeTable(w, standardHeader, standardRows(values))
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	if !csvOutput {
		return writeTable(w, header, rows)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeLine(tw, header)
	for _, r := range rows {
		writeLine(tw, r)
	}
	return tw.Flush()
}

func writeLine(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
