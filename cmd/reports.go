package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/smooth5x5/internal/store"
	"github.com/spf13/cobra"
)

var (
	reportsDataDir string
	keepLast       int
	olderThanDays  int
	forceClean     bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved verification reports",
}

var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved verification reports",
	RunE:  runListReports,
}

var showReportCmd = &cobra.Command{
	Use:   "show [report-id]",
	Short: "Show a saved verification report",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowReport,
}

var cleanReportsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old reports",
	Long:  `Delete reports older than N days, or all but the newest N reports.`,
	RunE:  runCleanReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)

	reportsCmd.AddCommand(listReportsCmd)
	reportsCmd.AddCommand(showReportCmd)
	reportsCmd.AddCommand(cleanReportsCmd)

	reportsCmd.PersistentFlags().StringVar(&reportsDataDir, "data-dir", "./data", "Base directory for report storage")

	cleanReportsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N reports (0 = keep all)")
	cleanReportsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete reports older than N days (0 = no age limit)")
	cleanReportsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListReports(cmd *cobra.Command, args []string) error {
	reportStore, err := store.NewFSStore(reportsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	infos, err := reportStore.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPORT ID\tTIMESTAMP\tBACKEND\tCASES\tFAILED")
	fmt.Fprintln(w, "---------\t---------\t-------\t-----\t------")

	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			info.ID,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Backend,
			info.Cases,
			info.Failed,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal reports: %d\n", len(infos))
	return nil
}

func runShowReport(cmd *cobra.Command, args []string) error {
	reportStore, err := store.NewFSStore(reportsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	report, err := reportStore.LoadReport(args[0])
	if err != nil {
		return err
	}

	c := report.Config
	fmt.Printf("Report:    %s\n", report.ID)
	fmt.Printf("Timestamp: %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Printf("Backend:   %s (workers %d)\n", c.Backend, c.Workers)
	fmt.Printf("Sweep:     stride %d, sizes [%d, %d), patterns %v, seed %d\n", c.Stride, c.MinSize, c.MaxSize, c.Patterns, c.Seed)
	fmt.Printf("Result:    %d cases, %d failed, %s\n", report.Cases, report.Failed, report.Elapsed)

	for _, m := range report.Mismatches {
		fmt.Printf("  %s %dx%d in-place=%t at (%d,%d): want %d, got %d\n",
			m.Pattern, m.Width, m.Height, m.InPlace, m.Row, m.Col, m.Want, m.Got)
	}
	return nil
}

func runCleanReports(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	reportStore, err := store.NewFSStore(reportsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	infos, err := reportStore.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	toDelete := selectReportsForDeletion(infos, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Println("No reports match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d report(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (%s)\n", info.ID, info.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := reportStore.DeleteReport(info.ID); err != nil {
			slog.Error("Failed to delete report", "id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted report", "id", info.ID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d report(s), %d failed.\n", deleted, failed)
	return nil
}

// selectReportsForDeletion applies the retention policy. infos must be
// sorted newest first, as returned by ListReports.
func selectReportsForDeletion(infos []store.ReportInfo, keepLast, olderThanDays int, now time.Time) []store.ReportInfo {
	var toDelete []store.ReportInfo
	cutoff := now.AddDate(0, 0, -olderThanDays)

	for i, info := range infos {
		tooOld := olderThanDays > 0 && info.Timestamp.Before(cutoff)
		beyondKeep := keepLast > 0 && i >= keepLast
		if tooOld || beyondKeep {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}
