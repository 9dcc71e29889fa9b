package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/mirror"
	"github.com/akyairhashvil/deepwork/internal/report"
	"github.com/akyairhashvil/deepwork/internal/stats"
	"github.com/akyairhashvil/deepwork/internal/util"
)

func exportCmd(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all data to a JSON file",
		Long:  "Write all data to a JSON file. Without --out a dated backup is written to the data directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			snap, err := a.db.ExportSnapshot(ctx)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				dir := filepath.Join(a.cfg.DataDir, "backups")
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
				if path, err = mirror.Backup(dir, snap, a.now()); err != nil {
					return err
				}
			} else if err := mirror.NewFileMirror(path, a.logger).Push(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) and %d session(s) to %s\n",
				len(snap.Tasks), len(snap.Sessions), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func importCmd(flags *rootFlags) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON export into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			snap, err := mirror.NewFileMirror(args[0], a.logger).Pull(ctx)
			if err != nil {
				return err
			}
			res, err := a.db.ImportSnapshot(ctx, snap, replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported: %d task(s) added, %d updated, %d session(s) added, %d skipped, %d target(s)\n",
				res.TasksAdded, res.TasksUpdated, res.SessionsAdded, res.SessionsSkipped, res.TargetsSet)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "clear existing data before importing")
	return cmd
}

func reportCmd(flags *rootFlags) *cobra.Command {
	var (
		date   string
		filter string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a PDF report for a day or a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" && filter != "" {
				return fmt.Errorf("use either --date or --filter")
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				buf  bytes.Buffer
				name string
			)
			if filter != "" && filter != config.FilterDay {
				name, err = a.periodReport(cmd, &buf, filter)
			} else {
				name, err = a.dailyReport(cmd, &buf, dayOrToday(date, a.now()))
			}
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				dir := util.ReportsDir(config.AppName)
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
				path = filepath.Join(dir, name)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to report (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "week or month")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func (a *app) dailyReport(cmd *cobra.Command, buf *bytes.Buffer, day string) (string, error) {
	ctx := cmd.Context()
	start, err := time.ParseInLocation(stats.DateLayout, day, time.Local)
	if err != nil {
		return "", fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	sessions, err := a.db.SessionsBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}
	tasks, err := a.db.ListTasks(ctx, true)
	if err != nil {
		return "", err
	}
	target, err := a.db.GetDailyTarget(ctx, day)
	if err != nil {
		return "", err
	}
	summary, err := stats.DailySummary(day, time.Local, sessions, tasks, target.TargetMinutes)
	if err != nil {
		return "", err
	}
	if err := report.DailyPDF(buf, summary); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-report-%s.pdf", config.AppName, day), nil
}

func (a *app) periodReport(cmd *cobra.Command, buf *bytes.Buffer, filter string) (string, error) {
	ctx := cmd.Context()
	from, to, err := stats.Range(filter, a.now())
	if err != nil {
		return "", err
	}
	days, err := a.db.DailyTotals(ctx, from, to)
	if err != nil {
		return "", err
	}
	tasks, err := a.db.TaskTotals(ctx, from, to)
	if err != nil {
		return "", err
	}
	p := report.Period{Filter: filter, From: from, To: to, Days: days, Tasks: tasks}
	if err := report.PeriodPDF(buf, p); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-report-%s-%s.pdf", config.AppName, filter, from.Format(stats.DateLayout)), nil
}
