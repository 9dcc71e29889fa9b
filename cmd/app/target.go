package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/stats"
	"github.com/akyairhashvil/deepwork/internal/util"
)

func targetCmd(flags *rootFlags) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Set or show the daily focus target",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "day (YYYY-MM-DD, default today)")

	set := &cobra.Command{
		Use:   "set <minutes>",
		Short: "Set the target in minutes (0 clears it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("minutes must be a number: %w", err)
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			day := dayOrToday(date, a.now())
			t, err := a.db.SetDailyTarget(cmd.Context(), day, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target for %s: %s\n", t.Date, util.FormatHuman(t.Target()))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the target and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			day := dayOrToday(date, a.now())
			t, err := a.db.GetDailyTarget(ctx, day)
			if err != nil {
				return err
			}
			start, err := time.ParseInLocation(stats.DateLayout, day, time.Local)
			if err != nil {
				return err
			}
			worked, err := a.db.FocusTotal(ctx, start, start.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			workedText := util.FormatHuman(time.Duration(worked) * time.Second)
			if t.TargetMinutes == 0 {
				fmt.Fprintf(out, "%s: %s worked, no target set\n", day, workedText)
				return nil
			}
			ratio := stats.ProgressRatio(worked, t.TargetMinutes)
			fmt.Fprintf(out, "%s: %s of %s (%.0f%%)\n", day, workedText, util.FormatHuman(t.Target()), ratio*100)
			return nil
		},
	}

	cmd.AddCommand(set, show)
	return cmd
}

func dayOrToday(date string, now time.Time) string {
	if date != "" {
		return date
	}
	return stats.DateKey(now)
}

func statsCmd(flags *rootFlags) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show focus totals for a day, week or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			from, to, err := stats.Range(filter, a.now())
			if err != nil {
				return err
			}
			total, err := a.db.FocusTotal(ctx, from, to)
			if err != nil {
				return err
			}
			tasks, err := a.db.TaskTotals(ctx, from, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: %s\n", filter, from.Format(stats.DateLayout), util.FormatHuman(time.Duration(total)*time.Second))
			for _, t := range tasks {
				fmt.Fprintf(out, "  %-30s %8s  %d session(s)\n", t.TaskName,
					util.FormatHuman(time.Duration(t.Seconds)*time.Second), t.Sessions)
			}
			if filter == config.FilterDay {
				return nil
			}
			days, err := a.db.DailyTotals(ctx, from, to)
			if err != nil {
				return err
			}
			for _, d := range days {
				fmt.Fprintf(out, "  %s %8s\n", d.Date, util.FormatHuman(time.Duration(d.Seconds)*time.Second))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", config.FilterDay, "day, week or month")
	return cmd
}
