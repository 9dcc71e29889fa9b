package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/database"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/notify"
	"github.com/akyairhashvil/deepwork/internal/stats"
	"github.com/akyairhashvil/deepwork/internal/timer"
	"github.com/akyairhashvil/deepwork/internal/util"
)

func sessionCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record and list focus sessions",
	}
	cmd.AddCommand(sessionAddCmd(flags), sessionListCmd(flags), sessionDeleteCmd(flags))
	return cmd
}

func sessionAddCmd(flags *rootFlags) *cobra.Command {
	var (
		taskID  int64
		minutes int
		date    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a manual session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes <= 0 || minutes > config.MaxSessionMinutes {
				return fmt.Errorf("--minutes must be between 1 and %d", config.MaxSessionMinutes)
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			completed := a.now()
			if date != "" {
				day, err := time.ParseInLocation(stats.DateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				// Manual entries for another day land at noon so they stay inside it.
				completed = day.Add(12 * time.Hour)
			}
			s, err := a.db.AddSession(cmd.Context(), models.Session{
				TaskID:      taskID,
				DurationSec: minutes * 60,
				Kind:        models.SessionManual,
				CompletedAt: completed,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s on task %d\n", util.FormatHuman(s.Duration()), s.TaskID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&taskID, "task", 0, "task id")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "worked minutes")
	cmd.Flags().StringVar(&date, "date", "", "day the work happened (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("minutes")
	return cmd
}

func sessionListCmd(flags *rootFlags) *cobra.Command {
	var (
		filter string
		kind   string
		last   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions in a day, week or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			from, to, err := stats.Range(filter, a.now())
			if err != nil {
				return err
			}
			q := database.NewSessionQuery().WhereCompletedBetween(from, to)
			switch models.SessionKind(kind) {
			case "":
			case models.SessionWork, models.SessionManual:
				q.WhereKind(kind)
			default:
				return fmt.Errorf("--kind must be %s or %s", models.SessionWork, models.SessionManual)
			}
			if last > 0 {
				q.OrderBy("completed_at DESC, id DESC").Limit(last)
			}
			sessions, err := a.db.QuerySessions(cmd.Context(), q)
			if err != nil {
				return err
			}
			tasks, err := a.db.ListTasks(cmd.Context(), true)
			if err != nil {
				return err
			}
			names := make(map[int64]string, len(tasks))
			for _, t := range tasks {
				names[t.ID] = t.Name
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(out, "%4d  %s  %-8s %-6s %s\n", s.ID, s.CompletedAt.Local().Format("2006-01-02 15:04"),
					util.FormatHuman(s.Duration()), s.Kind, names[s.TaskID])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", config.FilterDay, "day, week or month")
	cmd.Flags().StringVar(&kind, "kind", "", "only work or manual sessions")
	cmd.Flags().IntVarP(&last, "last", "n", 0, "show only the n most recent sessions")
	return cmd
}

func sessionDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.db.DeleteSession(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %d\n", id)
			return nil
		},
	}
}

func focusCmd(flags *rootFlags) *cobra.Command {
	var (
		taskID  int64
		minutes int
		mute    bool
	)
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Run a focus session without the full interface",
		Long: `Run a focus session in the terminal and record it when the break ends.

Interrupting during the break saves the session; interrupting during work
discards it. --minutes 0 counts up until interrupted, then saves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			task, err := a.db.GetTask(ctx, taskID)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("minutes") {
				minutes = task.DefaultMinutes
			}
			if minutes < 0 || minutes > config.MaxSessionMinutes {
				return fmt.Errorf("--minutes must be between 0 and %d", config.MaxSessionMinutes)
			}
			tick, err := a.cfg.Tick()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			notifier := notify.NewTerminal(out, a.soundEnabled(ctx), false, a.logger)
			if mute {
				notifier.SetSound(false)
			}
			return runFocus(ctx, a, out, notifier, timer.Task{ID: task.ID, Name: task.Name}, minutes, tick)
		},
	}
	cmd.Flags().Int64Var(&taskID, "task", 0, "task id")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "planned minutes, 0 counts up (default: the task's default)")
	cmd.Flags().BoolVar(&mute, "mute", false, "no bell for this session")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

// focusOptions configures a headless session: there is no transition screen,
// so the break follows the work phase directly.
func focusOptions(n timer.Notifier, results chan<- timer.Result) []timer.Option {
	return []timer.Option{
		timer.WithNotifier(n),
		timer.WithBreak(config.BreakDuration),
		timer.OnComplete(func(r timer.Result) { results <- r }),
	}
}

// runFocus drives a session until it ends or ctx is cancelled, then saves
// whatever the session handed off.
func runFocus(ctx context.Context, a *app, out io.Writer, n timer.Notifier, task timer.Task, minutes int, tick time.Duration) error {
	results := make(chan timer.Result, 1)
	s := timer.New(task, focusOptions(n, results)...)
	if err := s.Start(minutes * 60); err != nil {
		return err
	}
	fmt.Fprintf(out, "Focusing on %s. Press Ctrl+C to stop.\n", task.Name)

	r := timer.NewRunner(s, tick, func(v timer.View) { fmt.Fprint(out, "\r"+focusLine(v)) })
	r.Start(ctx)
	select {
	case <-r.Done():
	case <-ctx.Done():
		r.Stop()
	}
	if !s.Tick().Phase.Terminal() {
		endEarly(s, a.logger)
	}
	fmt.Fprintln(out)

	select {
	case res := <-results:
		if res.ElapsedSeconds <= 0 {
			fmt.Fprintln(out, "Nothing recorded")
			return nil
		}
		// The command context may already be cancelled; the save must still land.
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		saved, err := timer.SaveResult(saveCtx, a.db, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %s on %s\n", util.FormatHuman(saved.Duration()), task.Name)
	default:
		fmt.Fprintln(out, "Session discarded")
	}
	return nil
}

// endEarly mirrors quitting the interface: a count-up session is finished,
// a session past its work phase keeps its value, anything else is dropped.
func endEarly(s *timer.Session, logger *zap.Logger) {
	v := s.Tick()
	var err error
	switch {
	case v.Mode == timer.ModeCountUp && (v.Phase == timer.PhaseRunning || v.Phase == timer.PhasePaused):
		err = s.Finish()
		if err == nil {
			err = s.SkipBreak()
		}
	case v.Phase == timer.PhaseCompleted || v.Phase.InBreak():
		err = s.SkipBreak()
	default:
		err = s.StopWithoutSaving()
	}
	if err != nil {
		util.LogError(logger, "end focus session", err)
	}
}

func focusLine(v timer.View) string {
	switch {
	case v.Phase == timer.PhaseCompleted:
		return fmt.Sprintf("Session complete: %s worked          ", util.FormatHuman(v.Worked))
	case v.Phase.InBreak():
		return fmt.Sprintf("Break %s          ", util.FormatClock(v.BreakRemaining))
	case v.Mode == timer.ModeCountUp:
		return fmt.Sprintf("%s elapsed          ", util.FormatClock(v.Elapsed))
	default:
		return fmt.Sprintf("%s left  %3.0f%%          ", util.FormatClock(v.Remaining), v.Progress*100)
	}
}
