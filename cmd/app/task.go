package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/util"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func taskCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(taskAddCmd(flags), taskListCmd(flags), taskEditCmd(flags), taskArchiveCmd(flags), taskDeleteCmd(flags))
	return cmd
}

func taskAddCmd(flags *rootFlags) *cobra.Command {
	var (
		minutes     int
		description string
		color       string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			t := models.Task{Name: strings.Join(args, " "), DefaultMinutes: minutes, Color: color}
			if description != "" {
				t.Description = &description
			}
			task, err := a.db.AddTask(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s (%dm)\n", task.ID, task.Name, task.DefaultMinutes)
			return nil
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "default session length in minutes")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&color, "color", "", "hex color, e.g. "+config.DefaultColor)
	return cmd
}

func taskListCmd(flags *rootFlags) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			tasks, err := a.db.ListTasks(cmd.Context(), archived)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}
			for _, t := range tasks {
				status := ""
				if t.Archived {
					status = "  (archived)"
				}
				fmt.Fprintf(out, "%4d  %-40s %4dm%s\n", t.ID,
					ansi.Truncate(t.Name, 40, config.TruncationSuffix), t.DefaultMinutes, status)
				if desc := util.Deref(t.Description); desc != "" {
					fmt.Fprintf(out, "      %s\n", ansi.Truncate(desc, 60, config.TruncationSuffix))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived tasks")
	return cmd
}

func taskEditCmd(flags *rootFlags) *cobra.Command {
	var (
		name        string
		minutes     int
		description string
		color       string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var u models.TaskUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("minutes") {
				u.DefaultMinutes = &minutes
			}
			if cmd.Flags().Changed("description") {
				u.Description = &description
			}
			if cmd.Flags().Changed("color") {
				u.Color = &color
			}
			if u == (models.TaskUpdate{}) {
				return fmt.Errorf("nothing to change; pass --name, --minutes, --description or --color")
			}

			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			task, err := a.db.UpdateTask(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s (%dm)\n", task.ID, task.Name, task.DefaultMinutes)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "default session length in minutes")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&color, "color", "", "hex color")
	return cmd
}

func taskArchiveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a task, or restore it if already archived",
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
			archived, err := a.db.ToggleTaskArchive(cmd.Context(), id)
			if err != nil {
				return err
			}
			verb := "Restored"
			if archived {
				verb = "Archived"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s task %d\n", verb, id)
			return nil
		},
	}
}

func taskDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and all of its sessions",
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
			sessions, err := a.db.SessionsForTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := a.db.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d and %d session(s)\n", id, len(sessions))
			return nil
		},
	}
}
