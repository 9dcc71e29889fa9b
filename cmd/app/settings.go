package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/util"
)

func configCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and preferences",
	}
	cmd.AddCommand(configInitCmd(flags), configSoundCmd(flags))
	return cmd
}

func configInitCmd(flags *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			cfg := config.Default(util.DataDir(config.AppName))
			if flags.dataDir != "" {
				cfg.DataDir = flags.dataDir
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configSoundCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "sound [on|off]",
		Short:     "Show or change whether the bell rings when a phase ends",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			if len(args) == 1 {
				value := "true"
				if args[0] == "off" {
					value = "false"
				}
				if err := a.db.SetSetting(ctx, config.SettingSoundEnabled, value); err != nil {
					return err
				}
			}
			state := "off"
			if a.soundEnabled(ctx) {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sound is %s\n", state)
			return nil
		},
	}
}
