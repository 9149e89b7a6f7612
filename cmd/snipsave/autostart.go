package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipsave/internal/autostart"
	"go.klb.dev/snipsave/internal/settings"
)

func newAutostartCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:       "autostart on|off|status",
		Short:     "Start snipsave when you log in",
		Long:      `Registers "snipsave run" in the current user's Run key (Windows only) and records the choice as program.auto_start in settings.toml.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "status"},
		PreRunE:   func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch args[0] {
			case "on":
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("locate executable: %w", err)
				}
				if err := autostart.Enable(autostart.Command(exe, "run")); err != nil {
					return err
				}
				if err := setAutoStart(store, true); err != nil {
					return err
				}
				fmt.Fprintln(out, "autostart enabled")
			case "off":
				if err := autostart.Disable(); err != nil {
					return err
				}
				if err := setAutoStart(store, false); err != nil {
					return err
				}
				fmt.Fprintln(out, "autostart disabled")
			case "status":
				s, err := store.Get()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "setting: %t\n", s.Program.AutoStart)
				registered, err := autostart.Status()
				switch {
				case err != nil:
					fmt.Fprintf(out, "registration: %v\n", err)
				case registered == "":
					fmt.Fprintln(out, "registration: none")
				default:
					fmt.Fprintf(out, "registration: %s\n", registered)
				}
			default:
				return fmt.Errorf("unknown argument %q (want on, off or status)", args[0])
			}
			return nil
		},
	}
	addSettingsFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func setAutoStart(store *settings.Store, on bool) error {
	return store.Write(func(s *settings.Settings) { s.Program.AutoStart = on })
}
