package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipsave/internal/ipc"
	"go.klb.dev/snipsave/internal/settings"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Report whether a snipsave daemon is running",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if status, err := ipc.Query(cmd.Context(), ipc.SocketPath()); err == nil {
				fmt.Fprintf(out, "running: %s\n", status)
			} else {
				fmt.Fprintln(out, "not running")
			}

			store, err := openSettings(v)
			if err != nil {
				return err
			}
			s, err := store.Get()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "settings: %s\n  %s\n", store.Path(), settingsSummary(s))
			return nil
		},
	}
	addSettingsFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

// settingsSummary renders the settings the status command reports.
func settingsSummary(s settings.Settings) string {
	return fmt.Sprintf("screenshots=%s auto_start=%t", s.Paths.Screenshots, s.Program.AutoStart)
}
