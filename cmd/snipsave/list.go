package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipsave/internal/archive"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List saved screenshots, newest first",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSettings(v)
			if err != nil {
				return err
			}
			dir, err := screenshotsDir(store)
			if err != nil {
				return err
			}
			entries, err := archive.List(dir)
			if err != nil {
				return err
			}
			if n := v.GetInt("limit"); n > 0 && len(entries) > n {
				entries = entries[:n]
			}
			renderList(cmd.OutOrStdout(), dir, entries)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "show at most this many files (0 = all)")
	addSettingsFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func renderList(w io.Writer, dir string, entries []archive.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("%s", dir)
	t.AppendHeader(table.Row{"Name", "Size", "Dimensions", "Created"})
	for _, e := range entries {
		dims := "-"
		if e.Width > 0 {
			dims = fmt.Sprintf("%dx%d", e.Width, e.Height)
		}
		t.AppendRow(table.Row{
			e.Name,
			humanize.IBytes(uint64(e.Size)),
			dims,
			e.Created.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d files", len(entries))})
	t.Render()
}
