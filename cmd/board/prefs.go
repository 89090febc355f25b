package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func prefsCmd(a *app) *cobra.Command {
	var sidePanel, darkMode bool

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("side-panel") {
				if err := a.prefs.SetShowSidePanel(sidePanel); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("dark-mode") {
				if err := a.prefs.SetDarkMode(darkMode); err != nil {
					return err
				}
			}
			p := a.prefs.Get()
			fmt.Fprintf(a.out, "side panel: %t\ndark mode:  %t\n", p.ShowSidePanel, p.DarkMode)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sidePanel, "side-panel", false, "show the summary panel under the board")
	cmd.Flags().BoolVar(&darkMode, "dark-mode", false, "use high-contrast headings")
	return cmd
}
