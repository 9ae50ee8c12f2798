package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/observability"
)

var stylesCommand = &cobra.Command{
	Use:   "styles",
	Short: "List the available resume styles",
	RunE:  runStyles,
}

func init() {
	stylesCommand.Flags().String("styles-dir", "", "Directory of CSS styles (default built-in styles)")
	rootCmd.AddCommand(stylesCommand)
}

func runStyles(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	observability.NewPrinter(a.out).PrintStyles(a.styles().Styles())
	return nil
}
