package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/itsaky/go-tree-sitter-android/internal/languages"
)

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the bundled grammars and their file extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderLanguages())

			return err
		},
	}
}

func renderLanguages() string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false
	tbl.Style().Options.SeparateFooter = false

	tbl.AppendHeader(table.Row{"Language", "Extensions"})

	names := languages.Names()
	for _, name := range names {
		tbl.AppendRow(table.Row{name, strings.Join(languages.Extensions(name), " ")})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d languages", len(names))})

	return tbl.Render()
}
