package main

import (
	"fmt"

	"github.com/justsurfingit/rfp-manager/internal/extraction"
	"github.com/spf13/cobra"
)

func newTaxonomyCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "taxonomy <path>",
		Short: "Load a taxonomy and report what was kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, err := extraction.LoadTaxonomy(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format:   %s\n", extraction.FormatFromPath(args[0]))
			fmt.Fprintf(out, "entries:  %d\n", tax.Len())
			fmt.Fprintf(out, "dropped:  %d\n", tax.Dropped())

			languages := 0
			for _, e := range tax.Entries() {
				if extraction.IsLanguage(e.Name) {
					languages++
				}
				if list {
					fmt.Fprintf(out, "%s\t%s\n", e.ID, e.Name)
				}
			}
			fmt.Fprintf(out, "languages: %d\n", languages)

			if _, err := extraction.BuildMatcher(tax); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "Print every retained entry")
	return cmd
}
