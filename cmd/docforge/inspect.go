package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/source"
)

func inspectCmd(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Show the normalised document model",
		Long: `Inspect parses a document the way render does and prints what the
composers will see after defaults are applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			doc, err := source.Load(args[0])
			if err != nil {
				return err
			}
			norm := model.Normalize(doc)

			out := cmd.OutOrStdout()
			if asJSON {
				b, err := json.MarshalIndent(norm, "", "  ")
				if err != nil {
					return fmt.Errorf("encode document: %w", err)
				}
				fmt.Fprintln(out, string(b))
				return nil
			}

			direction := "ltr"
			if norm.IsRTL() {
				direction = "rtl"
			}
			fmt.Fprintf(out, "Title:     %s\n", norm.Title)
			fmt.Fprintf(out, "Author:    %s\n", norm.AuthorOr(cfg.Brand))
			fmt.Fprintf(out, "Language:  %s (%s)\n", orDash(norm.Language), direction)
			fmt.Fprintf(out, "Sections:  %d\n", len(norm.Sections))
			for i, s := range norm.Sections {
				fmt.Fprintf(out, "  %d. %s (%d bullets)\n", i+1, s.Heading, len(s.Bullets))
			}
			fmt.Fprintf(out, "Slides:    %d\n", len(norm.Slides))
			fmt.Fprintf(out, "Keywords:  %s\n", orDash(strings.Join(norm.Keywords(), ", ")))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the model as JSON")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
