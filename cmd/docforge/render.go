package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wudi/docforge"
	"github.com/wudi/docforge/images"
	"github.com/wudi/docforge/source"
)

func renderCmd(g *globalFlags) *cobra.Command {
	var (
		outDir   string
		formats  []string
		imageDir string
		printB64 bool
	)

	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render a JSON, Markdown or HTML document",
		Long: `Render reads a document and writes one file per requested format next to
each other in the output directory, named after the input file.

Image keywords are looked up in --images: "Mountain Lake" matches
mountain-lake.jpg, mountain-lake.png and so on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			logger := cfg.Logger(cmd.ErrOrStderr())

			wanted := make([]docforge.Format, 0, len(formats))
			for _, name := range formats {
				f, err := docforge.ParseFormat(name)
				if err != nil {
					return err
				}
				wanted = append(wanted, f)
			}

			doc, err := source.Load(args[0])
			if err != nil {
				return err
			}

			var resolver images.Resolver
			if imageDir != "" {
				resolver = images.NewBatchResolver(images.NewDirResolver(imageDir),
					images.WithConcurrency(cfg.ResolverConcurrency),
					images.WithRate(cfg.ResolverRate),
					images.WithLogger(logger))
			}

			gen := docforge.New(docforge.WithConfig(cfg), docforge.WithLogger(logger))
			out, genErr := gen.ResolveAndGenerate(cmd.Context(), resolver, doc, wanted...)
			if out == nil && genErr != nil {
				return genErr
			}

			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if !printB64 {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}
			var writeErrs []error
			for _, f := range docforge.Formats {
				data, ok := out[f]
				if !ok {
					continue
				}
				if printB64 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", f.MIMEType(), docforge.Encode(data))
					continue
				}
				path := filepath.Join(outDir, stem+"."+f.Extension())
				if err := os.WriteFile(path, data, 0o644); err != nil {
					writeErrs = append(writeErrs, fmt.Errorf("write %s: %w", path, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(data))
			}
			return errors.Join(append([]error{genErr}, writeErrs...)...)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"pdf", "docx", "pptx"}, "formats to render: pdf, docx, pptx")
	cmd.Flags().StringVar(&imageDir, "images", "", "directory to resolve image keywords from")
	cmd.Flags().BoolVar(&printB64, "base64", false, "print base64 to stdout instead of writing files")
	return cmd
}
