package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/booklet/internal/catalog"
	"github.com/spf13/cobra"
)

// loadCatalog returns the embedded catalog merged with an optional extra
// catalog file.
func loadCatalog(extra string) (*catalog.Catalog, error) {
	c, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	if extra == "" {
		return c, nil
	}
	more, err := catalog.LoadFile(extra)
	if err != nil {
		return nil, err
	}
	c.Merge(more)
	slog.Info("Merged catalog", "path", extra, "books", len(c.Books()))
	return c, nil
}

func addCatalogFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVar(path, "catalog", os.Getenv("BOOKLET_CATALOG"), "Extra catalog file to merge (.yaml, .jsonl, .parquet)")
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and convert the book catalog",
	}
	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogConvertCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var extra string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog books by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(extra)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tKEY\tTITLE\tPAGES")
			for _, cat := range c.Categories {
				for _, b := range cat.Books {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", cat.Name, b.Key, b.Title(), len(b.Pages))
				}
			}
			return tw.Flush()
		},
	}
	addCatalogFlag(cmd, &extra)
	return cmd
}

func newCatalogConvertCmd() *cobra.Command {
	var extra, output string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Write the catalog as YAML, JSONL or Parquet rows",
		Example: `  # One row per page, for loading into a dataframe
  booklet catalog convert -o books.parquet

  # Merge a local catalog and write it back as YAML
  booklet catalog convert --catalog extra.jsonl -o all.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			c, err := loadCatalog(extra)
			if err != nil {
				return err
			}
			if err := c.WriteFile(output); err != nil {
				return err
			}
			slog.Info("Catalog written", "path", output, "books", len(c.Books()))
			return nil
		},
	}
	addCatalogFlag(cmd, &extra)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.yaml, .jsonl, .parquet)")
	return cmd
}
