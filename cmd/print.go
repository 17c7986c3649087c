package cmd

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/lehigh-university-libraries/booklet/internal/editor"
	"github.com/lehigh-university-libraries/booklet/internal/layout"
	"github.com/lehigh-university-libraries/booklet/internal/pdfexport"
	"github.com/spf13/cobra"
)

func newPrintCmd() *cobra.Command {
	var (
		extra    string
		template string
		book     string
		texts    map[string]string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print an editor layout without opening the browser",
		Long: `Renders a scene the way the editor would for the given template, book
and page texts, then prints it to PDF. Page texts use the editor's textN
numbering: on the 8-page template text1 is the cover, text8 the back cover
and textN page N-1; on the 4-page template textN is page N.`,
		Example: `  booklet print --template 4-page --text 1="My Book" --text 4="The End" -o mine.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := layout.Lookup(template); err != nil {
				return err
			}
			c, err := loadCatalog(extra)
			if err != nil {
				return err
			}
			if book != "" {
				if _, err := c.Book(book); err != nil {
					return err
				}
			}

			q := url.Values{}
			q.Set("template", template)
			if book != "" {
				q.Set("book", book)
			}
			for n, text := range texts {
				if _, err := strconv.Atoi(n); err != nil {
					return fmt.Errorf("invalid page number %q for --text", n)
				}
				q.Set("text"+n, text)
			}

			scene := editor.Render(editor.ParseParams(q), c, editor.DefaultCellSize)
			data, err := pdfexport.New().Scene(scene)
			if err != nil {
				return err
			}
			if output == "" {
				output = pdfexport.Filename(book)
			}
			if err := pdfexport.WriteFile(output, data); err != nil {
				return err
			}
			slog.Info("Scene printed", "template", scene.Template, "book", book, "path", output)
			return nil
		},
	}

	addCatalogFlag(cmd, &extra)
	cmd.Flags().StringVar(&template, "template", layout.DefaultTemplate, "Page layout (8-page, 4-page)")
	cmd.Flags().StringVar(&book, "book", "", "Catalog book to seed the pages from")
	cmd.Flags().StringToStringVar(&texts, "text", nil, "Page text as N=text (repeatable); ignored with --book")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <book>.pdf or booklet.pdf)")

	return cmd
}
