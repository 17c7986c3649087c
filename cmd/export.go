package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/lehigh-university-libraries/booklet/internal/catalog"
	"github.com/lehigh-university-libraries/booklet/internal/pdfexport"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

func newExportCmd() *cobra.Command {
	var (
		extra  string
		keys   []string
		all    bool
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export catalog books as printable PDFs",
		Long: `Writes <book>.pdf for each selected catalog book into the output directory.

Every book prints on the 8-page sheet: a landscape Letter page whose top row
is upside down so the folded sheet reads in order.`,
		Example: `  # One book
  booklet export --book cat-on-a-mat

  # The whole catalog
  booklet export --all --out ./pdfs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(extra)
			if err != nil {
				return err
			}

			var books []*catalog.Book
			if all {
				books = c.Books()
			}
			for _, key := range keys {
				b, err := c.Book(key)
				if err != nil {
					return err
				}
				books = append(books, b)
			}
			if len(books) == 0 {
				return fmt.Errorf("nothing to export: pass --book or --all")
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
			return exportBooks(pdfexport.New(), books, outDir, runtime.GOMAXPROCS(0))
		},
	}

	addCatalogFlag(cmd, &extra)
	cmd.Flags().StringSliceVar(&keys, "book", nil, "Book key to export (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Export every catalog book")
	cmd.Flags().StringVar(&outDir, "out", envOr("BOOKLET_OUTPUT_DIR", "."), "Output directory")

	return cmd
}

// exportBooks writes each book concurrently, at most concurrency at a time.
// A failed book is logged and reported; the others are still written.
func exportBooks(exporter *pdfexport.Exporter, books []*catalog.Book, outDir string, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	slog.Info("Exporting books", "count", len(books), "concurrency", concurrency)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		failed    []string
		semaphore = make(chan struct{}, concurrency)
	)
	for i, book := range books {
		wg.Add(1)
		go func(idx int, book *catalog.Book) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			path := filepath.Join(outDir, pdfexport.Filename(book.Key))
			data, err := exporter.Book(book)
			if err == nil {
				err = pdfexport.WriteFile(path, data)
			}
			if err != nil {
				slog.Error("Failed to export book", "book", book.Key, "err", err)
				mu.Lock()
				failed = append(failed, book.Key)
				mu.Unlock()
				return
			}
			slog.Info("Exported book", "book", book.Key, "path", path, "progress", fmt.Sprintf("%d/%d", idx+1, len(books)))
		}(i, book)
	}
	wg.Wait()

	if len(failed) > 0 {
		return fmt.Errorf("failed to export %d of %d books: %v", len(failed), len(books), failed)
	}
	return nil
}
