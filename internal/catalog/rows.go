package catalog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// PageRow is the flat form of a catalog used by JSONL and Parquet files:
// one row per book page, in catalog order
type PageRow struct {
	Category     string `json:"category" parquet:"category"`
	CategoryName string `json:"category_name" parquet:"category_name"`
	Book         string `json:"book" parquet:"book"`
	Page         string `json:"page" parquet:"page"`
	Text         string `json:"text" parquet:"text"`
}

// Rows flattens the catalog
func (c *Catalog) Rows() []PageRow {
	var rows []PageRow
	for _, cat := range c.Categories {
		for _, b := range cat.Books {
			for _, p := range b.Pages {
				rows = append(rows, PageRow{
					Category:     cat.Key,
					CategoryName: cat.Name,
					Book:         b.Key,
					Page:         p.Name,
					Text:         p.Text,
				})
			}
		}
	}
	return rows
}

// FromRows rebuilds a catalog, keeping the first-seen order of categories,
// books and pages
func FromRows(rows []PageRow) (*Catalog, error) {
	c := &Catalog{}
	cats := make(map[string]*Category)
	books := make(map[string]*Book)
	for i, r := range rows {
		if r.Category == "" || r.Book == "" || r.Page == "" {
			return nil, fmt.Errorf("row %d: category, book and page are required", i+1)
		}
		cat, ok := cats[r.Category]
		if !ok {
			name := r.CategoryName
			if name == "" {
				name = r.Category
			}
			cat = &Category{Key: r.Category, Name: name}
			cats[r.Category] = cat
			c.Categories = append(c.Categories, cat)
		}
		b, ok := books[r.Book]
		if !ok {
			b = &Book{Key: r.Book}
			books[r.Book] = b
			cat.Books = append(cat.Books, b)
		}
		b.Pages = append(b.Pages, PageText{Name: r.Page, Text: r.Text})
	}
	c.reindex()
	return c, nil
}

// LoadFile loads a catalog from a YAML, JSONL or Parquet file
func LoadFile(path string) (*Catalog, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		return Parse(data)
	case ".jsonl", ".json":
		rows, err := loadJSONL(path)
		if err != nil {
			return nil, err
		}
		return FromRows(rows)
	case ".parquet":
		rows, err := loadParquet(path)
		if err != nil {
			return nil, err
		}
		return FromRows(rows)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .yaml, .jsonl, .parquet)", ext)
	}
}

func loadJSONL(path string) ([]PageRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	var rows []PageRow
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row PageRow
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}

	slog.Debug("Finished reading JSONL catalog", "path", path, "rows", len(rows))
	return rows, nil
}

func loadParquet(path string) ([]PageRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[PageRow](pf)
	defer reader.Close()

	var rows []PageRow
	batch := make([]PageRow, 128)
	for {
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet catalog", "path", path, "rows", len(rows), "row_groups", len(pf.RowGroups()))
	return rows, nil
}

// WriteFile writes the catalog in the format named by the path extension
func (c *Catalog) WriteFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		return os.WriteFile(path, data, 0644)
	case ".jsonl", ".json":
		return writeJSONL(path, c.Rows())
	case ".parquet":
		if err := parquet.WriteFile(path, c.Rows()); err != nil {
			return fmt.Errorf("failed to write parquet: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .yaml, .jsonl, .parquet)", ext)
	}
}

func writeJSONL(path string, rows []PageRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			file.Close()
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return file.Close()
}
