// Package catalog holds the pre-written books offered on the catalog page
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// InitialDisplayCount is how many books of a category are shown before the
// "More Books" toggle
const InitialDisplayCount = 3

var ErrBookNotFound = errors.New("book not found")

//go:embed data/books.yaml
var defaultCatalog []byte

// PageText is one page of a book listing
type PageText struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// Pages keeps book pages in the order they were written. In YAML it is a
// mapping from page field (Cover, Story1.., TheEnd) to text.
type Pages []PageText

func (p *Pages) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: pages must be a mapping", node.Line)
	}
	pages := make(Pages, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name, text string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&text); err != nil {
			return err
		}
		pages = append(pages, PageText{Name: name, Text: text})
	}
	*p = pages
	return nil
}

func (p Pages) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, page := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: page.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: page.Text},
		)
	}
	return node, nil
}

// Book is a pre-written booklet
type Book struct {
	Key   string `json:"key" yaml:"key"`
	Pages Pages  `json:"pages" yaml:"pages"`
}

// PageText returns the text stored under a page field, or "" when absent
func (b *Book) PageText(name string) string {
	if b == nil {
		return ""
	}
	for _, p := range b.Pages {
		if p.Name == name {
			return p.Text
		}
	}
	return ""
}

// Title is the cover text, falling back to the key
func (b *Book) Title() string {
	if t := b.PageText("Cover"); t != "" {
		return t
	}
	return b.Key
}

// Category groups books on the catalog page
type Category struct {
	Key   string  `json:"key" yaml:"key"`
	Name  string  `json:"name" yaml:"name"`
	Books []*Book `json:"books" yaml:"books"`
}

// Visible returns the books shown before expanding the category
func (c *Category) Visible() []*Book {
	if len(c.Books) <= InitialDisplayCount {
		return c.Books
	}
	return c.Books[:InitialDisplayCount]
}

// Hidden returns the books revealed by the "More Books" toggle
func (c *Category) Hidden() []*Book {
	if len(c.Books) <= InitialDisplayCount {
		return nil
	}
	return c.Books[InitialDisplayCount:]
}

// HasMore reports whether the category needs an expand toggle
func (c *Category) HasMore() bool {
	return len(c.Books) > InitialDisplayCount
}

// Catalog is the full set of categories
type Catalog struct {
	Categories []*Category `json:"categories" yaml:"categories"`

	index map[string]*Book
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for _, cat := range c.Categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("failed to parse catalog: category without key")
		}
		for _, b := range cat.Books {
			if b.Key == "" {
				return nil, fmt.Errorf("failed to parse catalog: book without key in category %s", cat.Key)
			}
		}
	}
	c.reindex()
	return &c, nil
}

func (c *Catalog) reindex() {
	c.index = make(map[string]*Book)
	for _, cat := range c.Categories {
		for _, b := range cat.Books {
			c.index[b.Key] = b
		}
	}
}

// Lookup finds a book by key across all categories
func (c *Catalog) Lookup(key string) (*Book, bool) {
	if c == nil {
		return nil, false
	}
	b, ok := c.index[key]
	return b, ok
}

// Book is Lookup with an error for callers that report missing books
func (c *Catalog) Book(key string) (*Book, error) {
	b, ok := c.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, key)
	}
	return b, nil
}

// Books returns every book in catalog order
func (c *Catalog) Books() []*Book {
	var out []*Book
	for _, cat := range c.Categories {
		out = append(out, cat.Books...)
	}
	return out
}

// Category returns the category with the given key
func (c *Catalog) Category(key string) (*Category, bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return nil, false
}

// Merge adds the categories and books of other. Books whose key already
// exists replace the earlier entry in place.
func (c *Catalog) Merge(other *Catalog) {
	for _, oc := range other.Categories {
		cat, ok := c.Category(oc.Key)
		if !ok {
			cat = &Category{Key: oc.Key, Name: oc.Name}
			c.Categories = append(c.Categories, cat)
		}
		for _, b := range oc.Books {
			if !c.replace(b) {
				cat.Books = append(cat.Books, b)
			}
		}
	}
	c.reindex()
}

func (c *Catalog) replace(book *Book) bool {
	for _, cat := range c.Categories {
		for i, b := range cat.Books {
			if b.Key == book.Key {
				cat.Books[i] = book
				return true
			}
		}
	}
	return false
}
