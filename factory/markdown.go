package factory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"
	"github.com/russross/blackfriday/v2"
)

// Front matter recognized at the top of a Markdown document, in YAML
// (---) or TOML (+++).
type MarkdownMeta struct {
	Title string   `yaml:"title" toml:"title"`
	Tags  []string `yaml:"tags" toml:"tags"`
}

// Markdown renders its content to HTML on Save.
type Markdown struct {
	mu   sync.RWMutex
	meta MarkdownMeta
	html []byte
}

func NewMarkdown() Document { return &Markdown{} }

func (*Markdown) Kind() string { return KindMarkdown }
func (*Markdown) Open() string { return "opened Markdown document" }

func (m *Markdown) Save(content string) (string, error) {
	var meta MarkdownMeta
	body, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil {
		return "", fmt.Errorf("error parsing front matter: %w", err)
	}
	html := blackfriday.Run(body)

	m.mu.Lock()
	m.meta = meta
	m.html = html
	m.mu.Unlock()

	if meta.Title != "" {
		return fmt.Sprintf("saved content to Markdown: %s", meta.Title), nil
	}
	return "saved content to Markdown", nil
}

func (m *Markdown) Meta() MarkdownMeta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

// HTML is the rendering of the last saved content.
func (m *Markdown) HTML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return string(m.html)
}
