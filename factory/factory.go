package factory

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/river-now/patterns/kit/colorlog"
)

var Log = colorlog.New("factory")

const (
	KindPDF      = "pdf"
	KindWord     = "word"
	KindExcel    = "excel"
	KindMarkdown = "markdown"
)

var (
	ErrUnsupportedKind = errors.New("unsupported document kind")
	ErrNoMatch         = errors.New("no document kind matches path")
)

type Factory interface {
	Create(kind string) (Document, error)
}

// Creator builds a new document. It must return a fresh value on each call.
type Creator func() Document

/////////////////////////////////////////////////////////////////////
/////// SIMPLE
/////////////////////////////////////////////////////////////////////

// Simple knows pdf, word and excel and nothing else.
type Simple struct{}

func (Simple) Create(kind string) (Document, error) {
	switch kind {
	case KindPDF:
		return PDF{}, nil
	case KindWord:
		return Word{}, nil
	case KindExcel:
		return Excel{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

/////////////////////////////////////////////////////////////////////
/////// REGISTRY
/////////////////////////////////////////////////////////////////////

type pattern struct {
	glob string
	kind string
}

// Registry creates documents from creators registered at runtime. It is
// safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	creators map[string]Creator
	patterns []pattern
}

// NewRegistry returns a Registry with pdf, word, excel and markdown
// registered, along with their default path patterns.
func NewRegistry() *Registry {
	r := &Registry{creators: make(map[string]Creator)}
	r.MustRegister(KindPDF, func() Document { return PDF{} })
	r.MustRegister(KindWord, func() Document { return Word{} })
	r.MustRegister(KindExcel, func() Document { return Excel{} })
	r.MustRegister(KindMarkdown, NewMarkdown)

	r.MustRegisterPattern(KindPDF, "**/*.pdf")
	r.MustRegisterPattern(KindWord, "**/*.{doc,docx}")
	r.MustRegisterPattern(KindExcel, "**/*.{xls,xlsx}")
	r.MustRegisterPattern(KindMarkdown, "**/*.{md,markdown}")
	return r
}

// Register adds or replaces the creator for kind.
func (r *Registry) Register(kind string, c Creator) error {
	if kind == "" {
		return errors.New("document kind must not be empty")
	}
	if c == nil {
		return fmt.Errorf("creator for %q must not be nil", kind)
	}
	r.mu.Lock()
	_, replaced := r.creators[kind]
	r.creators[kind] = c
	r.mu.Unlock()
	Log.Debug("registered document kind", "kind", kind, "replaced", replaced)
	return nil
}

func (r *Registry) MustRegister(kind string, c Creator) {
	if err := r.Register(kind, c); err != nil {
		panic(err)
	}
}

func (r *Registry) Create(kind string) (Document, error) {
	r.mu.RLock()
	c, ok := r.creators[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	return c(), nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.creators))
	for k := range r.creators {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// RegisterPattern routes paths matching the doublestar glob to kind.
// Patterns registered later take precedence.
func (r *Registry) RegisterPattern(kind, glob string) error {
	if !doublestar.ValidatePattern(glob) {
		return fmt.Errorf("invalid pattern %q", glob)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creators[kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	r.patterns = append(r.patterns, pattern{glob: glob, kind: kind})
	return nil
}

func (r *Registry) MustRegisterPattern(kind, glob string) {
	if err := r.RegisterPattern(kind, glob); err != nil {
		panic(err)
	}
}

// KindForPath returns the kind whose pattern matches path. Matching is
// case-insensitive on the file extension.
func (r *Registry) KindForPath(path string) (string, error) {
	p := filepath.ToSlash(strings.TrimPrefix(path, filepath.VolumeName(path)))
	p = strings.TrimLeft(p, "/")
	if ext := filepath.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext) + strings.ToLower(ext)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pat := range slices.Backward(r.patterns) {
		if ok, _ := doublestar.Match(pat.glob, p); ok {
			return pat.kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoMatch, path)
}

func (r *Registry) CreateForPath(path string) (Document, error) {
	kind, err := r.KindForPath(path)
	if err != nil {
		return nil, err
	}
	return r.Create(kind)
}
