package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kidneymate/server/internal/markdown"
	"github.com/kidneymate/server/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SchemeService serves the healthcare scheme pages under <content>/schemes.
// Pages are read once by Load.
type SchemeService struct {
	parser      *markdown.Parser
	contentPath string
	schemes     []*model.Scheme
	bySlug      map[string]*model.Scheme
}

func NewSchemeService(contentPath string) *SchemeService {
	return &SchemeService{
		parser:      markdown.NewParser(),
		contentPath: contentPath,
		bySlug:      map[string]*model.Scheme{},
	}
}

type schemeMeta struct {
	Title     string `yaml:"title"`
	Order     int    `yaml:"order"`
	URL       string `yaml:"url"`
	LinkLabel string `yaml:"linkLabel"`
}

func (s *SchemeService) Load() error {
	paths, err := filepath.Glob(filepath.Join(s.contentPath, "schemes", "*.md"))
	if err != nil {
		return err
	}

	schemes := make([]*model.Scheme, 0, len(paths))
	bySlug := make(map[string]*model.Scheme, len(paths))

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var meta schemeMeta
		html, err := s.parser.Parse(content, &meta)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}

		slug := strings.TrimSuffix(filepath.Base(path), ".md")
		if meta.Title == "" {
			meta.Title = titleFromSlug(slug)
		}

		scheme := &model.Scheme{
			Slug:        slug,
			Title:       meta.Title,
			Order:       meta.Order,
			URL:         meta.URL,
			LinkLabel:   meta.LinkLabel,
			HTMLContent: string(html),
		}
		schemes = append(schemes, scheme)
		bySlug[slug] = scheme
	}

	sort.Slice(schemes, func(i, j int) bool {
		if schemes[i].Order != schemes[j].Order {
			return schemes[i].Order < schemes[j].Order
		}
		return schemes[i].Slug < schemes[j].Slug
	})

	s.schemes = schemes
	s.bySlug = bySlug
	return nil
}

func (s *SchemeService) Schemes() []*model.Scheme {
	return s.schemes
}

func (s *SchemeService) Scheme(slug string) (*model.Scheme, error) {
	scheme, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrSchemeNotFound
	}
	return scheme, nil
}

func titleFromSlug(slug string) string {
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.English).String(strings.Join(strings.Fields(slug), " "))
}
