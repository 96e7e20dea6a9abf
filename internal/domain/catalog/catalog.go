// Package catalog holds the fixed registry of rating domains together with
// the text templates used when reporting on them.
//
// A Catalog is immutable once built and is safe for concurrent use.
package catalog

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/okian/flowfit/internal/domain/fit"
)

// Templates are the three zone-keyed report texts of a domain. Ideal is
// rendered for Flow as well as for the balanced but developing zones; use
// {{if .Developing}} to branch between them.
type Templates struct {
	Underload string `yaml:"underload" json:"underload"`
	Ideal     string `yaml:"ideal" json:"ideal"`
	Overload  string `yaml:"overload" json:"overload"`
}

func (t Templates) source(b fit.Bucket) string {
	switch b {
	case fit.BucketUnderload:
		return t.Underload
	case fit.BucketOverload:
		return t.Overload
	default:
		return t.Ideal
	}
}

// Domain is one rated area of change.
type Domain struct {
	ID          string    `yaml:"id" json:"id"`
	Label       string    `yaml:"label" json:"label"`
	Explanation string    `yaml:"explanation" json:"explanation"`
	Theory      string    `yaml:"theory" json:"theory"`
	Templates   Templates `yaml:"templates" json:"templates"`
}

// TemplateData is the value a domain template is executed against. Levels
// are real-valued so that team means render through the same templates.
type TemplateData struct {
	Domain         string
	Skill          float64
	Challenge      float64
	TimePerception float64
	FitIndex       float64
	Zone           string
	Developing     bool
}

// Catalog is an ordered, read-only set of domains.
type Catalog struct {
	domains   []Domain
	index     map[string]int
	templates []map[fit.Bucket]*template.Template
}

// New validates domains and builds a catalog preserving their order.
func New(domains []Domain) (*Catalog, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("%w: no domains", ErrInvalidCatalog)
	}
	c := &Catalog{
		domains:   make([]Domain, len(domains)),
		index:     make(map[string]int, len(domains)),
		templates: make([]map[fit.Bucket]*template.Template, len(domains)),
	}
	copy(c.domains, domains)

	for i, d := range c.domains {
		id := strings.TrimSpace(d.ID)
		switch {
		case id == "":
			return nil, fmt.Errorf("%w: domain %d has no id", ErrInvalidCatalog, i)
		case id != d.ID:
			return nil, fmt.Errorf("%w: domain id %q has surrounding whitespace", ErrInvalidCatalog, d.ID)
		case strings.TrimSpace(d.Label) == "":
			return nil, fmt.Errorf("%w: domain %q has no label", ErrInvalidCatalog, id)
		}
		if _, dup := c.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate domain %q", ErrInvalidCatalog, id)
		}
		c.index[id] = i

		parsed, err := parseTemplates(d)
		if err != nil {
			return nil, err
		}
		c.templates[i] = parsed
	}
	return c, nil
}

func parseTemplates(d Domain) (map[fit.Bucket]*template.Template, error) {
	out := make(map[fit.Bucket]*template.Template, 3)
	for _, b := range []fit.Bucket{fit.BucketUnderload, fit.BucketIdeal, fit.BucketOverload} {
		src := d.Templates.source(b)
		if strings.TrimSpace(src) == "" {
			return nil, fmt.Errorf("%w: domain %q has no %s template", ErrInvalidCatalog, d.ID, b)
		}
		t, err := template.New(d.ID + "." + b.String()).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("%w: domain %q %s template: %v", ErrInvalidCatalog, d.ID, b, err)
		}
		// Execute once so that references to unknown fields fail at load time.
		if err := t.Execute(&bytes.Buffer{}, TemplateData{Domain: d.Label}); err != nil {
			return nil, fmt.Errorf("%w: domain %q %s template: %v", ErrInvalidCatalog, d.ID, b, err)
		}
		out[b] = t
	}
	return out, nil
}

// Len returns the number of domains.
func (c *Catalog) Len() int { return len(c.domains) }

// IDs returns the domain ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.domains))
	for i, d := range c.domains {
		ids[i] = d.ID
	}
	return ids
}

// Domains returns a copy of the domains in catalog order.
func (c *Catalog) Domains() []Domain {
	out := make([]Domain, len(c.domains))
	copy(out, c.domains)
	return out
}

// Lookup returns the domain with the given id.
func (c *Catalog) Lookup(id string) (Domain, bool) {
	i, ok := c.index[id]
	if !ok {
		return Domain{}, false
	}
	return c.domains[i], true
}

// Position returns the catalog index of id, used for deterministic ordering.
func (c *Catalog) Position(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Render executes the template of domain id for the given bucket.
func (c *Catalog) Render(id string, b fit.Bucket, data TemplateData) (string, error) {
	i, ok := c.index[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, id)
	}
	t, ok := c.templates[i][b]
	if !ok {
		return "", fmt.Errorf("%w: domain %q has no template for %s", ErrInvalidCatalog, id, b)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s/%s: %w", id, b, err)
	}
	return buf.String(), nil
}
