// Package catalog loads the free API catalog and answers queries over it.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// AuthType is the authentication scheme an API declares.
// The catalog may carry values beyond the known constants.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "apiKey"
	AuthOAuth  AuthType = "oauth"
)

// Document is the top-level shape of the catalog file.
type Document struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category groups APIs under a display name and a filter slug.
type Category struct {
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
	APIs []API  `json:"apis" yaml:"apis"`
}

// API is one entry of a category as it appears in the catalog file.
// Keys the catalog carries beyond the known fields are kept in Extra.
type API struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	URL         string   `json:"url" yaml:"url"`
	Auth        AuthType `json:"auth" yaml:"auth"`
	TestURL     string   `json:"testUrl,omitempty" yaml:"testUrl,omitempty"`
	Extra       Fields   `json:"-" yaml:"-"`
}

// Field is one extra catalog key and its value as raw JSON.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Fields holds extra keys in file order. Values are never decoded, so
// numbers keep their exact text.
type Fields []Field

// Get returns the raw value stored under key.
func (f Fields) Get(key string) (json.RawMessage, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// set replaces the value of an existing key in place or appends a new one.
func (f Fields) set(key string, value json.RawMessage) Fields {
	for i := range f {
		if f[i].Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

// knownAPIKeys are decoded into API fields and never land in Extra.
var knownAPIKeys = map[string]bool{"name": true, "description": true, "url": true, "auth": true, "testUrl": true}

// annotationKeys are written by Record from the containing category.
// A catalog entry carrying them is overridden, not duplicated.
var annotationKeys = map[string]bool{"category": true, "categorySlug": true}

type apiFields struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	URL         string   `json:"url" yaml:"url"`
	Auth        AuthType `json:"auth" yaml:"auth"`
	TestURL     *string  `json:"testUrl" yaml:"testUrl"`
}

func (f apiFields) api() API {
	a := API{
		Name:        f.Name,
		Description: f.Description,
		URL:         f.URL,
		Auth:        f.Auth,
	}
	if f.TestURL != nil {
		a.TestURL = *f.TestURL
	}
	return a
}

// UnmarshalJSON decodes the known fields and keeps every other key in Extra.
func (a *API) UnmarshalJSON(data []byte) error {
	var f apiFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var extra Fields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if knownAPIKeys[key] || annotationKeys[key] {
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return err
		}
		extra = extra.set(key, compact.Bytes())
	}

	*a = f.api()
	a.Extra = extra
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON. Extra values are
// converted to JSON once, at load time.
func (a *API) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: api entry must be a mapping", node.Line)
	}
	var f apiFields
	if err := node.Decode(&f); err != nil {
		return err
	}

	var extra Fields
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if knownAPIKeys[key] || annotationKeys[key] {
			continue
		}
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: field %q: %w", node.Content[i].Line, key, err)
		}
		extra = extra.set(key, raw)
	}

	*a = f.api()
	a.Extra = extra
	return nil
}

// HasTestURL reports whether the API is eligible for a quick test.
func (a API) HasTestURL() bool {
	return a.TestURL != ""
}

// RequiresAuth reports whether the API declares any auth scheme other than none.
func (a API) RequiresAuth() bool {
	return a.Auth != AuthNone
}

// Record is an API annotated with the category that contained it.
type Record struct {
	API
	Category     string `json:"category"`
	CategorySlug string `json:"categorySlug"`
}

// MarshalJSON renders the full record: catalog fields, extra keys, then the
// category annotation.
func (r Record) MarshalJSON() ([]byte, error) {
	type known struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		URL         string   `json:"url"`
		Auth        AuthType `json:"auth"`
		TestURL     string   `json:"testUrl,omitempty"`
	}
	head, err := json.Marshal(known{
		Name:        r.Name,
		Description: r.Description,
		URL:         r.URL,
		Auth:        r.Auth,
		TestURL:     r.TestURL,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(head[:len(head)-1])

	for _, field := range r.Extra {
		if annotationKeys[field.Key] {
			continue
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		if !json.Valid(field.Value) {
			return nil, fmt.Errorf("extra field %q of %q is not valid JSON", field.Key, r.Name)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(field.Value)
	}

	tail, err := json.Marshal(struct {
		Category     string `json:"category"`
		CategorySlug string `json:"categorySlug"`
	}{r.Category, r.CategorySlug})
	if err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	buf.Write(tail[1:])

	return buf.Bytes(), nil
}

// CategorySummary is one row of the category listing.
type CategorySummary struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	APICount int    `json:"apiCount"`
}

// Listing is the projection returned by filtered listing.
type Listing struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Auth        AuthType `json:"auth"`
	TestURL     *string  `json:"testUrl"`
	URL         string   `json:"url"`
}

// Pick is the projection returned by random selection. It carries the
// same fields as Listing with url ahead of testUrl.
type Pick struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Auth        AuthType `json:"auth"`
	URL         string   `json:"url"`
	TestURL     *string  `json:"testUrl"`
}

// SearchHit is the projection returned by search. It omits the URL.
type SearchHit struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Auth        AuthType `json:"auth"`
	TestURL     *string  `json:"testUrl"`
}

// Listing projects the record for list results.
func (r Record) Listing() Listing {
	return Listing{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Auth:        r.Auth,
		TestURL:     optional(r.TestURL),
		URL:         r.URL,
	}
}

// Pick projects the record for random selection.
func (r Record) Pick() Pick {
	return Pick{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Auth:        r.Auth,
		URL:         r.URL,
		TestURL:     optional(r.TestURL),
	}
}

// SearchHit projects the record for search results.
func (r Record) SearchHit() SearchHit {
	return SearchHit{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Auth:        r.Auth,
		TestURL:     optional(r.TestURL),
	}
}

// optional maps an absent test URL to JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
