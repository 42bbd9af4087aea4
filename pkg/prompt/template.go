package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// Template is a text/template that can be re-read from disk. Templates built
// from a string have no path and cannot be reloaded.
type Template struct {
	name  string
	path  string
	funcs template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
	hash string
}

// DefaultFuncs are available to every template.
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"json":    compactJSON,
		"upper":   strings.ToUpper,
		"join":    strings.Join,
		"default": defaultString,
	}
}

// NewTemplate parses the template at path. funcs extend DefaultFuncs.
func NewTemplate(path string, funcs template.FuncMap) (*Template, error) {
	if path == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	t := &Template{name: filepath.Base(path), path: path, funcs: funcs}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse builds a template from source text.
func Parse(name, source string, funcs template.FuncMap) (*Template, error) {
	t := &Template{name: name, funcs: funcs}
	if err := t.parse([]byte(source)); err != nil {
		return nil, err
	}
	return t, nil
}

// Name identifies the template in errors and logs.
func (t *Template) Name() string {
	return t.name
}

// Render executes the template with data.
func (t *Template) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.name, err)
	}
	return buf.String(), nil
}

// Reload reparses the template from disk.
func (t *Template) Reload() error {
	if t.path == "" {
		return fmt.Errorf("prompt template %q has no backing file", t.name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload()
}

// Digest identifies the template source currently loaded, as "sha256:<hex>".
func (t *Template) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hash
}

func (t *Template) reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.path, err)
	}
	return t.parse(data)
}

func (t *Template) parse(data []byte) error {
	funcs := DefaultFuncs()
	for k, v := range t.funcs {
		funcs[k] = v
	}
	tmpl, err := template.New(t.name).Option("missingkey=error").Funcs(funcs).Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.name, err)
	}
	t.tmpl = tmpl
	t.hash = sourceDigest(data)
	return nil
}

func compactJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func defaultString(fallback, value string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
