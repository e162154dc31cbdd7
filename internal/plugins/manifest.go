package plugins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

type Type string

const (
	TypeCore    Type = "core-plugin"
	TypeSegment Type = "segment-plugin"
	TypeCompany Type = "company-plugin"
)

// Manifest describes a plugin, parsed from plugin.yaml.
type Manifest struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Description  string   `yaml:"description"`
	Type         Type     `yaml:"type"`
	Author       string   `yaml:"author,omitempty"`
	Dependencies []string `yaml:"dependencies"`
	Exports      *Exports `yaml:"exports"`
	Routes       []Route  `yaml:"routes,omitempty"`
	Permissions  []string `yaml:"permissions"`
}

type Exports struct {
	Components []string `yaml:"components,omitempty"`
	Hooks      []string `yaml:"hooks,omitempty"`
	Services   []string `yaml:"services,omitempty"`
}

type Route struct {
	Name        string    `yaml:"name"`
	Path        string    `yaml:"path"`
	Component   string    `yaml:"component"`
	Permissions []string  `yaml:"permissions"`
	Meta        RouteMeta `yaml:"meta,omitempty"`
}

type RouteMeta struct {
	Title      string `yaml:"title,omitempty"`
	Icon       string `yaml:"icon,omitempty"`
	ShowInMenu bool   `yaml:"show_in_menu,omitempty"`
}

// Exported reports whether component is listed in the manifest exports.
func (m Manifest) Exported(component string) bool {
	if m.Exports == nil {
		return false
	}
	for _, c := range m.Exports.Components {
		if c == component {
			return true
		}
	}
	return false
}

type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects every problem found in one manifest.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "invalid plugin manifest: " + strings.Join(parts, "; ")
}

// Validate checks required fields, the version format, the plugin type and
// every route. It returns ValidationErrors or nil.
func Validate(m Manifest) error {
	var errs ValidationErrors
	add := func(field, msg string) { errs = append(errs, ValidationError{Field: field, Message: msg}) }

	if m.ID == "" {
		add("id", "plugin id is required")
	}
	if m.Name == "" {
		add("name", "plugin name is required")
	}
	switch {
	case m.Version == "":
		add("version", "plugin version is required")
	case !validVersion(m.Version):
		add("version", "plugin version must be a semantic version (e.g. 1.0.0)")
	}
	switch m.Type {
	case TypeCore, TypeSegment, TypeCompany:
	default:
		add("type", "plugin type must be core-plugin, segment-plugin or company-plugin")
	}
	if m.Description == "" {
		add("description", "plugin description is required")
	}
	if m.Dependencies == nil {
		add("dependencies", "dependencies must be a list")
	}
	if m.Exports == nil {
		add("exports", "exports must be a mapping")
	}
	if m.Permissions == nil {
		add("permissions", "permissions must be a list")
	}
	for i, r := range m.Routes {
		if r.Name == "" {
			add(fmt.Sprintf("routes[%d].name", i), "route name is required")
		}
		if r.Path == "" {
			add(fmt.Sprintf("routes[%d].path", i), "route path is required")
		}
		if r.Component == "" {
			add(fmt.Sprintf("routes[%d].component", i), "route component is required")
		}
		if r.Permissions == nil {
			add(fmt.Sprintf("routes[%d].permissions", i), "route permissions must be a list")
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validVersion accepts MAJOR.MINOR.PATCH with optional prerelease and build
// metadata, without a leading v.
func validVersion(v string) bool {
	_, err := semver.StrictNewVersion(v)
	return err == nil
}

// ParseManifest decodes and validates one manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := Validate(m); err != nil {
		return m, err
	}
	return m, nil
}

// LoadError ties a manifest problem to its file.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e LoadError) Unwrap() error { return e.Err }

func isManifestFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// LoadDir reads every *.yaml / *.yml manifest in dir, sorted by file name.
// Broken manifests are returned as LoadErrors and left out. A missing
// directory yields no manifests.
func LoadDir(dir string) ([]Manifest, []LoadError, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read manifest dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		out     []Manifest
		invalid []LoadError
		seen    = map[string]string{}
	)
	for _, e := range entries {
		if e.IsDir() || !isManifestFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			invalid = append(invalid, LoadError{Path: path, Err: err})
			continue
		}
		m, err := ParseManifest(data)
		if err != nil {
			invalid = append(invalid, LoadError{Path: path, Err: err})
			continue
		}
		if first, dup := seen[m.ID]; dup {
			invalid = append(invalid, LoadError{Path: path, Err: fmt.Errorf("duplicate plugin id %q (first in %s)", m.ID, first)})
			continue
		}
		seen[m.ID] = path
		out = append(out, m)
	}
	return out, invalid, nil
}
