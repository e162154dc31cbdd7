package navigation

import (
	"context"
	"fmt"
	"sync"
)

type SourceKind string

const (
	SourceCore   SourceKind = "core"
	SourceApp    SourceKind = "app"
	SourcePlugin SourceKind = "plugin"
)

// ScreenDescriptor is how hosts and the shell declare a screen: a name, an
// optional stable key and a Loader for its body.
type ScreenDescriptor struct {
	Key    string
	Name   string
	Title  string
	Loader Loader
}

func (d ScreenDescriptor) valid() bool {
	return d.Name != "" && d.Loader != nil
}

// ScreenGroup wraps a list of host screens, mirroring hosts that hand over a
// grouped set rather than a bare slice.
type ScreenGroup struct {
	Screens []any
}

// Screen is an entry of a composed route table.
type Screen struct {
	Key       string
	Name      string
	Title     string
	Source    SourceKind
	PluginID  string
	Component *Lazy
}

// Lazy defers a Loader until first use and memoizes the outcome, errors
// included. It is safe for concurrent use.
type Lazy struct {
	load Loader
	once sync.Once
	comp Component
	err  error
}

func NewLazy(load Loader) *Lazy {
	return &Lazy{load: load}
}

func (l *Lazy) Load(ctx context.Context) (Component, error) {
	l.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				l.err = fmt.Errorf("load component: panic: %v", r)
			}
		}()
		if l.load == nil {
			l.err = fmt.Errorf("load component: no loader")
			return
		}
		l.comp, l.err = l.load(ctx)
		if l.err == nil && l.comp == nil {
			l.err = fmt.Errorf("load component: loader returned nil")
		}
	})
	return l.comp, l.err
}

// NormalizeHostScreens flattens the accepted host shapes (a single
// descriptor, a slice, or a ScreenGroup) into one ordered list. Anything that
// is not a usable descriptor is dropped without error.
func NormalizeHostScreens(v any) []ScreenDescriptor {
	switch s := v.(type) {
	case nil:
		return nil
	case ScreenGroup:
		return collectDescriptors(s.Screens)
	case *ScreenGroup:
		if s == nil {
			return nil
		}
		return collectDescriptors(s.Screens)
	case []ScreenDescriptor:
		out := make([]ScreenDescriptor, 0, len(s))
		for _, d := range s {
			if d.valid() {
				out = append(out, d)
			}
		}
		return out
	case []any:
		return collectDescriptors(s)
	default:
		if d, ok := asDescriptor(v); ok {
			return []ScreenDescriptor{d}
		}
		return nil
	}
}

func collectDescriptors(items []any) []ScreenDescriptor {
	out := make([]ScreenDescriptor, 0, len(items))
	for _, item := range items {
		if d, ok := asDescriptor(item); ok {
			out = append(out, d)
		}
	}
	return out
}

func asDescriptor(v any) (ScreenDescriptor, bool) {
	switch d := v.(type) {
	case ScreenDescriptor:
		return d, d.valid()
	case *ScreenDescriptor:
		if d == nil {
			return ScreenDescriptor{}, false
		}
		return *d, d.valid()
	default:
		return ScreenDescriptor{}, false
	}
}

func screensFromDescriptors(source SourceKind, ds []ScreenDescriptor) []Screen {
	return keyedScreens(string(source), source, ds)
}

// keyedScreens converts valid descriptors, keying unkeyed ones
// "{prefix}-screen-{index}" by their position in ds.
func keyedScreens(prefix string, source SourceKind, ds []ScreenDescriptor) []Screen {
	out := make([]Screen, 0, len(ds))
	for i, d := range ds {
		if !d.valid() {
			continue
		}
		key := d.Key
		if key == "" {
			key = fmt.Sprintf("%s-screen-%d", prefix, i)
		}
		out = append(out, Screen{
			Key:       key,
			Name:      d.Name,
			Title:     d.Title,
			Source:    source,
			Component: NewLazy(d.Loader),
		})
	}
	return out
}
