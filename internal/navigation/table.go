package navigation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Override records a name collision settled by source precedence.
type Override struct {
	Name   string
	Winner SourceKind
	Loser  SourceKind
}

// RouteTable is an ordered, name-unique list of screens.
type RouteTable struct {
	screens   []Screen
	index     map[string]int
	overrides []Override
}

// precedence: core beats app beats plugin. Within one source the later
// declaration wins.
func precedence(s SourceKind) int {
	switch s {
	case SourceCore:
		return 3
	case SourceApp:
		return 2
	case SourcePlugin:
		return 1
	default:
		return 0
	}
}

// Compose merges the three route sources. Each screen without a key gets
// "{source}-screen-{index}", index being its position within its source, so
// keys stay stable while a source's ordering is unchanged. A winning screen
// takes over the slot of the name's first registration.
func Compose(plugin, app, core []Screen) RouteTable {
	t := RouteTable{index: make(map[string]int, len(plugin)+len(app)+len(core))}
	t.add(SourcePlugin, plugin)
	t.add(SourceApp, app)
	t.add(SourceCore, core)
	return t
}

// ComposeDescriptors is Compose for host screens in any accepted shape and
// core descriptors.
func ComposeDescriptors(plugin []Screen, app any, core []ScreenDescriptor) RouteTable {
	return Compose(plugin, screensFromDescriptors(SourceApp, NormalizeHostScreens(app)), screensFromDescriptors(SourceCore, core))
}

func (t *RouteTable) add(source SourceKind, screens []Screen) {
	for i, s := range screens {
		if s.Name == "" {
			continue
		}
		s.Source = source
		if s.Key == "" {
			s.Key = fmt.Sprintf("%s-screen-%d", source, i)
		}
		at, exists := t.index[s.Name]
		if !exists {
			t.index[s.Name] = len(t.screens)
			t.screens = append(t.screens, s)
			continue
		}
		prev := t.screens[at]
		if precedence(s.Source) < precedence(prev.Source) {
			t.overrides = append(t.overrides, Override{Name: s.Name, Winner: prev.Source, Loser: s.Source})
			continue
		}
		t.overrides = append(t.overrides, Override{Name: s.Name, Winner: s.Source, Loser: prev.Source})
		t.screens[at] = s
	}
}

func (t RouteTable) Len() int { return len(t.screens) }

func (t RouteTable) Screens() []Screen { return slices.Clone(t.screens) }

func (t RouteTable) Overrides() []Override { return slices.Clone(t.overrides) }

func (t RouteTable) Lookup(name string) (Screen, bool) {
	at, ok := t.index[name]
	if !ok {
		return Screen{}, false
	}
	return t.screens[at], true
}

func (t RouteTable) Names() []string {
	out := make([]string, 0, len(t.screens))
	for _, s := range t.screens {
		out = append(out, s.Name)
	}
	return out
}

// Suggest returns the closest known name to a missing one.
func (t RouteTable) Suggest(name string) (string, bool) {
	best, bestDist := "", -1
	for _, s := range t.screens {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(s.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = s.Name, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return "", false
	}
	return best, true
}

func (t RouteTable) countSource(source SourceKind) int {
	n := 0
	for _, s := range t.screens {
		if s.Source == source {
			n++
		}
	}
	return n
}
