package tui

import "github.com/jask/tenantshell/internal/navigation"

// openScreen is a route table entry the user navigated to.
type openScreen struct {
	screen  navigation.Screen
	comp    navigation.Component
	err     error
	loading bool
}

type ScreenStack struct {
	items []*openScreen
}

func (s *ScreenStack) Push(screen *openScreen) {
	if screen == nil {
		return
	}
	s.items = append(s.items, screen)
}

func (s *ScreenStack) Pop() *openScreen {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last
}

func (s ScreenStack) Top() *openScreen {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s ScreenStack) Len() int {
	return len(s.items)
}

func (s *ScreenStack) Reset() {
	s.items = nil
}

// Find returns the open entry for key, searching from the top.
func (s ScreenStack) Find(key string) *openScreen {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].screen.Key == key {
			return s.items[i]
		}
	}
	return nil
}
