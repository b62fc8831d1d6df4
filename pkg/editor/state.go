package editor

import (
	"sort"

	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// EditState is what toolbars need to know about the cursor.
type EditState struct {
	Range model.Range

	// ActiveMarkups are the markups in the range, adjusted by the input mode.
	ActiveMarkups []*model.Markup

	// ActiveSections are the leaf sections in the range, each list item followed by
	// its list.
	ActiveSections []*model.Section

	// ActiveSectionAttributes maps each attribute of the active top-level sections to
	// its distinct values.
	ActiveSectionAttributes map[string][]string

	// InputModeMarkups are the markups toggled on a collapsed range that the next
	// typed text will carry, or drop.
	InputModeMarkups []*model.Markup
}

// stateChanges flags the parts of EditState that differ from the previous state.
type stateChanges struct {
	Range     bool
	Markups   bool
	Sections  bool
	InputMode bool
}

// editState recomputes EditState and tracks the input mode between range changes.
type editState struct {
	current EditState

	// pendingOn and pendingOff are markups toggled on a collapsed range.
	pendingOn  []*model.Markup
	pendingOff []*model.Markup
}

// update recomputes the state for rng. Moving the range clears the input mode.
func (s *editState) update(post *model.Post, rng model.Range) stateChanges {
	prev := s.current
	if !prev.Range.Equal(rng) {
		s.pendingOn, s.pendingOff = nil, nil
	}

	next := EditState{Range: rng}
	if !rng.IsBlank() {
		next.ActiveMarkups = s.applyInputMode(post.MarkupsInRange(rng))
		next.ActiveSections = activeSections(post, rng)
		next.ActiveSectionAttributes = activeAttributes(next.ActiveSections)
	}
	next.InputModeMarkups = s.inputMode()

	changes := stateChanges{
		Range:     !prev.Range.Equal(rng),
		Markups:   !sameMarkups(prev.ActiveMarkups, next.ActiveMarkups),
		Sections:  !sameSections(prev.ActiveSections, next.ActiveSections),
		InputMode: !sameMarkups(prev.InputModeMarkups, next.InputModeMarkups),
	}
	s.current = next
	return changes
}

// toggle flips markup in the input mode. It reports whether markup is now active.
func (s *editState) toggle(markup *model.Markup, active []*model.Markup) bool {
	switch {
	case containsMarkup(s.pendingOn, markup):
		s.pendingOn = removeMarkup(s.pendingOn, markup)
		return false
	case containsMarkup(s.pendingOff, markup):
		s.pendingOff = removeMarkup(s.pendingOff, markup)
		return true
	case hasTag(active, markup.TagName):
		s.pendingOff = append(s.pendingOff, markupWithTag(active, markup.TagName))
		return false
	default:
		s.pendingOn = append(s.pendingOn, markup)
		return true
	}
}

func (s *editState) applyInputMode(markups []*model.Markup) []*model.Markup {
	if len(s.pendingOn) == 0 && len(s.pendingOff) == 0 {
		return markups
	}
	out := make([]*model.Markup, 0, len(markups)+len(s.pendingOn))
	for _, m := range markups {
		if !containsMarkup(s.pendingOff, m) {
			out = append(out, m)
		}
	}
	for _, m := range s.pendingOn {
		if !containsMarkup(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func (s *editState) inputMode() []*model.Markup {
	if len(s.pendingOn) == 0 {
		return nil
	}
	return append([]*model.Markup(nil), s.pendingOn...)
}

func activeSections(post *model.Post, rng model.Range) []*model.Section {
	var out []*model.Section
	seen := make(map[*model.Section]bool)
	add := func(s *model.Section) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	post.WalkLeafSections(rng, func(s *model.Section) {
		add(s)
		if s.Parent != nil {
			add(s.Parent)
		}
	})
	return out
}

func activeAttributes(sections []*model.Section) map[string][]string {
	values := make(map[string]map[string]bool)
	for _, s := range sections {
		if s.IsNested() {
			continue
		}
		for k, v := range s.Attributes {
			if values[k] == nil {
				values[k] = make(map[string]bool)
			}
			values[k][v] = true
		}
	}
	if len(values) == 0 {
		return nil
	}
	out := make(map[string][]string, len(values))
	for k, set := range values {
		list := make([]string, 0, len(set))
		for v := range set {
			list = append(list, v)
		}
		sort.Strings(list)
		out[k] = list
	}
	return out
}

// sameMarkups compares by identity, in order.
func sameMarkups(a, b []*model.Markup) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameSections(a, b []*model.Section) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsMarkup(list []*model.Markup, m *model.Markup) bool {
	for _, existing := range list {
		if existing == m {
			return true
		}
	}
	return false
}

func removeMarkup(list []*model.Markup, m *model.Markup) []*model.Markup {
	out := list[:0:0]
	for _, existing := range list {
		if existing != m {
			out = append(out, existing)
		}
	}
	return out
}

func hasTag(list []*model.Markup, tag string) bool {
	return markupWithTag(list, tag) != nil
}

func markupWithTag(list []*model.Markup, tag string) *model.Markup {
	for _, m := range list {
		if m.HasTag(tag) {
			return m
		}
	}
	return nil
}
