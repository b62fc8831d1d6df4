package editor

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// InsertText types text at the cursor, replacing the selection. Newlines split the
// section. The text carries the active markups, including the input mode.
func (e *Editor) InsertText(text string) error {
	markups := e.state.current.ActiveMarkups
	return e.run(actionInsertText, func(pe *PostEditor) error {
		rng := pe.Range()
		if rng.IsBlank() {
			return fmt.Errorf("insert text: %w", errs.ErrInvalidPosition)
		}
		pos := rng.Head
		if !rng.IsCollapsed() {
			pos = pe.DeleteRange(rng)
		}
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				pe.SplitSection(pos)
				pos = pe.Range().Head
			}
			if pos.Section.IsCardLike() {
				halves := pe.SplitSection(pos)
				if pos.Offset == 0 {
					pos = halves[0].HeadPosition()
				} else {
					pos = pe.Range().Head
				}
			}
			pos = pe.InsertTextWithMarkups(pos, line, markups)
		}
		pe.SetRange(pos.ToRange())
		return nil
	})
}

// DeleteAtCursor deletes the selection, or one unit next to a collapsed cursor.
func (e *Editor) DeleteAtCursor(dir model.Direction, unit Unit) error {
	return e.run(actionDelete, func(pe *PostEditor) error {
		rng := pe.Range()
		if rng.IsBlank() {
			return fmt.Errorf("delete: %w", errs.ErrInvalidPosition)
		}
		if !rng.IsCollapsed() {
			pe.DeleteRange(rng)
			return nil
		}
		pe.DeleteAtPosition(rng.Head, dir, unit)
		return nil
	})
}

// InsertNewline splits the section at the cursor, replacing the selection.
func (e *Editor) InsertNewline() error {
	return e.InsertText("\n")
}

// ToggleMarkup toggles the markup named tag over the selection. On a collapsed
// cursor it toggles the input mode instead, which the next typed text picks up.
func (e *Editor) ToggleMarkup(tag string, attrs map[string]string) error {
	markup := e.post.Builder().CreateMarkup(tag, attrs)
	if e.rng.IsBlank() {
		return fmt.Errorf("toggle markup: %w", errs.ErrInvalidPosition)
	}
	if !e.rng.IsCollapsed() {
		return e.Run(func(pe *PostEditor) error {
			pe.ToggleMarkup(markup, pe.Range())
			return nil
		})
	}
	if e.inTransaction {
		return fmt.Errorf("toggle markup: %w", errs.ErrNestedTransaction)
	}
	e.state.toggle(markup, e.state.current.ActiveMarkups)
	changes := e.state.update(e.post, e.rng)
	e.listeners.fire(e.state.current, changes, false)
	return nil
}

// ToggleSection toggles the sections in the selection to tag.
func (e *Editor) ToggleSection(tag string) error {
	return e.Run(func(pe *PostEditor) error {
		pe.ToggleSection(tag, pe.Range())
		return nil
	})
}

// SetAttribute sets a section attribute on the sections in the selection.
func (e *Editor) SetAttribute(key, value string) error {
	return e.Run(func(pe *PostEditor) error {
		pe.SetAttribute(key, value, pe.Range())
		return nil
	})
}

// RemoveAttribute removes a section attribute from the sections in the selection.
func (e *Editor) RemoveAttribute(key string) error {
	return e.Run(func(pe *PostEditor) error {
		pe.RemoveAttribute(key, pe.Range())
		return nil
	})
}

// InsertCard inserts a card at the cursor, or at the end of the post without one.
func (e *Editor) InsertCard(name string, payload map[string]any, edit bool) (*model.Section, error) {
	var card *model.Section
	err := e.Run(func(pe *PostEditor) error {
		pos := pe.Range().Head
		if !pe.Range().IsCollapsed() {
			pos = pe.DeleteRange(pe.Range())
		}
		card = pe.InsertCard(pos, name, payload, edit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// InsertAtom inserts an atom at the cursor, replacing the selection.
func (e *Editor) InsertAtom(name, value string, payload map[string]any) (*model.Marker, error) {
	var atom *model.Marker
	err := e.Run(func(pe *PostEditor) error {
		rng := pe.Range()
		if rng.IsBlank() {
			return fmt.Errorf("insert atom: %w", errs.ErrInvalidPosition)
		}
		pos := rng.Head
		if !rng.IsCollapsed() {
			pos = pe.DeleteRange(rng)
		}
		atom = pe.InsertAtom(pos, name, value, payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return atom, nil
}

// Copy returns the selection as a new post.
func (e *Editor) Copy() *model.Post {
	if e.rng.IsBlank() || e.rng.IsCollapsed() {
		return e.post.Builder().CreatePost()
	}
	return e.post.TrimTo(e.rng)
}

// Cut returns the selection as a new post and deletes it.
func (e *Editor) Cut() (*model.Post, error) {
	out := e.Copy()
	if out.IsBlank() {
		return out, nil
	}
	if err := e.run(actionNone, func(pe *PostEditor) error {
		pe.DeleteRange(pe.Range())
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Paste inserts a copy of post at the cursor, replacing the selection.
func (e *Editor) Paste(post *model.Post) error {
	return e.Run(func(pe *PostEditor) error {
		rng := pe.Range()
		if rng.IsBlank() {
			return fmt.Errorf("paste: %w", errs.ErrInvalidPosition)
		}
		pos := rng.Head
		if !rng.IsCollapsed() {
			pos = pe.DeleteRange(rng)
		}
		pe.InsertPost(pos, post)
		return nil
	})
}
