package render

import (
	"fmt"

	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// TypeDOM is the only supported definition type.
const TypeDOM = "dom"

// Class names of the wrappers the renderer puts around host content.
const (
	CardClass = "__mobiledoc-card"
	AtomClass = "-mobiledoc-kit__atom"
)

// CardEnv is handed to a card's render function.
type CardEnv struct {
	Name     string
	Payload  map[string]any
	Mode     CardMode
	Document *dom.Document
	Section  *model.Section

	// OnTeardown registers a callback that runs once when the card leaves the surface
	// or is rendered again.
	OnTeardown func(fn func())

	// Save stores a new payload. With transition set the card returns to display mode.
	Save func(payload map[string]any, transition bool)

	// Remove deletes the card section.
	Remove func()

	// Edit and Display switch the rendered face.
	Edit    func()
	Display func()
}

// IsEditing reports whether the card is rendering its edit face.
func (e CardEnv) IsEditing() bool {
	return e.Mode == CardEdit
}

// AtomEnv is handed to an atom's render function.
type AtomEnv struct {
	Name     string
	Value    string
	Payload  map[string]any
	Document *dom.Document
	Marker   *model.Marker

	OnTeardown func(fn func())

	// Save replaces the atom's value and payload.
	Save func(value string, payload map[string]any)
}

// CardRenderFunc renders a card and returns the dom node to place in its wrapper.
type CardRenderFunc func(env CardEnv) (*dom.Node, error)

// AtomRenderFunc renders an atom.
type AtomRenderFunc func(env AtomEnv) (*dom.Node, error)

// CardDefinition describes a named card.
type CardDefinition struct {
	Name   string
	Type   string
	Render CardRenderFunc
}

// AtomDefinition describes a named atom.
type AtomDefinition struct {
	Name   string
	Type   string
	Render AtomRenderFunc
}

// Hooks receive the model changes requested by card and atom environments. The
// editor routes them through a transaction.
type Hooks interface {
	SaveCard(section *model.Section, payload map[string]any, transition bool)
	RemoveCard(section *model.Section)
	SetCardMode(section *model.Section, mode CardMode)
	SaveAtom(marker *model.Marker, value string, payload map[string]any)
}

func validateCard(def CardDefinition) error {
	switch {
	case def.Name == "":
		return fmt.Errorf("%w: card definition without a name", errs.ErrCardContract)
	case def.Type != TypeDOM:
		return fmt.Errorf("%w: card %q has type %q, want %q", errs.ErrCardContract, def.Name, def.Type, TypeDOM)
	case def.Render == nil:
		return fmt.Errorf("%w: card %q has no render function", errs.ErrCardContract, def.Name)
	}
	return nil
}

func validateAtom(def AtomDefinition) error {
	switch {
	case def.Name == "":
		return fmt.Errorf("%w: atom definition without a name", errs.ErrAtomContract)
	case def.Type != TypeDOM:
		return fmt.Errorf("%w: atom %q has type %q, want %q", errs.ErrAtomContract, def.Name, def.Type, TypeDOM)
	case def.Render == nil:
		return fmt.Errorf("%w: atom %q has no render function", errs.ErrAtomContract, def.Name)
	}
	return nil
}

// directHooks applies environment requests straight to the model and flags the
// affected nodes for the next render pass.
type directHooks struct {
	tree *Tree
}

func (h directHooks) SaveCard(section *model.Section, payload map[string]any, transition bool) {
	section.Payload = payload
	if rn := h.tree.NodeForModel(section); rn != nil && transition {
		rn.CardMode = CardDisplay
	}
	h.tree.MarkDirty(section)
}

func (h directHooks) RemoveCard(section *model.Section) {
	container := section.Container()
	if container == nil {
		return
	}
	h.tree.ScheduleForRemoval(section)
	container.Remove(section)
}

func (h directHooks) SetCardMode(section *model.Section, mode CardMode) {
	if rn := h.tree.NodeForModel(section); rn != nil {
		rn.CardMode = mode
		rn.MarkDirty()
	}
}

func (h directHooks) SaveAtom(marker *model.Marker, value string, payload map[string]any) {
	marker.Value = value
	marker.Payload = payload
	h.tree.MarkDirty(marker)
}
