package editor

import (
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// editorHooks routes card and atom environment calls through transactions. Calls
// made while a transaction renders run right after it.
type editorHooks struct {
	e *Editor
}

func (h editorHooks) SaveCard(section *model.Section, payload map[string]any, transition bool) {
	h.e.runOrDefer(func(pe *PostEditor) {
		if section.OwningPost() != pe.post {
			return
		}
		pe.SetCardPayload(section, payload)
		if transition {
			pe.setCardMode(section, render.CardDisplay)
		}
	})
}

func (h editorHooks) RemoveCard(section *model.Section) {
	h.e.runOrDefer(func(pe *PostEditor) {
		if section.OwningPost() != pe.post {
			return
		}
		next := section.Next()
		pe.RemoveSection(section)
		pe.ensureSection()
		if next == nil {
			pe.SetRange(pe.post.TailPosition().ToRange())
			return
		}
		pe.SetRange(sectionHead(next).ToRange())
	})
}

func (h editorHooks) SetCardMode(section *model.Section, mode render.CardMode) {
	h.e.runOrDefer(func(pe *PostEditor) {
		if section.OwningPost() != pe.post {
			return
		}
		pe.setCardMode(section, mode)
	})
}

func (h editorHooks) SaveAtom(marker *model.Marker, value string, payload map[string]any) {
	h.e.runOrDefer(func(pe *PostEditor) {
		if marker.Section == nil || marker.Section.OwningPost() != pe.post {
			return
		}
		pe.SetAtomValue(marker, value, payload)
	})
}

var _ render.Hooks = editorHooks{}
