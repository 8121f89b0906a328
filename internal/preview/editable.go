package preview

import (
	"github.com/flexprice/docforge/internal/domain/document"
	ierr "github.com/flexprice/docforge/internal/errors"
)

// Key is a keyboard key an editing control reacts to
type Key string

const (
	KeyEnter  Key = "Enter"
	KeyEscape Key = "Escape"
)

// Binding reads and writes string field values of a document
type Binding interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// EditableField is the click-to-edit state of one text leaf.
//
//	Viewing -> BeginEdit -> Editing -> Commit -> Viewing (written)
//	                                -> Cancel -> Viewing (unchanged)
type EditableField struct {
	spec     document.FieldSpec
	target   Binding
	onCommit func(key string)

	editing  bool
	original string
	draft    string
}

// NewEditableField binds the field with key to target. onCommit is called
// after a changed value has been written.
func NewEditableField(target Binding, key string, onCommit func(key string)) (*EditableField, error) {
	spec, ok := document.Spec(key)
	if !ok {
		return nil, ierr.NewErrorf("unknown field %s", key).
			WithHint("This field cannot be edited").
			Mark(ierr.ErrValidation)
	}
	if _, err := target.Get(key); err != nil {
		return nil, err
	}
	return &EditableField{spec: spec, target: target, onCommit: onCommit}, nil
}

// Key is the document field key
func (f *EditableField) Key() string {
	return f.spec.Key
}

// Multiline fields keep Enter as a newline and commit on blur only
func (f *EditableField) Multiline() bool {
	return f.spec.Kind == document.FieldMultiline
}

// Value is the committed value
func (f *EditableField) Value() string {
	v, _ := f.target.Get(f.spec.Key)
	return v
}

// Display is what the viewing state shows: the value, or the greyed
// placeholder when the value is empty. It never returns an empty string.
func (f *EditableField) Display() (text string, placeholder bool) {
	if v := f.Value(); v != "" {
		return v, false
	}
	return f.spec.Placeholder, true
}

func (f *EditableField) IsEditing() bool {
	return f.editing
}

// Draft is the uncommitted input value while editing
func (f *EditableField) Draft() string {
	return f.draft
}

// BeginEdit switches to editing, seeding the input with the current value
func (f *EditableField) BeginEdit() {
	if f.editing {
		return
	}
	f.original = f.Value()
	f.draft = f.original
	f.editing = true
}

// SetDraft replaces the input value
func (f *EditableField) SetDraft(v string) {
	if f.editing {
		f.draft = v
	}
}

// KeyDown applies a key press. Enter commits single line fields and inserts
// a newline in multiline ones; Escape reverts.
func (f *EditableField) KeyDown(k Key) (bool, error) {
	if !f.editing {
		return false, nil
	}
	switch k {
	case KeyEnter:
		if f.Multiline() {
			f.draft += "\n"
			return false, nil
		}
		return f.Commit(f.draft)
	case KeyEscape:
		f.Cancel()
	}
	return false, nil
}

// Blur commits the draft
func (f *EditableField) Blur() (bool, error) {
	return f.Commit(f.draft)
}

// Commit writes value and returns to viewing. It reports whether the
// document changed. A value the field rejects leaves the document as it was.
func (f *EditableField) Commit(value string) (bool, error) {
	if !f.editing {
		return false, nil
	}
	f.editing = false
	f.draft = ""
	if value == f.original {
		return false, nil
	}
	if err := f.target.Set(f.spec.Key, value); err != nil {
		return false, err
	}
	if f.onCommit != nil {
		f.onCommit(f.spec.Key)
	}
	return true, nil
}

// Cancel returns to viewing without writing
func (f *EditableField) Cancel() {
	f.editing = false
	f.draft = ""
}
