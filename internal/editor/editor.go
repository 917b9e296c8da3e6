// Package editor holds the admin form state for adding and editing
// certificates.
package editor

import (
	"context"
	"sync"

	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/notify"
	"github.com/Zachkp/portfolio/internal/store"
)

// Mode is Create when no record is being edited, Edit otherwise.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Form holds the raw field values as typed into the form. The binding tags
// are the input-layer required-field checks; the store does not validate.
type Form struct {
	Title          string `form:"title" json:"title" binding:"required"`
	Issuer         string `form:"issuer" json:"issuer" binding:"required"`
	DateIssued     string `form:"date_issued" json:"date_issued" binding:"required"`
	Category       string `form:"category" json:"category" binding:"required"`
	CertificateURL string `form:"certificate_url" json:"certificate_url" binding:"omitempty,url"`
}

// FormOf copies a record into form values. An absent URL becomes "".
func FormOf(rec certificate.Record) Form {
	return Form{
		Title:          rec.Title,
		Issuer:         rec.Issuer,
		DateIssued:     rec.DateIssued.String(),
		Category:       rec.Category,
		CertificateURL: rec.CertificateURL,
	}
}

// Fields converts the form into table fields.
func (f Form) Fields() (certificate.Fields, error) {
	date, err := certificate.ParseDate(f.DateIssued)
	if err != nil {
		return certificate.Fields{}, err
	}
	return certificate.Fields{
		Title:          f.Title,
		Issuer:         f.Issuer,
		DateIssued:     date,
		Category:       f.Category,
		CertificateURL: f.CertificateURL,
	}, nil
}

// Editor is the form state machine:
//
//	Create --BeginEdit--> Edit(id)
//	Edit(id) --BeginEdit--> Edit(id')
//	Edit(id) --CancelEdit / successful Submit--> Create
type Editor struct {
	store *store.Store
	sink  notify.Sink

	mu        sync.Mutex
	form      Form
	editingID string
}

// New returns an editor in Create mode with an empty form. sink receives
// the failure raised when the form cannot be converted; it may be nil.
func New(s *store.Store, sink notify.Sink) *Editor {
	if sink == nil {
		sink = notify.Discard
	}
	return &Editor{store: s, sink: sink}
}

// Form returns the current field values.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// SetForm replaces the field values without changing the mode.
func (e *Editor) SetForm(f Form) {
	e.mu.Lock()
	e.form = f
	e.mu.Unlock()
}

// EditingID returns the id of the record being edited, if any.
func (e *Editor) EditingID() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID, e.editingID != ""
}

func (e *Editor) Mode() Mode {
	if _, ok := e.EditingID(); ok {
		return ModeEdit
	}
	return ModeCreate
}

// BeginEdit loads rec into the form and switches to Edit(rec.ID).
func (e *Editor) BeginEdit(rec certificate.Record) {
	e.mu.Lock()
	e.form = FormOf(rec)
	e.editingID = rec.ID
	e.mu.Unlock()
}

// CancelEdit returns to Create mode with an empty form. Nothing is sent to
// the table.
func (e *Editor) CancelEdit() {
	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
}

// Submit sends the form to the store: Update in Edit mode, Create
// otherwise. The form is cleared back to Create mode only when the store
// reports success, so a failed save keeps the user's input for a retry.
func (e *Editor) Submit(ctx context.Context) store.Result {
	e.mu.Lock()
	form, id := e.form, e.editingID
	e.mu.Unlock()

	fields, err := form.Fields()
	if err != nil {
		e.sink.Notify(notify.Notification{
			Title:       "Error",
			Description: "Failed to save certificate",
			Severity:    notify.SeverityDestructive,
		})
		return store.Result{Outcome: store.Failed, Err: err}
	}

	var res store.Result
	if id != "" {
		res = e.store.Update(ctx, id, fields)
	} else {
		res = e.store.Create(ctx, fields)
	}

	if res.OK() {
		e.mu.Lock()
		// a BeginEdit or CancelEdit that landed during the save wins
		if e.editingID == id {
			e.reset()
		}
		e.mu.Unlock()
	}
	return res
}

// reset clears the form. Callers hold e.mu.
func (e *Editor) reset() {
	e.form = Form{}
	e.editingID = ""
}
