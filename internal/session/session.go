// Package session implements the editing session for a single product
// record as an explicit finite-state machine. The session decides which
// fields may be edited and which actions are permitted in each state,
// applies the per-keystroke validators, and calls the product repository
// at commit points. One session is owned by exactly one user surface;
// there is no concurrent access.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/retailstack/catalog/internal/db"
	"github.com/retailstack/catalog/internal/hierarchy"
	"github.com/retailstack/catalog/internal/repo"
	"github.com/retailstack/catalog/internal/validate"
)

// State identifies a session state.
type State int

const (
	// StateIdle: no usable SKU entered, all fields locked, no action enabled.
	StateIdle State = iota
	// StateSkuPartial: the SKU holds 1-6 digits and Consult is enabled.
	StateSkuPartial
	// StateFound: a lookup returned a record; fields populated and locked.
	StateFound
	// StateNotFound: a lookup returned nothing; fields unlocked for a new record.
	StateNotFound
	// StateEditing: an existing record's fields are unlocked for modification.
	StateEditing
	// StateDeleteConfirm: a delete is pending explicit confirmation.
	StateDeleteConfirm
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSkuPartial:
		return "sku-partial"
	case StateFound:
		return "found"
	case StateNotFound:
		return "not-found"
	case StateEditing:
		return "editing"
	case StateDeleteConfirm:
		return "delete-confirm"
	default:
		return "unknown"
	}
}

// Action identifies a user action the surface can trigger.
type Action int

const (
	ActionConsult Action = iota
	ActionSave
	ActionEdit
	ActionDelete
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionConsult:
		return "consult"
	case ActionSave:
		return "save"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	case ActionClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Field identifies a form field.
type Field string

const (
	FieldSKU         Field = "sku"
	FieldDescription Field = "description"
	FieldBrand       Field = "brand"
	FieldModel       Field = "model"
	FieldDepartment  Field = "department"
	FieldClass       Field = "class"
	FieldFamily      Field = "family"
	FieldStock       Field = "stock"
	FieldQuantity    Field = "quantity"
)

// ErrInvalidAction is returned when an action is triggered from a state
// that does not permit it.
var ErrInvalidAction = errors.New("action not permitted in current state")

// ValidationError reports the field that blocked a save.
type ValidationError struct {
	Field Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is missing", e.Field)
}

// MalformedSelectionError reports a stored hierarchy selection that no
// longer resolves against the loaded hierarchy. The corresponding
// selector is left unset; the session keeps running.
type MalformedSelectionError struct {
	Level Field
	ID    int
}

func (e *MalformedSelectionError) Error() string {
	return fmt.Sprintf("stored %s id %d does not resolve in the loaded hierarchy", e.Level, e.ID)
}

// Form is the current content of the editing surface. Department, Class
// and Family hold selected names; empty means no selection.
type Form struct {
	SKU          string
	Description  string
	Brand        string
	Model        string
	Department   string
	Class        string
	Family       string
	Stock        string
	Quantity     string
	CreatedDate  string
	DeletedDate  string
	Discontinued bool
}

// Session is the finite-state editing session over one product form.
type Session struct {
	repo *repo.ProductRepository
	hier *hierarchy.Hierarchy
	log  *zap.Logger
	now  func() time.Time

	state         State
	form          Form
	classChoices  []string
	familyChoices []string
}

// New creates a session in the cleared idle state.
func New(productRepo *repo.ProductRepository, hier *hierarchy.Hierarchy, log *zap.Logger) *Session {
	s := &Session{
		repo: productRepo,
		hier: hier,
		log:  log,
		now:  time.Now,
	}
	s.Clear()
	return s
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// Form returns a copy of the current form content.
func (s *Session) Form() Form {
	return s.form
}

// DepartmentChoices returns the department selector contents.
func (s *Session) DepartmentChoices() []string {
	return s.hier.Departments()
}

// ClassChoices returns the class selector contents for the selected
// department.
func (s *Session) ClassChoices() []string {
	return s.classChoices
}

// FamilyChoices returns the family selector contents for the selected
// department and class.
func (s *Session) FamilyChoices() []string {
	return s.familyChoices
}

// SaveLabel is the current label of the save action: "Update" while an
// existing record is being edited, "Add" otherwise.
func (s *Session) SaveLabel() string {
	if s.state == StateEditing {
		return "Update"
	}
	return "Add"
}

// Allowed returns the actions permitted in the current state.
func (s *Session) Allowed() []Action {
	switch s.state {
	case StateSkuPartial:
		return []Action{ActionConsult}
	case StateFound:
		return []Action{ActionEdit, ActionDelete, ActionClear}
	case StateNotFound:
		return []Action{ActionSave, ActionClear}
	case StateEditing:
		return []Action{ActionSave, ActionClear}
	default:
		return nil
	}
}

// Permits reports whether an action may be triggered right now.
func (s *Session) Permits(action Action) bool {
	for _, a := range s.Allowed() {
		if a == action {
			return true
		}
	}
	return false
}

// KeyPress applies one keystroke to a field, given the candidate value
// the field would hold afterwards. It returns false when the keystroke
// is rejected, either by the field's validator or because the field is
// locked in the current state. A SKU keystroke recomputes the
// Idle/SkuPartial split.
func (s *Session) KeyPress(field Field, candidate string) bool {
	if field == FieldSKU {
		if s.state == StateDeleteConfirm {
			return false
		}
		if !validate.SKUKey(s.form.SKU, candidate) {
			return false
		}
		s.form.SKU = candidate
		if validate.ValidSKU(candidate) {
			s.state = StateSkuPartial
		} else {
			s.state = StateIdle
		}
		return true
	}

	if s.state != StateNotFound && s.state != StateEditing {
		return false
	}

	switch field {
	case FieldDescription:
		if !validate.TextKey(s.form.Description, candidate, validate.MaxDescriptionLen) {
			return false
		}
		s.form.Description = candidate
	case FieldBrand:
		if !validate.TextKey(s.form.Brand, candidate, validate.MaxBrandLen) {
			return false
		}
		s.form.Brand = candidate
	case FieldModel:
		if !validate.TextKey(s.form.Model, candidate, validate.MaxModelLen) {
			return false
		}
		s.form.Model = candidate
	case FieldStock:
		if !validate.StockKey(s.form.Stock, candidate) {
			return false
		}
		s.form.Stock = candidate
	case FieldQuantity:
		if !validate.QuantityKey(s.form.Quantity, candidate, parseAmount(s.form.Stock)) {
			return false
		}
		s.form.Quantity = candidate
	default:
		return false
	}
	return true
}

// SelectDepartment selects a department by name and cascades: the class
// selector is repopulated and its first entry auto-selected, then the
// family selector likewise. A department with no classes leaves both
// child selectors empty.
func (s *Session) SelectDepartment(name string) bool {
	if s.state != StateNotFound && s.state != StateEditing {
		return false
	}
	deptID, ok := s.hier.DepartmentID(name)
	if !ok {
		return false
	}

	s.form.Department = name
	s.classChoices = s.hier.ClassesOf(deptID)
	s.form.Class = ""
	s.form.Family = ""
	s.familyChoices = nil

	if len(s.classChoices) > 0 {
		s.selectClass(deptID, s.classChoices[0])
	}
	return true
}

// SelectClass selects a class by name under the selected department and
// cascades into the family selector.
func (s *Session) SelectClass(name string) bool {
	if s.state != StateNotFound && s.state != StateEditing {
		return false
	}
	deptID, ok := s.hier.DepartmentID(s.form.Department)
	if !ok {
		return false
	}
	return s.selectClass(deptID, name)
}

func (s *Session) selectClass(deptID int, name string) bool {
	classID, ok := s.hier.ClassID(deptID, name)
	if !ok {
		return false
	}

	s.form.Class = name
	s.familyChoices = s.hier.FamiliesOf(deptID, classID)
	s.form.Family = ""

	if len(s.familyChoices) > 0 {
		s.form.Family = s.familyChoices[0]
	}
	return true
}

// SelectFamily selects a family by name under the selected department
// and class.
func (s *Session) SelectFamily(name string) bool {
	if s.state != StateNotFound && s.state != StateEditing {
		return false
	}
	deptID, ok := s.hier.DepartmentID(s.form.Department)
	if !ok {
		return false
	}
	classID, ok := s.hier.ClassID(deptID, s.form.Class)
	if !ok {
		return false
	}
	if _, ok := s.hier.FamilyID(deptID, classID, name); !ok {
		return false
	}
	s.form.Family = name
	return true
}

// SetDiscontinued toggles the discontinued flag. The deletion date is not
// touched here; the save gate overwrites it when the flag is set.
func (s *Session) SetDiscontinued(discontinued bool) bool {
	if s.state != StateNotFound && s.state != StateEditing {
		return false
	}
	s.form.Discontinued = discontinued
	return true
}

// Consult looks up the entered SKU. A found record populates and locks
// the form; nothing found unlocks the form for new-record entry. When a
// found record's stored hierarchy ids no longer resolve, Consult still
// succeeds but returns a *MalformedSelectionError describing the selector
// that was left unset.
func (s *Session) Consult(ctx context.Context) error {
	if s.state != StateSkuPartial {
		return ErrInvalidAction
	}

	detail, err := s.repo.Get(ctx, s.form.SKU)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			s.state = StateNotFound
			s.log.Info("SKU not in catalog, entering create mode", zap.String("sku", s.form.SKU))
			return nil
		}
		return err
	}

	selErr := s.populate(detail)
	s.state = StateFound
	if selErr != nil {
		s.log.Warn("Stored classification no longer resolves",
			zap.String("sku", detail.SKU), zap.Error(selErr))
	}
	return selErr
}

// populate fills the form from a fetched record and restores the
// cascading selectors from the stored ids.
func (s *Session) populate(detail *repo.ProductDetail) error {
	s.form.Description = detail.Description
	s.form.Brand = detail.Brand
	s.form.Model = detail.Model
	s.form.Stock = strconv.FormatInt(detail.Stock, 10)
	s.form.Quantity = strconv.FormatInt(detail.Quantity, 10)
	s.form.CreatedDate = detail.CreatedDate
	s.form.DeletedDate = detail.DeletedDate
	s.form.Discontinued = detail.Discontinued

	s.form.Department = ""
	s.form.Class = ""
	s.form.Family = ""
	s.classChoices = nil
	s.familyChoices = nil

	deptName, ok := s.hier.DepartmentName(detail.DepartmentID)
	if !ok {
		return &MalformedSelectionError{Level: FieldDepartment, ID: detail.DepartmentID}
	}
	s.form.Department = deptName
	s.classChoices = s.hier.ClassesOf(detail.DepartmentID)

	className, ok := s.hier.ClassName(detail.DepartmentID, detail.ClassID)
	if !ok {
		return &MalformedSelectionError{Level: FieldClass, ID: detail.ClassID}
	}
	s.form.Class = className
	s.familyChoices = s.hier.FamiliesOf(detail.DepartmentID, detail.ClassID)

	familyName, ok := s.hier.FamilyName(detail.DepartmentID, detail.ClassID, detail.FamilyID)
	if !ok {
		return &MalformedSelectionError{Level: FieldFamily, ID: detail.FamilyID}
	}
	s.form.Family = familyName
	return nil
}

// Edit unlocks a consulted record for modification. Delete is disabled
// while editing and the save action is relabeled to "Update".
func (s *Session) Edit() error {
	if s.state != StateFound {
		return ErrInvalidAction
	}
	s.state = StateEditing
	return nil
}

// Save commits the form: an Add when the record was not found, an Update
// when an existing record was being edited. Every required field must be
// non-empty and every hierarchy selector resolved, otherwise a
// *ValidationError names the blocking field and nothing reaches storage.
// A set discontinued flag forces the deletion date to the save date.
func (s *Session) Save(ctx context.Context) error {
	updating := s.state == StateEditing
	if s.state != StateNotFound && !updating {
		return ErrInvalidAction
	}

	product, err := s.buildProduct()
	if err != nil {
		return err
	}

	if updating {
		err = s.repo.Update(ctx, product)
	} else {
		err = s.repo.Add(ctx, product)
	}
	if err != nil {
		return err
	}

	// Lock the form for display; the save action reads "Add" again.
	s.state = StateIdle
	return nil
}

func (s *Session) buildProduct() (*db.Product, error) {
	required := []struct {
		field Field
		value string
	}{
		{FieldSKU, s.form.SKU},
		{FieldDescription, s.form.Description},
		{FieldBrand, s.form.Brand},
		{FieldModel, s.form.Model},
		{FieldDepartment, s.form.Department},
		{FieldClass, s.form.Class},
		{FieldFamily, s.form.Family},
		{FieldStock, s.form.Stock},
		{FieldQuantity, s.form.Quantity},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &ValidationError{Field: r.field}
		}
	}

	deptID, ok := s.hier.DepartmentID(s.form.Department)
	if !ok {
		return nil, &ValidationError{Field: FieldDepartment}
	}
	classID, ok := s.hier.ClassID(deptID, s.form.Class)
	if !ok {
		return nil, &ValidationError{Field: FieldClass}
	}
	familyID, ok := s.hier.FamilyID(deptID, classID, s.form.Family)
	if !ok {
		return nil, &ValidationError{Field: FieldFamily}
	}

	deletedDate := s.form.DeletedDate
	if s.form.Discontinued {
		deletedDate = s.now().Format(db.DateLayout)
	}

	return &db.Product{
		SKU:          s.form.SKU,
		Description:  s.form.Description,
		DepartmentID: deptID,
		ClassID:      classID,
		FamilyID:     familyID,
		Stock:        parseAmount(s.form.Stock),
		Quantity:     parseAmount(s.form.Quantity),
		DeletedDate:  deletedDate,
		Model:        s.form.Model,
		Brand:        s.form.Brand,
		CreatedDate:  s.form.CreatedDate,
		Discontinued: s.form.Discontinued,
	}, nil
}

// RequestDelete gates the delete behind an explicit confirmation.
func (s *Session) RequestDelete() error {
	if s.state != StateFound {
		return ErrInvalidAction
	}
	s.state = StateDeleteConfirm
	return nil
}

// ConfirmDelete resolves a pending delete. Confirmation issues the
// repository delete and clears the session; cancellation returns to the
// consulted record unchanged.
func (s *Session) ConfirmDelete(ctx context.Context, confirmed bool) error {
	if s.state != StateDeleteConfirm {
		return ErrInvalidAction
	}
	if !confirmed {
		s.state = StateFound
		return nil
	}

	if err := s.repo.Delete(ctx, s.form.SKU); err != nil {
		s.state = StateFound
		return err
	}
	s.Clear()
	return nil
}

// Clear resets every field, restores the default dates and returns the
// session to the idle state.
func (s *Session) Clear() {
	s.form = Form{
		CreatedDate: s.now().Format(db.DateLayout),
		DeletedDate: db.NeverDiscontinued,
	}
	s.classChoices = nil
	s.familyChoices = nil
	s.state = StateIdle
}

func parseAmount(value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
