// Package hierarchy loads the fixed Department → Class → Family
// classification tree once and exposes cascading name lookups over it.
// The snapshot is immutable for the lifetime of the session; live edits
// to the hierarchy require a reload at session start.
package hierarchy

import (
	"context"

	"go.uber.org/zap"

	"github.com/retailstack/catalog/internal/db"
)

type classKey struct {
	departmentID int
	classID      int
}

type entry struct {
	id   int
	name string
}

// Hierarchy is an immutable snapshot of the classification tree with
// name→id indexes at every level.
type Hierarchy struct {
	departments []entry
	classes     map[int][]entry
	families    map[classKey][]entry

	departmentIDs map[string]int
	classIDs      map[int]map[string]int
	familyIDs     map[classKey]map[string]int
}

// Load reads the full hierarchy from the backing store in its stable
// order and builds the lookup indexes.
func Load(ctx context.Context, database *db.DB, log *zap.Logger) (*Hierarchy, error) {
	h := &Hierarchy{
		classes:       make(map[int][]entry),
		families:      make(map[classKey][]entry),
		departmentIDs: make(map[string]int),
		classIDs:      make(map[int]map[string]int),
		familyIDs:     make(map[classKey]map[string]int),
	}

	var departments []db.Department
	if err := database.WithContext(ctx).Order("id").Find(&departments).Error; err != nil {
		log.Error("Failed to load departments", zap.Error(err))
		return nil, err
	}

	for _, dept := range departments {
		h.departments = append(h.departments, entry{id: dept.ID, name: dept.Name})
		h.departmentIDs[dept.Name] = dept.ID

		var classes []db.Class
		if err := database.WithContext(ctx).
			Where("department_id = ?", dept.ID).
			Order("id").
			Find(&classes).Error; err != nil {
			log.Error("Failed to load classes",
				zap.Int("department_id", dept.ID), zap.Error(err))
			return nil, err
		}

		h.classIDs[dept.ID] = make(map[string]int, len(classes))
		for _, class := range classes {
			h.classes[dept.ID] = append(h.classes[dept.ID], entry{id: class.ID, name: class.Name})
			h.classIDs[dept.ID][class.Name] = class.ID

			key := classKey{departmentID: dept.ID, classID: class.ID}
			var families []db.Family
			if err := database.WithContext(ctx).
				Where("department_id = ? AND class_id = ?", dept.ID, class.ID).
				Order("id").
				Find(&families).Error; err != nil {
				log.Error("Failed to load families",
					zap.Int("department_id", dept.ID),
					zap.Int("class_id", class.ID), zap.Error(err))
				return nil, err
			}

			h.familyIDs[key] = make(map[string]int, len(families))
			for _, family := range families {
				h.families[key] = append(h.families[key], entry{id: family.ID, name: family.Name})
				h.familyIDs[key][family.Name] = family.ID
			}
		}
	}

	log.Info("Hierarchy loaded", zap.Int("departments", len(h.departments)))
	return h, nil
}

// Departments returns the ordered department names.
func (h *Hierarchy) Departments() []string {
	return names(h.departments)
}

// ClassesOf returns the ordered class names of a department; empty when
// the department has none or does not exist.
func (h *Hierarchy) ClassesOf(departmentID int) []string {
	return names(h.classes[departmentID])
}

// FamiliesOf returns the ordered family names under a class; empty when
// there are none.
func (h *Hierarchy) FamiliesOf(departmentID, classID int) []string {
	return names(h.families[classKey{departmentID: departmentID, classID: classID}])
}

// DepartmentID resolves a department name to its id.
func (h *Hierarchy) DepartmentID(name string) (int, bool) {
	id, ok := h.departmentIDs[name]
	return id, ok
}

// ClassID resolves a class name within a department to its id.
func (h *Hierarchy) ClassID(departmentID int, name string) (int, bool) {
	id, ok := h.classIDs[departmentID][name]
	return id, ok
}

// FamilyID resolves a family name within a (department, class) pair to
// its id.
func (h *Hierarchy) FamilyID(departmentID, classID int, name string) (int, bool) {
	id, ok := h.familyIDs[classKey{departmentID: departmentID, classID: classID}][name]
	return id, ok
}

// DepartmentName resolves a department id back to its name.
func (h *Hierarchy) DepartmentName(id int) (string, bool) {
	return findName(h.departments, id)
}

// ClassName resolves a class id within a department back to its name.
func (h *Hierarchy) ClassName(departmentID, id int) (string, bool) {
	return findName(h.classes[departmentID], id)
}

// FamilyName resolves a family id within a (department, class) pair back
// to its name.
func (h *Hierarchy) FamilyName(departmentID, classID, id int) (string, bool) {
	return findName(h.families[classKey{departmentID: departmentID, classID: classID}], id)
}

func names(entries []entry) []string {
	result := make([]string, len(entries))
	for i, e := range entries {
		result[i] = e.name
	}
	return result
}

func findName(entries []entry, id int) (string, bool) {
	for _, e := range entries {
		if e.id == id {
			return e.name, true
		}
	}
	return "", false
}
