// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"fmt"

	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/models"
)

// pageSize bounds each store round-trip during roster walks.
const pageSize = 100

// Roster answers "who is in this cohort" and "who is this user".
type Roster interface {
	Student(id string) (models.Student, error)
	ClassStudents(department string, stage int) ([]models.Student, error)
	AllStudents() ([]models.Student, error)
}

// StoreRoster reads the students collection of the document store.
type StoreRoster struct {
	store docstore.Store
}

func NewStoreRoster(store docstore.Store) *StoreRoster {
	return &StoreRoster{store: store}
}

func (r *StoreRoster) Student(id string) (models.Student, error) {
	doc, err := r.store.Get(docstore.CollectionStudents, id)
	if err != nil {
		return models.Student{}, err
	}
	return studentFromDoc(doc), nil
}

// ClassStudents lists the cohort for one (department, stage), paginating
// through the store.
func (r *StoreRoster) ClassStudents(department string, stage int) ([]models.Student, error) {
	return r.walk([]docstore.Filter{
		docstore.Equal("department", department),
		docstore.Equal("stage", stage),
	})
}

// AllStudents walks the full roster, page by page.
func (r *StoreRoster) AllStudents() ([]models.Student, error) {
	return r.walk(nil)
}

func (r *StoreRoster) walk(filters []docstore.Filter) ([]models.Student, error) {
	var students []models.Student
	for offset := 0; ; offset += pageSize {
		docs, err := r.store.Query(docstore.CollectionStudents, docstore.Query{
			Filters: filters,
			Limit:   pageSize,
			Offset:  offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list students: %w", err)
		}
		for _, doc := range docs {
			students = append(students, studentFromDoc(doc))
		}
		if len(docs) < pageSize {
			return students, nil
		}
	}
}

func studentFromDoc(doc docstore.Document) models.Student {
	return models.Student{
		ID:         doc.ID,
		Name:       docstore.String(doc.Fields, "name"),
		Department: docstore.String(doc.Fields, "department"),
		Stage:      docstore.Int(doc.Fields, "stage"),
	}
}
