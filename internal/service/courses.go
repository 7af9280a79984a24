package service

import (
	"context"
	"sync"

	"github.com/robertarktes/batch-seat-reservations/internal/domain"
)

// CourseStore looks up catalog entries. Missing ids yield domain.ErrNotFound.
type CourseStore interface {
	GetCourse(ctx context.Context, id string) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
}

// MemoryCourses serves the catalog from process memory.
type MemoryCourses struct {
	mu      sync.RWMutex
	order   []string
	courses map[string]domain.Course
}

// NewMemoryCourses seeds the catalog with courses, or with the built-in
// catalog when none are given.
func NewMemoryCourses(courses ...domain.Course) *MemoryCourses {
	if len(courses) == 0 {
		courses = domain.DefaultCourses()
	}
	m := &MemoryCourses{courses: make(map[string]domain.Course, len(courses))}
	for _, c := range courses {
		_ = m.SaveCourse(context.Background(), c)
	}
	return m
}

func (m *MemoryCourses) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[domain.NormalizeCourseID(id)]
	if !ok {
		return domain.Course{}, domain.ErrNotFound
	}
	return c, nil
}

func (m *MemoryCourses) ListCourses(ctx context.Context) ([]domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Course, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.courses[id])
	}
	return out, nil
}

func (m *MemoryCourses) SaveCourse(ctx context.Context, c domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = domain.NormalizeCourseID(c.ID)
	if _, ok := m.courses[c.ID]; !ok {
		m.order = append(m.order, c.ID)
	}
	m.courses[c.ID] = c
	return nil
}
