package templates

import (
	"context"
	"sort"
	"time"
)

// in-memory fake for handler tests

type repoMock struct {
	templates map[int]*SessionTemplate
	nextID    int

	forcedErr error
}

var _ templatesRepo = (*repoMock)(nil)

func newRepoMock() *repoMock {
	return &repoMock{
		templates: make(map[int]*SessionTemplate),
		nextID:    1,
	}
}

func (m *repoMock) addDefault(name string, exercises ...TemplateExercise) *SessionTemplate {
	template := &SessionTemplate{
		ID:        m.nextID,
		Name:      name,
		IsDefault: true,
		Exercises: exercises,
		CreatedAt: time.Now(),
	}
	m.nextID++
	for i := range template.Exercises {
		template.Exercises[i].TemplateID = template.ID
	}
	m.templates[template.ID] = template
	return template
}

func (m *repoMock) Add(_ context.Context, template SessionTemplate) (*SessionTemplate, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	template.ID = m.nextID
	m.nextID++
	template.CreatedAt = time.Now()
	for i := range template.Exercises {
		template.Exercises[i].ID = m.nextID
		m.nextID++
		template.Exercises[i].TemplateID = template.ID
	}
	m.templates[template.ID] = &template
	return &template, nil
}

func (m *repoMock) Get(_ context.Context, id, userID int) (*SessionTemplate, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	template, ok := m.templates[id]
	if !ok || !m.visible(template, userID) {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

func (m *repoMock) List(_ context.Context, userID int) ([]SessionTemplate, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	templates := []SessionTemplate{}
	for _, template := range m.templates {
		if m.visible(template, userID) {
			templates = append(templates, *template)
		}
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].ID < templates[j].ID
	})
	return templates, nil
}

func (m *repoMock) Update(_ context.Context, template *SessionTemplate) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	stored, ok := m.templates[template.ID]
	if !ok {
		return ErrTemplateNotFound
	}
	if stored.IsDefault {
		return ErrDefaultTemplate
	}
	if template.UserID == nil || stored.UserID == nil || *stored.UserID != *template.UserID {
		return ErrTemplateNotFound
	}
	template.CreatedAt = stored.CreatedAt
	m.templates[template.ID] = template
	return nil
}

func (m *repoMock) Delete(_ context.Context, id, userID int) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	stored, ok := m.templates[id]
	if !ok {
		return ErrTemplateNotFound
	}
	if stored.IsDefault {
		return ErrDefaultTemplate
	}
	if stored.UserID == nil || *stored.UserID != userID {
		return ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *repoMock) visible(template *SessionTemplate, userID int) bool {
	if template.IsDefault {
		return true
	}
	return template.UserID != nil && *template.UserID == userID
}
