package content

import (
	"context"
	"errors"
	"sync"

	"portfolio-service/models"
)

type fakeSource struct {
	mu sync.Mutex

	profile      Profile
	experiences  []Experience
	education    []Education
	projects     []Project
	categories   []SkillCategory
	skills       []Skill
	testimonials []Testimonial
	hiddenGoals  []HiddenGoal

	failTables map[models.Entity]error
	writeErr   error
	nextID     int64

	inserts int
	updates int
	deletes int

	// gate blocks the next Experiences call until closed.
	gate    chan struct{}
	started chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{failTables: map[models.Entity]error{}, nextID: 100}
}

func (f *fakeSource) fail(entity models.Entity) error {
	return f.failTables[entity]
}

func (f *fakeSource) Profile(ctx context.Context) (Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(models.EntityProfile); err != nil {
		return Profile{}, err
	}
	return f.profile, nil
}

func (f *fakeSource) Experiences(ctx context.Context) ([]Experience, error) {
	f.mu.Lock()
	items := append([]Experience(nil), f.experiences...)
	err := f.fail(models.EntityExperiences)
	gate := f.gate
	f.gate = nil
	f.mu.Unlock()

	if gate != nil {
		f.started <- struct{}{}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeSource) Education(ctx context.Context) ([]Education, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(models.EntityEducation); err != nil {
		return nil, err
	}
	return append([]Education(nil), f.education...), nil
}

func (f *fakeSource) Projects(ctx context.Context) ([]Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(models.EntityProjects); err != nil {
		return nil, err
	}
	return append([]Project(nil), f.projects...), nil
}

func (f *fakeSource) SkillCategories(ctx context.Context) ([]SkillCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(models.EntitySkillCategories); err != nil {
		return nil, err
	}
	return append([]SkillCategory(nil), f.categories...), nil
}

func (f *fakeSource) Skills(ctx context.Context) ([]Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(models.EntitySkills); err != nil {
		return nil, err
	}
	return append([]Skill(nil), f.skills...), nil
}

func (f *fakeSource) Testimonials(ctx context.Context) ([]Testimonial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(models.EntityTestimonials); err != nil {
		return nil, err
	}
	return append([]Testimonial(nil), f.testimonials...), nil
}

func (f *fakeSource) HiddenGoals(ctx context.Context) ([]HiddenGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(models.EntityHiddenGoals); err != nil {
		return nil, err
	}
	return append([]HiddenGoal(nil), f.hiddenGoals...), nil
}

func (f *fakeSource) Insert(ctx context.Context, record models.Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.writeErr != nil {
		return 0, f.writeErr
	}

	f.nextID++
	id := f.nextID
	switch r := record.(type) {
	case *models.ExperienceInput:
		f.experiences = append(f.experiences, Experience{
			ID: id, Company: r.Company, Position: r.Position, Period: r.Period,
			Achievements: r.Achievements, Technologies: r.Technologies, SortOrder: r.SortOrder,
		})
	case *models.SkillCategoryInput:
		f.categories = append(f.categories, SkillCategory{ID: id, Category: r.Category, SortOrder: r.SortOrder})
	case *models.SkillInput:
		f.skills = append(f.skills, Skill{ID: id, CategoryID: r.CategoryID, Name: r.Name, Level: r.Level, SortOrder: r.SortOrder})
	default:
		return 0, errors.New("unsupported record")
	}
	return id, nil
}

func (f *fakeSource) Update(ctx context.Context, entity models.Entity, id int64, patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.writeErr != nil {
		return f.writeErr
	}

	switch entity {
	case models.EntityProfile:
		if name, ok := patch["name"].(string); ok {
			f.profile.Name = name
		}
		return nil
	case models.EntityExperiences:
		for i := range f.experiences {
			if f.experiences[i].ID != id {
				continue
			}
			if company, ok := patch["company"].(string); ok {
				f.experiences[i].Company = company
			}
			if order, ok := patch["sort_order"].(int); ok {
				f.experiences[i].SortOrder = order
			}
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeSource) Delete(ctx context.Context, entity models.Entity, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.writeErr != nil {
		return f.writeErr
	}

	switch entity {
	case models.EntityExperiences:
		f.experiences = removeByID(f.experiences, id, func(e Experience) int64 { return e.ID })
	case models.EntitySkillCategories:
		f.categories = removeByID(f.categories, id, func(c SkillCategory) int64 { return c.ID })
		var kept []Skill
		for _, skill := range f.skills {
			if skill.CategoryID != id {
				kept = append(kept, skill)
			}
		}
		f.skills = kept
	default:
		return errors.New("unsupported entity")
	}
	return nil
}

func removeByID[T any](items []T, id int64, key func(T) int64) []T {
	var kept []T
	for _, item := range items {
		if key(item) != id {
			kept = append(kept, item)
		}
	}
	return kept
}
