package content

import (
	"context"

	"portfolio-service/models"
)

// Reader fetches one table at a time. Lists come back ordered by
// sort_order ascending, hidden goals newest first.
type Reader interface {
	Profile(ctx context.Context) (Profile, error)
	Experiences(ctx context.Context) ([]Experience, error)
	Education(ctx context.Context) ([]Education, error)
	Projects(ctx context.Context) ([]Project, error)
	SkillCategories(ctx context.Context) ([]SkillCategory, error)
	Skills(ctx context.Context) ([]Skill, error)
	Testimonials(ctx context.Context) ([]Testimonial, error)
	HiddenGoals(ctx context.Context) ([]HiddenGoal, error)
}

// Writer applies single-row writes. Update has partial-patch semantics.
type Writer interface {
	Insert(ctx context.Context, record models.Record) (int64, error)
	Update(ctx context.Context, entity models.Entity, id int64, patch map[string]any) error
	Delete(ctx context.Context, entity models.Entity, id int64) error
}

// Source is the content store behind a Store.
type Source interface {
	Reader
	Writer
}
