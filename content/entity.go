package content

import (
	"errors"
	"fmt"

	"portfolio-service/models"
)

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrSingleton     = errors.New("profile can only be updated")
)

var slugs = map[string]models.Entity{
	"experiences":      models.EntityExperiences,
	"education":        models.EntityEducation,
	"projects":         models.EntityProjects,
	"skill-categories": models.EntitySkillCategories,
	"skills":           models.EntitySkills,
	"testimonials":     models.EntityTestimonials,
	"hidden-goals":     models.EntityHiddenGoals,
}

// ParseEntity resolves the URL slug of an editable list entity.
func ParseEntity(slug string) (models.Entity, error) {
	entity, ok := slugs[slug]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, slug)
	}
	return entity, nil
}
