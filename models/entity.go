package models

// Entity names a content table.
type Entity string

const (
	EntityProfile         Entity = "profile"
	EntityExperiences     Entity = "experiences"
	EntityEducation       Entity = "education"
	EntityProjects        Entity = "projects"
	EntitySkillCategories Entity = "skill_categories"
	EntitySkills          Entity = "skills"
	EntityTestimonials    Entity = "testimonials"
	EntityHiddenGoals     Entity = "hidden_goals"
)

// ProfileID is the id of the singleton profile row.
const ProfileID int64 = 1

// Entities lists every content table in load order.
var Entities = []Entity{
	EntityProfile,
	EntityExperiences,
	EntityEducation,
	EntityProjects,
	EntitySkillCategories,
	EntitySkills,
	EntityTestimonials,
	EntityHiddenGoals,
}

// Table returns the SQL table backing the entity.
func (e Entity) Table() string {
	return string(e)
}

// Record is a write shape for one entity.
type Record interface {
	Entity() Entity
}

// NewRecord returns an empty write shape for the entity.
func NewRecord(entity Entity) (Record, bool) {
	switch entity {
	case EntityProfile:
		return &ProfileInput{}, true
	case EntityExperiences:
		return &ExperienceInput{}, true
	case EntityEducation:
		return &EducationInput{}, true
	case EntityProjects:
		return &ProjectInput{}, true
	case EntitySkillCategories:
		return &SkillCategoryInput{}, true
	case EntitySkills:
		return &SkillInput{Level: DefaultSkillLevel}, true
	case EntityTestimonials:
		return &TestimonialInput{}, true
	case EntityHiddenGoals:
		return &HiddenGoalInput{}, true
	default:
		return nil, false
	}
}
