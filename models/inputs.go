package models

// Write shapes. The db tag names the column, validate holds the write rules
// and list picks the editor encoding of a multi-value column.

type ProfileInput struct {
	Name         string  `db:"name" validate:"required"`
	Title        string  `db:"title"`
	Bio          string  `db:"bio"`
	Email        string  `db:"email" validate:"omitempty,email"`
	Phone        string  `db:"phone"`
	Location     string  `db:"location"`
	ProfileImage string  `db:"profile_image" validate:"omitempty,url"`
	CVFile       string  `db:"cv_file" validate:"omitempty,url"`
	LinkedInURL  *string `db:"linkedin_url" validate:"omitempty,url"`
}

func (*ProfileInput) Entity() Entity { return EntityProfile }

type ExperienceInput struct {
	Company      string   `db:"company" validate:"required"`
	Position     string   `db:"position" validate:"required"`
	Period       string   `db:"period" validate:"required"`
	Description  string   `db:"description"`
	Achievements []string `db:"achievements" list:"lines"`
	Technologies []string `db:"technologies" list:"csv"`
	SortOrder    int      `db:"sort_order" validate:"min=0"`
}

func (*ExperienceInput) Entity() Entity { return EntityExperiences }

type EducationInput struct {
	Institution  string   `db:"institution" validate:"required"`
	Degree       string   `db:"degree" validate:"required"`
	Field        string   `db:"field" validate:"required"`
	Period       string   `db:"period" validate:"required"`
	Description  *string  `db:"description"`
	Achievements []string `db:"achievements" list:"lines"`
	SortOrder    int      `db:"sort_order" validate:"min=0"`
}

func (*EducationInput) Entity() Entity { return EntityEducation }

type ProjectInput struct {
	Title           string   `db:"title" validate:"required"`
	Description     string   `db:"description" validate:"required"`
	LongDescription string   `db:"long_description"`
	Image           string   `db:"image"`
	Technologies    []string `db:"technologies" list:"csv"`
	LiveURL         *string  `db:"live_url" validate:"omitempty,url"`
	GithubURL       *string  `db:"github_url" validate:"omitempty,url"`
	Featured        bool     `db:"featured"`
	SortOrder       int      `db:"sort_order" validate:"min=0"`
}

func (*ProjectInput) Entity() Entity { return EntityProjects }

type SkillCategoryInput struct {
	Category  string `db:"category" validate:"required"`
	SortOrder int    `db:"sort_order" validate:"min=0"`
}

func (*SkillCategoryInput) Entity() Entity { return EntitySkillCategories }

type SkillInput struct {
	CategoryID int64  `db:"category_id" validate:"required,min=1"`
	Name       string `db:"name" validate:"required"`
	Level      int    `db:"level" validate:"min=1,max=5"`
	SortOrder  int    `db:"sort_order" validate:"min=0"`
}

func (*SkillInput) Entity() Entity { return EntitySkills }

// DefaultSkillLevel is used when a new skill is created without a level.
const DefaultSkillLevel = 3

type TestimonialInput struct {
	Name      string  `db:"name" validate:"required"`
	Role      string  `db:"role" validate:"required"`
	Company   string  `db:"company" validate:"required"`
	Content   string  `db:"content" validate:"required"`
	Image     *string `db:"image"`
	SortOrder int     `db:"sort_order" validate:"min=0"`
}

func (*TestimonialInput) Entity() Entity { return EntityTestimonials }

type HiddenGoalInput struct {
	Content string `db:"content" validate:"required"`
}

func (*HiddenGoalInput) Entity() Entity { return EntityHiddenGoals }
