package content

import (
	"slices"
	"time"
)

type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
}

type Profile struct {
	Name         string      `json:"name"`
	Title        string      `json:"title"`
	Bio          string      `json:"bio"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Location     string      `json:"location"`
	ProfileImage string      `json:"profileImage"`
	CVFile       string      `json:"cvFile"`
	SocialLinks  SocialLinks `json:"socialLinks"`
}

// IsEmpty reports whether the profile has no name yet; the hero has nothing
// to show without one.
func (p Profile) IsEmpty() bool {
	return p.Name == ""
}

type Experience struct {
	ID           int64    `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Period       string   `json:"period"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
	SortOrder    int      `json:"sortOrder"`
}

type Education struct {
	ID           int64    `json:"id"`
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree"`
	Field        string   `json:"field"`
	Period       string   `json:"period"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements"`
	SortOrder    int      `json:"sortOrder"`
}

type Project struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	Image           string   `json:"image"`
	Technologies    []string `json:"technologies"`
	LiveURL         string   `json:"liveUrl,omitempty"`
	GithubURL       string   `json:"githubUrl,omitempty"`
	Featured        bool     `json:"featured"`
	SortOrder       int      `json:"sortOrder"`
}

// SkillCategory groups skills. Skills is only filled in snapshots.
type SkillCategory struct {
	ID        int64   `json:"id"`
	Category  string  `json:"category"`
	SortOrder int     `json:"sortOrder"`
	Skills    []Skill `json:"skills"`
}

type Skill struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	SortOrder  int    `json:"sortOrder"`
}

type Testimonial struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Company   string `json:"company"`
	Content   string `json:"content"`
	Image     string `json:"image,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

// HiddenGoal is context for the chat relay. It is never rendered publicly.
type HiddenGoal struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the normalized public content.
type Snapshot struct {
	Profile      Profile         `json:"profile"`
	Experiences  []Experience    `json:"experiences"`
	Education    []Education     `json:"education"`
	Projects     []Project       `json:"projects"`
	Skills       []SkillCategory `json:"skills"`
	Testimonials []Testimonial   `json:"testimonials"`
}

// FeaturedProjects splits projects into featured and other, keeping order.
func (s Snapshot) FeaturedProjects() (featured, other []Project) {
	featured, other = []Project{}, []Project{}
	for _, project := range s.Projects {
		if project.Featured {
			featured = append(featured, project)
		} else {
			other = append(other, project)
		}
	}
	return featured, other
}

// GroupSkills attaches skills to their categories. Skills whose category is
// missing are dropped.
func GroupSkills(categories []SkillCategory, skills []Skill) []SkillCategory {
	grouped := make([]SkillCategory, 0, len(categories))
	for _, category := range categories {
		category.Skills = []Skill{}
		for _, skill := range skills {
			if skill.CategoryID == category.ID {
				category.Skills = append(category.Skills, skill)
			}
		}
		grouped = append(grouped, category)
	}
	return grouped
}

func cloneStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Profile:      s.Profile,
		Experiences:  make([]Experience, len(s.Experiences)),
		Education:    make([]Education, len(s.Education)),
		Projects:     make([]Project, len(s.Projects)),
		Skills:       make([]SkillCategory, len(s.Skills)),
		Testimonials: slices.Clone(s.Testimonials),
	}
	if out.Testimonials == nil {
		out.Testimonials = []Testimonial{}
	}
	for i, item := range s.Experiences {
		item.Achievements = cloneStrings(item.Achievements)
		item.Technologies = cloneStrings(item.Technologies)
		out.Experiences[i] = item
	}
	for i, item := range s.Education {
		item.Achievements = cloneStrings(item.Achievements)
		out.Education[i] = item
	}
	for i, item := range s.Projects {
		item.Technologies = cloneStrings(item.Technologies)
		out.Projects[i] = item
	}
	for i, item := range s.Skills {
		item.Skills = slices.Clone(item.Skills)
		if item.Skills == nil {
			item.Skills = []Skill{}
		}
		out.Skills[i] = item
	}
	return out
}
