package models

import (
	"database/sql"

	"github.com/lib/pq"
)

type ProfileRow struct {
	ID           int64
	Name         string
	Title        string
	Bio          string
	Email        string
	Phone        string
	Location     string
	ProfileImage string
	CVFile       string
	LinkedInURL  sql.NullString
}

type ExperienceRow struct {
	ID           int64
	Company      string
	Position     string
	Period       string
	Description  string
	Achievements pq.StringArray
	Technologies pq.StringArray
	SortOrder    int
}

type EducationRow struct {
	ID           int64
	Institution  string
	Degree       string
	Field        string
	Period       string
	Description  sql.NullString
	Achievements pq.StringArray
	SortOrder    int
}

type ProjectRow struct {
	ID              int64
	Title           string
	Description     string
	LongDescription string
	Image           string
	Technologies    pq.StringArray
	LiveURL         sql.NullString
	GithubURL       sql.NullString
	Featured        bool
	SortOrder       int
}

type SkillCategoryRow struct {
	ID        int64
	Category  string
	SortOrder int
}

type SkillRow struct {
	ID         int64
	CategoryID int64
	Name       string
	Level      int
	SortOrder  int
}

type TestimonialRow struct {
	ID        int64
	Name      string
	Role      string
	Company   string
	Content   string
	Image     sql.NullString
	SortOrder int
}

type HiddenGoalRow struct {
	ID        int64
	Content   string
	CreatedAt sql.NullTime
}
