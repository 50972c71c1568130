// Package repository reads and writes the content tables in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"portfolio-service/content"
	"portfolio-service/models"

	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("row not found")
	ErrUnknownColumn = models.ErrUnknownColumn
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const (
	selectProfile = `SELECT id, name, title, bio, email, phone, location, profile_image, cv_file, linkedin_url
		FROM profile WHERE id = $1`
	selectExperiences = `SELECT id, company, position, period, description, achievements, technologies, sort_order
		FROM experiences ORDER BY sort_order ASC, id ASC`
	selectEducation = `SELECT id, institution, degree, field, period, description, achievements, sort_order
		FROM education ORDER BY sort_order ASC, id ASC`
	selectProjects = `SELECT id, title, description, long_description, image, technologies, live_url, github_url, featured, sort_order
		FROM projects ORDER BY sort_order ASC, id ASC`
	selectSkillCategories = `SELECT id, category, sort_order
		FROM skill_categories ORDER BY sort_order ASC, id ASC`
	selectSkills = `SELECT id, category_id, name, level, sort_order
		FROM skills ORDER BY sort_order ASC, id ASC`
	selectTestimonials = `SELECT id, name, role, company, content, image, sort_order
		FROM testimonials ORDER BY sort_order ASC, id ASC`
	selectHiddenGoals = `SELECT id, content, created_at
		FROM hidden_goals ORDER BY created_at DESC, id DESC`
)

func (p *Postgres) Profile(ctx context.Context) (content.Profile, error) {
	var row models.ProfileRow
	err := p.db.QueryRowContext(ctx, selectProfile, models.ProfileID).Scan(
		&row.ID, &row.Name, &row.Title, &row.Bio, &row.Email, &row.Phone,
		&row.Location, &row.ProfileImage, &row.CVFile, &row.LinkedInURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Profile{}, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return content.Profile{}, fmt.Errorf("query profile: %w", err)
	}

	return content.Profile{
		Name:         row.Name,
		Title:        row.Title,
		Bio:          row.Bio,
		Email:        row.Email,
		Phone:        row.Phone,
		Location:     row.Location,
		ProfileImage: row.ProfileImage,
		CVFile:       row.CVFile,
		SocialLinks:  content.SocialLinks{LinkedIn: row.LinkedInURL.String},
	}, nil
}

func (p *Postgres) Experiences(ctx context.Context) ([]content.Experience, error) {
	items := []content.Experience{}
	err := p.queryRows(ctx, selectExperiences, func(rows *sql.Rows) error {
		var row models.ExperienceRow
		if err := rows.Scan(&row.ID, &row.Company, &row.Position, &row.Period, &row.Description,
			&row.Achievements, &row.Technologies, &row.SortOrder); err != nil {
			return err
		}
		items = append(items, content.Experience{
			ID:           row.ID,
			Company:      row.Company,
			Position:     row.Position,
			Period:       row.Period,
			Description:  row.Description,
			Achievements: textItems(row.Achievements),
			Technologies: textItems(row.Technologies),
			SortOrder:    row.SortOrder,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query experiences: %w", err)
	}
	return items, nil
}

func (p *Postgres) Education(ctx context.Context) ([]content.Education, error) {
	items := []content.Education{}
	err := p.queryRows(ctx, selectEducation, func(rows *sql.Rows) error {
		var row models.EducationRow
		if err := rows.Scan(&row.ID, &row.Institution, &row.Degree, &row.Field, &row.Period,
			&row.Description, &row.Achievements, &row.SortOrder); err != nil {
			return err
		}
		items = append(items, content.Education{
			ID:           row.ID,
			Institution:  row.Institution,
			Degree:       row.Degree,
			Field:        row.Field,
			Period:       row.Period,
			Description:  row.Description.String,
			Achievements: textItems(row.Achievements),
			SortOrder:    row.SortOrder,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query education: %w", err)
	}
	return items, nil
}

func (p *Postgres) Projects(ctx context.Context) ([]content.Project, error) {
	items := []content.Project{}
	err := p.queryRows(ctx, selectProjects, func(rows *sql.Rows) error {
		var row models.ProjectRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Description, &row.LongDescription, &row.Image,
			&row.Technologies, &row.LiveURL, &row.GithubURL, &row.Featured, &row.SortOrder); err != nil {
			return err
		}
		items = append(items, content.Project{
			ID:              row.ID,
			Title:           row.Title,
			Description:     row.Description,
			LongDescription: row.LongDescription,
			Image:           row.Image,
			Technologies:    textItems(row.Technologies),
			LiveURL:         row.LiveURL.String,
			GithubURL:       row.GithubURL.String,
			Featured:        row.Featured,
			SortOrder:       row.SortOrder,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	return items, nil
}

func (p *Postgres) SkillCategories(ctx context.Context) ([]content.SkillCategory, error) {
	items := []content.SkillCategory{}
	err := p.queryRows(ctx, selectSkillCategories, func(rows *sql.Rows) error {
		var row models.SkillCategoryRow
		if err := rows.Scan(&row.ID, &row.Category, &row.SortOrder); err != nil {
			return err
		}
		items = append(items, content.SkillCategory{ID: row.ID, Category: row.Category, SortOrder: row.SortOrder})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query skill categories: %w", err)
	}
	return items, nil
}

func (p *Postgres) Skills(ctx context.Context) ([]content.Skill, error) {
	items := []content.Skill{}
	err := p.queryRows(ctx, selectSkills, func(rows *sql.Rows) error {
		var row models.SkillRow
		if err := rows.Scan(&row.ID, &row.CategoryID, &row.Name, &row.Level, &row.SortOrder); err != nil {
			return err
		}
		items = append(items, content.Skill{
			ID:         row.ID,
			CategoryID: row.CategoryID,
			Name:       row.Name,
			Level:      row.Level,
			SortOrder:  row.SortOrder,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	return items, nil
}

func (p *Postgres) Testimonials(ctx context.Context) ([]content.Testimonial, error) {
	items := []content.Testimonial{}
	err := p.queryRows(ctx, selectTestimonials, func(rows *sql.Rows) error {
		var row models.TestimonialRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Role, &row.Company, &row.Content,
			&row.Image, &row.SortOrder); err != nil {
			return err
		}
		items = append(items, content.Testimonial{
			ID:        row.ID,
			Name:      row.Name,
			Role:      row.Role,
			Company:   row.Company,
			Content:   row.Content,
			Image:     row.Image.String,
			SortOrder: row.SortOrder,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query testimonials: %w", err)
	}
	return items, nil
}

func (p *Postgres) HiddenGoals(ctx context.Context) ([]content.HiddenGoal, error) {
	items := []content.HiddenGoal{}
	err := p.queryRows(ctx, selectHiddenGoals, func(rows *sql.Rows) error {
		var row models.HiddenGoalRow
		if err := rows.Scan(&row.ID, &row.Content, &row.CreatedAt); err != nil {
			return err
		}
		items = append(items, content.HiddenGoal{ID: row.ID, Content: row.Content, CreatedAt: row.CreatedAt.Time})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query hidden goals: %w", err)
	}
	return items, nil
}

func (p *Postgres) queryRows(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Insert writes one row and returns its id.
func (p *Postgres) Insert(ctx context.Context, record models.Record) (int64, error) {
	values := models.Values(record)
	columns := sortedColumns(values)

	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = sqlValue(values[column])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		record.Entity().Table(), joinColumns(columns), joinColumns(placeholders))

	var id int64
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s: %w", record.Entity(), err)
	}
	return id, nil
}

// Update changes only the columns present in patch.
func (p *Postgres) Update(ctx context.Context, entity models.Entity, id int64, patch map[string]any) error {
	if len(patch) == 0 {
		return models.ErrEmptyPatch
	}
	columns := sortedColumns(patch)

	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		if !models.HasColumn(entity, column) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, entity, column)
		}
		assignments[i] = fmt.Sprintf("%s = $%d", column, i+1)
		args = append(args, sqlValue(patch[column]))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		entity.Table(), joinColumns(assignments), len(args))
	return p.execOne(ctx, query, args...)
}

func (p *Postgres) Delete(ctx context.Context, entity models.Entity, id int64) error {
	if _, ok := models.NewRecord(entity); !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", entity.Table())
	return p.execOne(ctx, query, id)
}

func (p *Postgres) execOne(ctx context.Context, query string, args ...any) error {
	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func textItems(items pq.StringArray) []string {
	if items == nil {
		return []string{}
	}
	return []string(items)
}

func sortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func joinColumns(items []string) string {
	return strings.Join(items, ", ")
}

// sqlValue adapts Go values to what lib/pq can bind.
func sqlValue(value any) any {
	if items, ok := value.([]string); ok {
		if items == nil {
			items = []string{}
		}
		return pq.Array(items)
	}
	return value
}
