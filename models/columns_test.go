package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRecordCoversEveryEntity(t *testing.T) {
	for _, entity := range Entities {
		record, ok := NewRecord(entity)
		assert.True(t, ok, entity)
		assert.Equal(t, entity, record.Entity())
	}

	_, ok := NewRecord(Entity("users"))
	assert.False(t, ok)
}

func TestNewSkillDefaultsLevel(t *testing.T) {
	record, _ := NewRecord(EntitySkills)
	assert.Equal(t, DefaultSkillLevel, record.(*SkillInput).Level)
}

func TestColumnsKinds(t *testing.T) {
	columns, ok := Columns(EntityExperiences)
	assert.True(t, ok)

	kinds := map[string]Kind{}
	for _, column := range columns {
		kinds[column.Name] = column.Kind
	}
	assert.Equal(t, KindText, kinds["company"])
	assert.Equal(t, KindLines, kinds["achievements"])
	assert.Equal(t, KindCSV, kinds["technologies"])
	assert.Equal(t, KindInt, kinds["sort_order"])

	columns, _ = Columns(EntityProjects)
	kinds = map[string]Kind{}
	for _, column := range columns {
		kinds[column.Name] = column.Kind
	}
	assert.Equal(t, KindOptionalText, kinds["live_url"])
	assert.Equal(t, KindBool, kinds["featured"])
}

func TestHasColumn(t *testing.T) {
	assert.True(t, HasColumn(EntitySkills, "category_id"))
	assert.False(t, HasColumn(EntitySkills, "id"))
	assert.False(t, HasColumn(Entity("nope"), "name"))
}

func TestValuesOptionalText(t *testing.T) {
	live := "https://example.com"
	values := Values(&ProjectInput{Title: "Site", LiveURL: &live, Technologies: []string{"Go"}})

	assert.Equal(t, "Site", values["title"])
	assert.Equal(t, live, values["live_url"])
	assert.Nil(t, values["github_url"])
	assert.Equal(t, []string{"Go"}, values["technologies"])
	assert.Equal(t, false, values["featured"])
}

func TestAssign(t *testing.T) {
	record := &SkillInput{}
	err := Assign(record, map[string]any{"name": "Go", "level": int64(4), "category_id": int64(7)})
	assert.NoError(t, err)
	assert.Equal(t, "Go", record.Name)
	assert.Equal(t, 4, record.Level)
	assert.Equal(t, int64(7), record.CategoryID)

	education := &EducationInput{}
	assert.NoError(t, Assign(education, map[string]any{"description": "Thesis", "achievements": nil}))
	assert.Equal(t, "Thesis", *education.Description)
	assert.Nil(t, education.Achievements)
}

func TestAssignErrors(t *testing.T) {
	err := Assign(&SkillInput{}, map[string]any{"password": "x"})
	assert.True(t, errors.Is(err, ErrUnknownColumn))

	err = Assign(&SkillInput{}, map[string]any{"level": "high"})
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "level", validationErr.Column)

	err = Assign(&SkillInput{}, map[string]any{"name": nil})
	assert.True(t, errors.As(err, &validationErr))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&ExperienceInput{Company: "Acme", Position: "Engineer", Period: "2020"}))

	err := Validate(&ExperienceInput{Position: "Engineer", Period: "2020"})
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "company", validationErr.Column)
	assert.Equal(t, "company is required", validationErr.Message)
}

func TestValidateSkillLevelRange(t *testing.T) {
	err := Validate(&SkillInput{CategoryID: 1, Name: "Go", Level: 6})
	assert.EqualError(t, err, "level must be at most 5")

	err = Validate(&SkillInput{CategoryID: 1, Name: "Go", Level: 0})
	assert.EqualError(t, err, "level must be at least 1")
}

func TestValidateProfileURLs(t *testing.T) {
	bad := "not a url"
	err := Validate(&ProfileInput{Name: "Iza", LinkedInURL: &bad})
	assert.EqualError(t, err, "linkedin_url must be a valid URL")

	err = Validate(&ProfileInput{Name: "Iza", Email: "nope"})
	assert.EqualError(t, err, "email must be a valid email address")
}

func TestValidatePatchChecksOnlyPresentColumns(t *testing.T) {
	assert.NoError(t, ValidatePatch(EntityExperiences, map[string]any{"description": "Led the team"}))

	err := ValidatePatch(EntityExperiences, map[string]any{"company": ""})
	assert.EqualError(t, err, "company is required")

	err = ValidatePatch(EntitySkills, map[string]any{"level": 9})
	assert.EqualError(t, err, "level must be at most 5")
}

func TestValidatePatchErrors(t *testing.T) {
	assert.ErrorIs(t, ValidatePatch(EntitySkills, nil), ErrEmptyPatch)
	assert.ErrorIs(t, ValidatePatch(EntitySkills, map[string]any{"id": 3}), ErrUnknownColumn)
	assert.Error(t, ValidatePatch(Entity("users"), map[string]any{"name": "x"}))
}
