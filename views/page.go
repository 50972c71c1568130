// Package views renders the public portfolio page from the content mirror.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"portfolio-service/content"
)

// EmptyProfileMessage is shown in the hero before a profile exists.
const EmptyProfileMessage = "No profile data available. Please add your profile in the admin panel."

var (
	//go:embed templates/*.html
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// Static serves the stylesheet and script referenced by the page.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// Page is the view model of the public site. Empty sections stay empty and
// the template skips them entirely.
type Page struct {
	Loading          bool
	Error            string
	Profile          content.Profile
	EmptyProfile     bool
	Titles           []string
	Experiences      []content.Experience
	Education        []content.Education
	FeaturedProjects []content.Project
	OtherProjects    []content.Project
	Skills           []content.SkillCategory
	Testimonials     []content.Testimonial
}

// NewPage builds the view model. The loading state is shown until the
// first refresh has completed.
func NewPage(snapshot content.Snapshot, status content.Status) Page {
	page := Page{
		Loading: status.State == content.StateIdle || (status.Loading() && status.UpdatedAt.IsZero()),
		Error:   status.Error,
	}
	if page.Loading {
		return page
	}

	featured, other := snapshot.FeaturedProjects()
	page.Profile = snapshot.Profile
	page.EmptyProfile = snapshot.Profile.IsEmpty()
	page.Titles = Titles(snapshot.Profile.Title)
	page.Experiences = snapshot.Experiences
	page.Education = snapshot.Education
	page.FeaturedProjects = featured
	page.OtherProjects = other
	page.Skills = snapshot.Skills
	page.Testimonials = snapshot.Testimonials
	return page
}

// StaticTitle is the hero title when there is nothing to animate.
func (p Page) StaticTitle() string {
	if len(p.Titles) == 0 {
		return ""
	}
	return p.Titles[0]
}

// Animated reports whether the hero title cycles.
func (p Page) Animated() bool {
	return len(p.Titles) > 1
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"dots":         levelDots,
		"emptyProfile": func() string { return EmptyProfileMessage },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, page Page) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", page)
}

// levelDots marks the filled dots of a 1-5 skill level.
func levelDots(level int) []bool {
	dots := make([]bool, 5)
	for i := range dots {
		dots[i] = i < level
	}
	return dots
}
