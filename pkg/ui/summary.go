package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ppimalaysia/regform/pkg/model"
)

// SummaryMarkdown renders a registration as a markdown review sheet
func SummaryMarkdown(reg model.Registration) string {
	var b strings.Builder
	b.WriteString("# Review your registration\n\n")

	b.WriteString("## Identity\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Full name", reg.FullName)
	row(&b, "Date of birth", reg.DOB)
	row(&b, "Passport", reg.Passport)
	row(&b, "Phone", reg.FullPhone())
	row(&b, "University", reg.University)

	b.WriteString("\n## Contact\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Email", reg.Email)
	postcode := reg.PostcodeText
	if postcode == "" {
		postcode = reg.Postcode
	}
	row(&b, "Postcode", postcode)

	b.WriteString("\nPress **enter** to submit, **ctrl+b** to go back.\n")
	return b.String()
}

// StudentMarkdown renders an existing backend record. Missing fields show "-".
func StudentMarkdown(student map[string]any) string {
	var b strings.Builder
	b.WriteString("# It looks like you are already registered\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")

	phone := model.StudentField(student, "phone", "phone_number", "phoneNumber")
	row(&b, "Full name", model.StudentField(student, "fullname"))
	row(&b, "Date of birth", model.StudentField(student, "dob"))
	row(&b, "Passport", model.StudentField(student, "passport"))
	row(&b, "Phone", phone)
	row(&b, "University", model.StudentField(student, "university"))
	row(&b, "Email", model.StudentField(student, "email"))
	return b.String()
}

// ProfileMarkdown renders the profile screen for a backend record
func ProfileMarkdown(student map[string]any) string {
	personal := model.PersonalDetailsFrom(student)
	uni := model.UniversityDetailsFrom(student)

	var b strings.Builder
	title := "Your profile"
	if personal.FullName != "" {
		title = "Hi, " + shortName(personal.FullName)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Personal details\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Full name", personal.FullName)
	row(&b, "Date of birth", personal.DOB)
	row(&b, "Passport", personal.Passport)
	row(&b, "Email", personal.Email)
	row(&b, "Phone", personal.Phone)
	row(&b, "Postcode", personal.Postcode)
	row(&b, "Address", personal.Address)

	b.WriteString("\n## University details\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "University", uni.University)
	row(&b, "Programme", uni.Programme)
	row(&b, "Education level", model.EducationLevelName(uni.Level))
	row(&b, "Expected graduation", uni.Graduation)
	return b.String()
}

// shortName keeps the first two words of a full name
func shortName(full string) string {
	parts := strings.Fields(full)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, " ")
}

func row(b *strings.Builder, field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "-"
	}
	value = strings.ReplaceAll(value, "|", "\\|")
	fmt.Fprintf(b, "| %s | %s |\n", field, value)
}

// newMarkdownRenderer builds a glamour renderer for style ("auto", "dark",
// "light", "notty", ...).
func newMarkdownRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if width < 20 {
		width = 20
	}
	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("markdown renderer %q: %w", style, err)
	}
	return r, nil
}

// renderMarkdown renders md, falling back to the raw text
func renderMarkdown(r *glamour.TermRenderer, md string) string {
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
