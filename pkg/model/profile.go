package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format of every date field the backend stores
const DateLayout = "2006-01-02"

// EducationLevel is one entry of the backend's qualification table
type EducationLevel struct {
	ID   int
	Name string
}

// EducationLevels are the qualification levels the backend accepts, in order
var EducationLevels = []EducationLevel{
	{1, "Certificate"},
	{2, "Diploma"},
	{3, "Undergraduate (Bachelor)"},
	{4, "Postgraduate (Master)"},
	{5, "Postgraduate (Doctorate)"},
	{6, "Postdoctoral"},
}

// EducationLevelName returns the display name for id, or "" if unknown
func EducationLevelName(id int) string {
	for _, l := range EducationLevels {
		if l.ID == id {
			return l.Name
		}
	}
	return ""
}

var (
	passportPattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{7,8}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ErrInvalidDetails wraps every profile validation failure
var ErrInvalidDetails = errors.New("invalid details")

// StudentField returns the first non-blank value among keys. Backend
// records are loosely typed, so numbers are formatted as text.
func StudentField(student map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := student[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			s = fmt.Sprint(x)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// UniversityDetails is the university section of a student profile
type UniversityDetails struct {
	UniversityID string
	University   string
	Programme    string
	Level        int // 0 when unset
	Graduation   string
}

// UniversityDetailsFrom reads the section out of a backend record, accepting
// every field name the backend has used for it.
func UniversityDetailsFrom(student map[string]any) UniversityDetails {
	level, _ := strconv.Atoi(StudentField(student, "level_of_qualification_id", "education_level", "level"))
	return UniversityDetails{
		UniversityID: StudentField(student, "university_id"),
		University:   StudentField(student, "university", "university_name"),
		Programme:    StudentField(student, "degree_programme", "degree", "programme", "program", "education_programme"),
		Level:        level,
		Graduation:   StudentField(student, "expected_graduate", "expected_graduation", "graduation_date", "education_graduation"),
	}
}

// Validate reports the missing fields by display name
func (u UniversityDetails) Validate() error {
	var missing []string
	if strings.TrimSpace(u.University) == "" {
		missing = append(missing, "University")
	}
	if strings.TrimSpace(u.UniversityID) == "" {
		missing = append(missing, "University ID")
	}
	if strings.TrimSpace(u.Programme) == "" {
		missing = append(missing, "Degree Programme")
	}
	if EducationLevelName(u.Level) == "" {
		missing = append(missing, "Current Education Level")
	}
	if strings.TrimSpace(u.Graduation) == "" {
		missing = append(missing, "Expected Graduation Date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: please complete: %s", ErrInvalidDetails, strings.Join(missing, ", "))
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(u.Graduation)); err != nil {
		return fmt.Errorf("%w: expected graduation must look like 2027-06-30", ErrInvalidDetails)
	}
	return nil
}

// Payload is the "edit" body for the section
func (u UniversityDetails) Payload() map[string]any {
	level := strconv.Itoa(u.Level)
	return map[string]any{
		"section":                   "university",
		"university_id":             u.UniversityID,
		"university":                u.University,
		"education_programme":       u.Programme,
		"programme":                 u.Programme,
		"degree":                    u.Programme,
		"level_of_qualification_id": level,
		"education_level":           level,
		"education_graduation":      u.Graduation,
		"expected_graduate":         u.Graduation,
	}
}

// Snapshot is merged into the local record when the backend does not echo
// the updated student.
func (u UniversityDetails) Snapshot() map[string]any {
	return map[string]any{
		"university":                u.University,
		"university_name":           u.University,
		"university_id":             u.UniversityID,
		"degree_programme":          u.Programme,
		"level_of_qualification_id": u.Level,
		"expected_graduate":         u.Graduation,
	}
}

// PersonalDetails is the personal section of a student profile
type PersonalDetails struct {
	FullName string
	DOB      string
	Passport string
	Email    string
	Phone    string
	Postcode string
	Address  string
}

// PersonalDetailsFrom reads the section out of a backend record
func PersonalDetailsFrom(student map[string]any) PersonalDetails {
	return PersonalDetails{
		FullName: StudentField(student, "fullname"),
		DOB:      StudentField(student, "dob"),
		Passport: StudentField(student, "passport"),
		Email:    StudentField(student, "email"),
		Phone:    StudentField(student, "phone", "phone_number", "phoneNumber"),
		Postcode: StudentField(student, "postcode_id", "postcode"),
		Address:  StudentField(student, "address"),
	}
}

// Normalize trims every field, upper-cases the passport and keeps only the
// leading "+" and digits of the phone number.
func (p PersonalDetails) Normalize() PersonalDetails {
	p.FullName = strings.TrimSpace(p.FullName)
	p.DOB = strings.TrimSpace(p.DOB)
	p.Passport = strings.ToUpper(strings.TrimSpace(p.Passport))
	p.Email = strings.TrimSpace(p.Email)
	p.Postcode = strings.TrimSpace(p.Postcode)
	p.Address = strings.TrimSpace(p.Address)

	var b strings.Builder
	for i, r := range strings.TrimSpace(p.Phone) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	p.Phone = b.String()
	return p
}

// Validate checks required fields, then the date, passport and email formats.
// Call it on normalized details.
func (p PersonalDetails) Validate() error {
	var missing []string
	for _, f := range []struct{ label, value string }{
		{"Full Name", p.FullName},
		{"Date of Birth", p.DOB},
		{"Passport Number", p.Passport},
		{"Email", p.Email},
		{"Phone Number", p.Phone},
		{"Postcode", p.Postcode},
		{"Address", p.Address},
	} {
		if f.value == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: please complete: %s", ErrInvalidDetails, strings.Join(missing, ", "))
	}
	if _, err := time.Parse(DateLayout, p.DOB); err != nil {
		return fmt.Errorf("%w: date of birth must look like 2001-09-30", ErrInvalidDetails)
	}
	if !passportPattern.MatchString(p.Passport) {
		return fmt.Errorf("%w: passport must be 1-2 letters and 7-8 digits (e.g. A1234567)", ErrInvalidDetails)
	}
	if !emailPattern.MatchString(p.Email) {
		return fmt.Errorf("%w: email address looks invalid", ErrInvalidDetails)
	}
	return nil
}

// Payload is the "edit" body for the section
func (p PersonalDetails) Payload() map[string]any {
	return map[string]any{
		"section":      "personal",
		"fullname":     p.FullName,
		"dob":          p.DOB,
		"passport":     p.Passport,
		"email":        p.Email,
		"phone_number": p.Phone,
		"phone":        p.Phone,
		"postcode":     p.Postcode,
		"postcode_id":  p.Postcode,
		"address":      p.Address,
	}
}

// Snapshot is merged into the local record when the backend does not echo
// the updated student.
func (p PersonalDetails) Snapshot() map[string]any {
	snap := p.Payload()
	delete(snap, "section")
	return snap
}
