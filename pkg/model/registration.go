package model

import (
	"strings"
	"time"
)

// Registration is the data collected by the registration wizard
type Registration struct {
	FullName     string `json:"fullname"`
	DOB          string `json:"dob"`
	Passport     string `json:"passport"`
	PhonePrefix  string `json:"phone_prefix"`
	PhoneNumber  string `json:"phone_number"`
	UniversityID string `json:"university_id"`
	University   string `json:"university"`
	Email        string `json:"email,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	PostcodeText string `json:"postcode_label,omitempty"`
}

// FullPhone joins prefix and number, e.g. "+60" and "123" become "+60123".
func (r Registration) FullPhone() string {
	number := strings.TrimSpace(r.PhoneNumber)
	if number == "" {
		return ""
	}
	return strings.TrimSpace(r.PhonePrefix) + strings.TrimLeft(number, "0")
}

// MissingStepOne returns the names of required step-one fields that are empty
func (r Registration) MissingStepOne() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("fullname", r.FullName)
	check("dob", r.DOB)
	check("passport", r.Passport)
	check("phone_number", r.PhoneNumber)
	check("university_id", r.UniversityID)
	return missing
}

// Submission records one backend call made by this device
type Submission struct {
	ID        int64
	Action    string
	Payload   string
	Outcome   SubmissionOutcome
	Error     string
	CreatedAt time.Time
}

// SubmissionOutcome is the result of a backend call
type SubmissionOutcome string

const (
	OutcomeOK       SubmissionOutcome = "ok"
	OutcomeRejected SubmissionOutcome = "rejected"
	OutcomeFailed   SubmissionOutcome = "failed"
)

// IsValid returns true if the outcome is recognised
func (o SubmissionOutcome) IsValid() bool {
	switch o {
	case OutcomeOK, OutcomeRejected, OutcomeFailed:
		return true
	}
	return false
}
