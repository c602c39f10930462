package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes from either a JSON string or a JSON number. Dataset
// exports are inconsistent about quoting identifiers like zip codes.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("flexstring: expected string or number, got %s", data)
	}
	*s = FlexString(num.String())
	return nil
}

// String returns the trimmed value
func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// University is one row of the universities dataset
type University struct {
	ID   FlexString `json:"university_id"`
	Name string     `json:"university_name"`
}

// UnmarshalJSON accepts both the registration export keys
// (university_id/university_name) and the short profile keys (id/name).
func (u *University) UnmarshalJSON(data []byte) error {
	var raw struct {
		UniversityID   *FlexString `json:"university_id"`
		UniversityName *string     `json:"university_name"`
		ID             *FlexString `json:"id"`
		Name           *string     `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = University{}
	switch {
	case raw.UniversityID != nil:
		u.ID = *raw.UniversityID
	case raw.ID != nil:
		u.ID = *raw.ID
	}
	switch {
	case raw.UniversityName != nil:
		u.Name = *raw.UniversityName
	case raw.Name != nil:
		u.Name = *raw.Name
	}
	return nil
}

// OtherUniversity is offered when a university search has no matches
var OtherUniversity = University{ID: "108", Name: "Other University"}

// UniversityLabel projects a university to its display text
func UniversityLabel(u University) string {
	return strings.TrimSpace(u.Name)
}

// UniversityValue projects a university to its identifier
func UniversityValue(u University) string {
	return u.ID.String()
}

// Postcode is one row of the postcode dataset
type Postcode struct {
	ZipCode   FlexString `json:"zip_code"`
	City      string     `json:"city"`
	StateName string     `json:"state_name"`
}

// PostcodeLabel renders "zip - city, state", dropping empty parts.
func PostcodeLabel(p Postcode) string {
	var location []string
	if city := strings.TrimSpace(p.City); city != "" {
		location = append(location, city)
	}
	if state := strings.TrimSpace(p.StateName); state != "" {
		location = append(location, state)
	}

	var parts []string
	if zip := p.ZipCode.String(); zip != "" {
		parts = append(parts, zip)
	}
	if len(location) > 0 {
		parts = append(parts, strings.Join(location, ", "))
	}
	return strings.Join(parts, " - ")
}

// PostcodeValue projects a postcode to its zip
func PostcodeValue(p Postcode) string {
	return p.ZipCode.String()
}

// FilterPostcodes matches the term against the full composite label so a
// user can type a zip, a city or a state.
func FilterPostcodes(term string, rows []Postcode) []Postcode {
	lower := strings.ToLower(strings.TrimSpace(term))
	if lower == "" {
		return nil
	}
	var out []Postcode
	for _, row := range rows {
		if strings.Contains(strings.ToLower(PostcodeLabel(row)), lower) {
			out = append(out, row)
		}
	}
	return out
}

// RegionCode is one row of the phone region code dataset
type RegionCode struct {
	Code    string `json:"code"`
	Country string `json:"country"`
}

// DefaultPhonePrefix is used when the region dataset is unavailable
const DefaultPhonePrefix = "+60"

// RegionLabel renders "Country (+code)". Rows missing either part have no
// label and are not offered.
func RegionLabel(r RegionCode) string {
	code := strings.TrimSpace(r.Code)
	country := strings.TrimSpace(r.Country)
	if code == "" || country == "" {
		return ""
	}
	return country + " (" + code + ")"
}

// RegionValue projects a region to its dialing code
func RegionValue(r RegionCode) string {
	return strings.TrimSpace(r.Code)
}

// PhonePlaceholder derives the number placeholder shown next to a prefix,
// e.g. "+60" becomes "60**********".
func PhonePlaceholder(code string) string {
	return strings.ReplaceAll(code, "+", "") + "**********"
}
