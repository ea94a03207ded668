package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Preference form option values.
var (
	ExperienceLevels = []any{"beginner", "intermediate", "expert"}
	LightLevels      = []any{"low", "medium", "bright"}
	SpaceSizes       = []any{"small", "medium", "large"}
	Purposes         = []any{"decoration", "air-purification", "relaxation", "hobby"}
)

// PreferenceProfile is the answer set of the first-time preference form.
type PreferenceProfile struct {
	Experience string `json:"experience"`
	Light      string `json:"light"`
	Space      string `json:"space"`
	Purpose    string `json:"purpose"`
}

// DefaultPreferenceProfile returns the form's preselected answers.
func DefaultPreferenceProfile() PreferenceProfile {
	return PreferenceProfile{
		Experience: "beginner",
		Light:      "medium",
		Space:      "small",
		Purpose:    "decoration",
	}
}

// Validate checks every field against its option list.
func (p *PreferenceProfile) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Experience, validation.Required, validation.In(ExperienceLevels...)),
		validation.Field(&p.Light, validation.Required, validation.In(LightLevels...)),
		validation.Field(&p.Space, validation.Required, validation.In(SpaceSizes...)),
		validation.Field(&p.Purpose, validation.Required, validation.In(Purposes...)),
	)
}
