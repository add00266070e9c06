package validation

import (
	"strings"
)

// ProfileErrorPrefix starts the aggregate message shown when required profile fields are blank.
const ProfileErrorPrefix = "Please fill in all required fields: "

// ProfileErrorDismissAfterMS is how long clients keep the aggregate profile error on screen.
const ProfileErrorDismissAfterMS = 5000

// Required-field messages, in the order they are reported.
const (
	MsgNameRequired             = "Full name is required"
	MsgBusinessPositionRequired = "Business position is required"
	MsgLocationRequired         = "Location is required"
)

// AvatarPalette is the fixed set of avatar background colours.
var AvatarPalette = []string{
	"#F7C5C5", "#FFB6C1", "#DDA0DD", "#98FB98",
	"#87CEEB", "#F0E68C", "#FFA07A", "#20B2AA",
	"#FF69B4", "#32CD32", "#FF6347", "#4169E1",
	"#DA70D6", "#FF8C00", "#00CED1", "#9370DB",
}

// ProfileFields is the edit form as submitted.
type ProfileFields struct {
	Name             string
	BusinessPosition string
	Location         string
	Website          string
	AvatarColor      string
}

// ProfileError carries every failing required field. Error() renders the single
// aggregate message.
type ProfileError struct {
	Items []string
}

func (e *ProfileError) Error() string {
	return ProfileErrorPrefix + strings.Join(e.Items, ", ")
}

// NormalizeProfile trims every field and validates the required ones.
// On failure it returns a *ProfileError and the zero value.
func NormalizeProfile(in ProfileFields) (ProfileFields, error) {
	out := ProfileFields{
		Name:             strings.TrimSpace(in.Name),
		BusinessPosition: strings.TrimSpace(in.BusinessPosition),
		Location:         strings.TrimSpace(in.Location),
		Website:          strings.TrimSpace(in.Website),
		AvatarColor:      strings.ToUpper(strings.TrimSpace(in.AvatarColor)),
	}

	var items []string
	if out.Name == "" {
		items = append(items, MsgNameRequired)
	}
	if out.BusinessPosition == "" {
		items = append(items, MsgBusinessPositionRequired)
	}
	if out.Location == "" {
		items = append(items, MsgLocationRequired)
	}
	if len(items) > 0 {
		return ProfileFields{}, &ProfileError{Items: items}
	}

	if out.AvatarColor != "" && !IsPaletteColor(out.AvatarColor) {
		return ProfileFields{}, &ColorError{Color: in.AvatarColor}
	}
	return out, nil
}

// ColorError reports an avatar colour outside AvatarPalette.
type ColorError struct {
	Color string
}

func (e *ColorError) Error() string {
	return "Avatar color must be one of the palette colors"
}

// IsPaletteColor reports whether c (case-insensitive) is in AvatarPalette.
func IsPaletteColor(c string) bool {
	for _, p := range AvatarPalette {
		if strings.EqualFold(p, c) {
			return true
		}
	}
	return false
}
