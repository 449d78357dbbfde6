package user

// AccentID identifies one of the UI accent colours.
type AccentID int

const (
	AccentBlue   AccentID = 1
	AccentGreen  AccentID = 2
	AccentYellow AccentID = 3
	AccentRed    AccentID = 4
	AccentOrange AccentID = 5
	AccentPink   AccentID = 6
	AccentPurple AccentID = 7
)

const DefaultAccentID = AccentBlue

func (a AccentID) IsValid() bool {
	switch a {
	case AccentBlue, AccentGreen, AccentYellow, AccentRed, AccentOrange, AccentPink, AccentPurple:
		return true
	default:
		return false
	}
}

// ResolveAccentID applies the default colour policy.
// nil (absent or null) and 0 become DefaultAccentID, anything else is taken as already validated upstream.
func ResolveAccentID(raw *int) AccentID {
	if raw == nil || *raw == 0 {
		return DefaultAccentID
	}

	return AccentID(*raw)
}
