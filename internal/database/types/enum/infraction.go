package enum

import "strings"

// InfractionType represents the kind of disciplinary action that was taken.
type InfractionType int

const (
	// InfractionTypeBan indicates the user was banned from the guild.
	InfractionTypeBan InfractionType = iota
	// InfractionTypeMute indicates the user was muted.
	InfractionTypeMute
	// InfractionTypeWarn indicates the user was warned.
	InfractionTypeWarn
)

var infractionTypeNames = map[InfractionType]string{
	InfractionTypeBan:  "BAN",
	InfractionTypeMute: "MUTE",
	InfractionTypeWarn: "WARN",
}

func (t InfractionType) String() string {
	if name, ok := infractionTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsAInfractionType reports whether t is a declared infraction type.
func (t InfractionType) IsAInfractionType() bool {
	_, ok := infractionTypeNames[t]
	return ok
}

// InfractionTypeString parses the name of an infraction type, ignoring case.
func InfractionTypeString(s string) (InfractionType, error) {
	for t, name := range infractionTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, ErrUnknownValue
}

// InfractionFilter selects which infractions a listing returns.
type InfractionFilter int

const (
	InfractionFilterAll InfractionFilter = iota
	InfractionFilterBans
	InfractionFilterMutes
	InfractionFilterWarns
)

// Type returns the infraction type the filter is restricted to.
// The boolean is false for InfractionFilterAll.
func (f InfractionFilter) Type() (InfractionType, bool) {
	switch f {
	case InfractionFilterBans:
		return InfractionTypeBan, true
	case InfractionFilterMutes:
		return InfractionTypeMute, true
	case InfractionFilterWarns:
		return InfractionTypeWarn, true
	case InfractionFilterAll:
		return 0, false
	default:
		return 0, false
	}
}

func (f InfractionFilter) String() string {
	switch f {
	case InfractionFilterAll:
		return "ALL"
	case InfractionFilterBans:
		return "BANS"
	case InfractionFilterMutes:
		return "MUTES"
	case InfractionFilterWarns:
		return "WARNS"
	default:
		return "UNKNOWN"
	}
}
