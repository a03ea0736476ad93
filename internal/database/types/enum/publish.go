package enum

import "errors"

// ErrUnknownValue is returned when a string does not name any enum value.
var ErrUnknownValue = errors.New("unknown enum value")

// PublishKind identifies which summary of an infraction a public message carries.
type PublishKind int

const (
	// PublishKindBan is the ban summary posted when a ban is published.
	PublishKindBan PublishKind = iota
	// PublishKindUnban is the unban summary posted once a ban has been pardoned.
	PublishKindUnban
)

func (k PublishKind) String() string {
	switch k {
	case PublishKindBan:
		return "BAN"
	case PublishKindUnban:
		return "UNBAN"
	default:
		return "UNKNOWN"
	}
}
