package enum

// PermissionState is the tri-state value of a single permission in a channel overwrite.
// Inherit means the overwrite neither allows nor denies the permission.
type PermissionState int

const (
	PermissionStateInherit PermissionState = iota
	PermissionStateAllow
	PermissionStateDeny
)

func (s PermissionState) String() string {
	switch s {
	case PermissionStateInherit:
		return "INHERIT"
	case PermissionStateAllow:
		return "ALLOW"
	case PermissionStateDeny:
		return "DENY"
	default:
		return "UNKNOWN"
	}
}

// PermissionStateFromBool converts the optional boolean form used by chat platforms
// (nil = unset, true = allowed, false = denied).
func PermissionStateFromBool(v *bool) PermissionState {
	switch {
	case v == nil:
		return PermissionStateInherit
	case *v:
		return PermissionStateAllow
	default:
		return PermissionStateDeny
	}
}
