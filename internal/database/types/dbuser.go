package types

// DBUser is a snapshot of an actor's identity at the time of an action.
// It is never updated retroactively.
type DBUser struct {
	ID   uint64 `bun:",notnull" json:"id"`
	Name string `bun:",notnull" json:"name"`
}

// SystemUser is the sentinel recorded when no moderator was known at creation time.
var SystemUser = DBUser{ID: 0, Name: "Unknown"} //nolint:gochecknoglobals // -

// IsSystem reports whether the snapshot is the unknown/system sentinel.
func (u DBUser) IsSystem() bool {
	return u.ID == 0
}
