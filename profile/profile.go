// Package profile holds the static, read-only user directory. It is injected
// at construction rather than read as ambient state; this subsystem never
// writes to it.
package profile

type Profile struct {
	DisplayName string
	About       string
}

// Anonymous is returned for senders the directory does not know.
var Anonymous = Profile{
	DisplayName: "there",
	About:       "No additional information is known about this user.",
}

type Directory map[string]Profile

func (d Directory) Lookup(userId string) Profile {
	if p, ok := d[userId]; ok {
		return p
	}
	return Anonymous
}
