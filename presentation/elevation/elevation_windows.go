//go:build windows

package elevation

import "golang.org/x/sys/windows"

// IsElevated reports whether the process token belongs to the Administrators
// group.
func IsElevated() bool {
	sid, err := windows.CreateWellKnownSid(windows.WinBuiltinAdministratorsSid)
	if err != nil {
		return false
	}

	token := windows.Token(0)
	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}

	return member
}

func Hint() string {
	return "restart from an Administrator prompt"
}
