//go:build windows

package infra

import "golang.org/x/sys/windows"

// queryElevation checks the process token. Membership of the Administrators
// group only counts when the SID is enabled, which UAC-filtered tokens lack.
func queryElevation() (bool, error) {
	if windows.GetCurrentProcessToken().IsElevated() {
		return true, nil
	}

	var adminSid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&adminSid)
	if err != nil {
		return false, err
	}
	defer windows.FreeSid(adminSid)

	token := windows.Token(0)
	return token.IsMember(adminSid)
}
