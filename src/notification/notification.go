// Package notification shows blocking message dialogs. The picker has no
// console when started from a shortcut, so fatal errors go through here.
package notification

// MessageBoxW flags.
const (
	mbOK            = 0x00000000
	mbIconError     = 0x00000010
	mbIconInfo      = 0x00000040
	mbSystemModal   = 0x00001000
	mbSetForeground = 0x00010000
)
