//go:build windows

package notification

import (
	"log"

	"golang.org/x/sys/windows"
)

// ShowBlockingError displays a modal, blocking error dialog and returns after
// the user dismisses it.
func ShowBlockingError(title, message string) {
	show(title, message, mbOK|mbIconError|mbSystemModal|mbSetForeground)
}

// ShowInfo displays a modal information dialog.
func ShowInfo(title, message string) {
	show(title, message, mbOK|mbIconInfo|mbSetForeground)
}

func show(title, message string, flags uint32) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		log.Printf("NOTIFY: bad title %q: %v", title, err)
		return
	}
	msgPtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		log.Printf("NOTIFY: bad message: %v", err)
		return
	}
	if _, err := windows.MessageBox(0, msgPtr, titlePtr, flags); err != nil {
		log.Printf("NOTIFY: MessageBox failed: %v", err)
	}
}
