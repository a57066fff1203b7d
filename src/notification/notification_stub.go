//go:build !windows

package notification

import (
	"fmt"
	"log"
	"os"
)

// ShowBlockingError logs a blocking error message on non-Windows platforms.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

// ShowInfo prints message on non-Windows platforms.
func ShowInfo(title, message string) {
	fmt.Fprintf(os.Stdout, "%s\n%s\n", title, message)
}
