package terminal

import (
	"os"
)

// HasTTY reports whether the shell is interactive: both stdin and stdout are
// terminals. The prompt is only shown in that case.
func HasTTY() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// IsTerminal reports whether file is a character device
func IsTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
