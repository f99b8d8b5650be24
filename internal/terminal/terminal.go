// Package terminal holds the few raw escape-sequence helpers the TUI
// needs outside of its rendering library.
package terminal

import "os"

// Capabilities describes what the hosting terminal can do.
type Capabilities struct {
	SupportsRGB bool
	TermProgram string
}

func DetectCapabilities() *Capabilities {
	caps := &Capabilities{
		TermProgram: os.Getenv("TERM_PROGRAM"),
	}

	switch os.Getenv("COLORTERM") {
	case "truecolor", "24bit":
		caps.SupportsRGB = true
	default:
		// most modern emulators handle RGB even without advertising it
		caps.SupportsRGB = os.Getenv("COLORTERM") == "" && os.Getenv("TERM") != "linux"
	}

	return caps
}

// Reset restores cursor, colors, and screen state after an abnormal
// exit, when the TUI teardown did not get a chance to run.
func Reset() {
	os.Stdout.WriteString("\033[?25h")
	os.Stdout.WriteString("\033[0m")
	os.Stdout.WriteString("\033[?1049l")
	os.Stdout.WriteString("\033[?1000l")
	os.Stdout.WriteString("\033[?1002l")
	os.Stdout.WriteString("\033[?1003l")
	os.Stdout.WriteString("\033[?1006l")
	os.Stdout.Sync()
}
