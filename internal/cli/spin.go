package cli

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// startSpinner shows a progress spinner on stderr while the API call runs.
// In non-interactive use (pipes, hooks, CI) it is a no-op so stdout stays
// machine-readable. Returns a stop function.
func startSpinner(suffix string) func() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}
