package render

import (
	"fmt"
	"os"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/profile"
)

// Progress reports annactl's own status lines to stderr, independent
// of whatever the daemon returns on stdout.
type Progress struct {
	enabled bool
	start   time.Time
}

// NewProgress creates a Progress reporter. Set enabled=false for
// --quiet/--json mode, where stderr chatter would pollute scripted use.
func NewProgress(enabled bool) *Progress {
	return &Progress{enabled: enabled, start: time.Now()}
}

// Log prints a progress message to stderr if enabled.
func (p *Progress) Log(format string, args ...interface{}) {
	if !p.enabled {
		return
	}
	elapsed := time.Since(p.start).Round(time.Millisecond)
	fmt.Fprintf(os.Stderr, "[%s] %s\n", elapsed, fmt.Sprintf(format, args...))
}

// Greeting renders the theatre-style session-start banner plus any
// personalized patterns the profile has accumulated.
func Greeting(username string, info profile.InteractionInfo, p *profile.UserProfile) string {
	lines := profile.PersonalizedGreeting(username, info)
	lines = append(lines, profile.UserPatterns(p)...)
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
