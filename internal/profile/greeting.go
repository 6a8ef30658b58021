package profile

import "fmt"

// InteractionInfo summarizes how long it has been since the user's
// last session, computed from the previous session's time.
type InteractionInfo struct {
	HoursSinceLast int64
	HasHours       bool
	DaysSinceLast  int64
	HasDays        bool
	IsFirstTime    bool
}

// CalculateInteractionInfo derives InteractionInfo from the previous
// session's time (0 meaning "no previous session") and now, both Unix
// seconds.
func CalculateInteractionInfo(lastCapturedAt, now int64) InteractionInfo {
	if lastCapturedAt <= 0 {
		return InteractionInfo{IsFirstTime: true}
	}

	elapsed := now - lastCapturedAt
	if elapsed < 0 {
		elapsed = 0
	}
	hours := elapsed / 3600
	days := hours / 24

	info := InteractionInfo{HoursSinceLast: hours, HasHours: true}
	if days > 0 {
		info.DaysSinceLast = days
		info.HasDays = true
	}
	return info
}

// PersonalizedGreeting renders the first line(s) of the theatre-style
// greeting based on username and interaction history.
func PersonalizedGreeting(username string, info InteractionInfo) []string {
	switch {
	case info.IsFirstTime:
		return []string{
			fmt.Sprintf("Hello %s, welcome to Anna!", username),
			"",
			"I'm your local IT department. Ask me anything about your system -",
			"from disk space to service status, I'm here to help.",
		}
	case info.HasDays && info.DaysSinceLast >= 1:
		word := "days"
		if info.DaysSinceLast == 1 {
			word = "day"
		}
		return []string{
			fmt.Sprintf("Hello %s!", username),
			"",
			fmt.Sprintf("It's been about %d %s since you checked with me!", info.DaysSinceLast, word),
		}
	case info.HasHours && info.HoursSinceLast > 12:
		return []string{
			fmt.Sprintf("Hello %s!", username),
			"",
			fmt.Sprintf("It's been about %d hours since we last spoke.", info.HoursSinceLast),
		}
	case info.HasHours && info.HoursSinceLast > 1:
		return []string{fmt.Sprintf("Hello %s, welcome back.", username)}
	case info.HasHours:
		return []string{fmt.Sprintf("Hello again, %s!", username)}
	default:
		return []string{fmt.Sprintf("Hello %s, welcome back.", username)}
	}
}

const bullet = "›"

// maxPatternsShown caps how many personalized-pattern lines are
// printed, even when more would qualify.
const maxPatternsShown = 3

// personalizedMentionThreshold is the minimum usage count before a
// tool/topic pattern is worth surfacing.
const personalizedMentionThreshold = 2

// UserPatterns renders the "I've noticed..." personalization lines:
// streak, preferred editor, top topic, and top non-editor tool — in
// that order, capped at maxPatternsShown.
func UserPatterns(p *UserProfile) []string {
	if len(p.ToolUsage) == 0 && len(p.TopicInterests) == 0 && p.StreakDays <= 1 {
		return nil
	}

	var patterns []string

	if p.StreakDays > 1 {
		if p.StreakDays >= 7 {
			patterns = append(patterns, fmt.Sprintf("%s 🔥 %d day streak! You're on fire!", bullet, p.StreakDays))
		} else {
			patterns = append(patterns, fmt.Sprintf("%s %d day streak! Keep it going.", bullet, p.StreakDays))
		}
	}

	if p.PreferredEditor != "" {
		if count := p.ToolUsage[p.PreferredEditor]; count > personalizedMentionThreshold {
			patterns = append(patterns, fmt.Sprintf("%s I've noticed you prefer %s (%d mentions).", bullet, p.PreferredEditor, count))
		}
	}

	if topic := p.TopTopic(); topic != "" {
		if count := p.TopicInterests[topic]; count > personalizedMentionThreshold {
			patterns = append(patterns, fmt.Sprintf("%s You ask about %s a lot (%d times).", bullet, topic, count))
		}
	}

	if tool, count := p.TopNonEditorTool(); tool != "" && count > personalizedMentionThreshold {
		patterns = append(patterns, fmt.Sprintf("%s You've been using %s (%d queries).", bullet, tool, count))
	}

	if len(patterns) > maxPatternsShown {
		patterns = patterns[:maxPatternsShown]
	}
	return patterns
}

// ShowSinceLastTime reports whether the "since last time" section
// should render: only once at least two whole hours have passed
// (HoursSinceLast > 1).
func ShowSinceLastTime(info InteractionInfo) bool {
	return info.HasHours && info.HoursSinceLast > 1
}
