package eventlog

// Aggregated is the derived statistics block computed from a Log's
// records: request counts, reliability/duration averages, and the
// XP/level/title the terminal renders.
type Aggregated struct {
	TotalRequests       uint64
	FirstEventTs        int64
	LastEventTs         int64
	VerifiedCount       uint64
	FailedCount         uint64
	TimeoutCount        uint64
	ClarificationCount  uint64
	EscalationCount     uint64
	AvgReliability      float64
	AvgDurationMs       float64
	MinDurationMs       uint64
	MaxDurationMs       uint64
	ByTeam              map[string]uint64
	MostEscalatedTeam   string
	RecipesUsed         uint64
	RecipesLearned      uint64
	XP                  uint64
	Level               uint32
	Title               string
}

// levelTitles is the fixed ten-level title table; anything above
// level 10 gets the terminal title.
var levelTitles = [...]string{
	1:  "Apprentice Troubleshooter",
	2:  "Help Desk Hero",
	3:  "System Sleuth",
	4:  "Diagnostic Detective",
	5:  "Performance Prophet",
	6:  "Infrastructure Sage",
	7:  "Uptime Guardian",
	8:  "Reliability Wizard",
	9:  "System Architect",
	10: "IT Grandmaster",
}

const terminalTitle = "Grandmaster of Uptime"

// Aggregate re-derives statistics from records, never mutating them.
func Aggregate(records []Record) Aggregated {
	agg := Aggregated{ByTeam: map[string]uint64{}}

	if len(records) == 0 {
		agg.Title = levelTitles[1]
		return agg
	}

	agg.TotalRequests = uint64(len(records))
	var minDuration uint64 = ^uint64(0)
	var firstTs int64 = 1<<63 - 1
	var lastTs int64

	var totalReliability uint64
	var totalDuration uint64
	escalationsByTeam := map[string]uint64{}

	for _, r := range records {
		if r.Timestamp < firstTs {
			firstTs = r.Timestamp
		}
		if r.Timestamp > lastTs {
			lastTs = r.Timestamp
		}

		switch r.Outcome {
		case Verified:
			agg.VerifiedCount++
		case Failed:
			agg.FailedCount++
		case Timeout:
			agg.TimeoutCount++
		case Clarification:
			agg.ClarificationCount++
		}

		if r.Escalated {
			agg.EscalationCount++
			escalationsByTeam[r.Team]++
		}

		totalReliability += uint64(r.Reliability)
		totalDuration += r.DurationMs
		if r.DurationMs < minDuration {
			minDuration = r.DurationMs
		}
		if r.DurationMs > agg.MaxDurationMs {
			agg.MaxDurationMs = r.DurationMs
		}

		agg.ByTeam[r.Team]++

		if r.RecipeUsed != "" {
			agg.RecipesUsed++
		}
		if r.RecipeLearned != "" {
			agg.RecipesLearned++
		}
	}

	agg.AvgReliability = float64(totalReliability) / float64(agg.TotalRequests)
	agg.AvgDurationMs = float64(totalDuration) / float64(agg.TotalRequests)
	if minDuration == ^uint64(0) {
		minDuration = 0
	}
	agg.MinDurationMs = minDuration
	agg.FirstEventTs = firstTs
	agg.LastEventTs = lastTs

	var bestTeam string
	var bestCount uint64
	for team, count := range escalationsByTeam {
		if count > bestCount {
			bestTeam, bestCount = team, count
		}
	}
	agg.MostEscalatedTeam = bestTeam

	agg.XP = computeXP(agg)
	agg.Level = xpToLevel(agg.XP)
	agg.Title = levelTitle(agg.Level)

	return agg
}

func computeXP(agg Aggregated) uint64 {
	requestXP := agg.TotalRequests * 10

	var successRate float64
	if agg.TotalRequests > 0 {
		successRate = float64(agg.VerifiedCount) / float64(agg.TotalRequests)
	}
	successBonus := uint64(successRate * 100.0 * float64(agg.TotalRequests))

	reliabilityBonus := uint64(agg.AvgReliability * float64(agg.TotalRequests))

	recipeBonus := agg.RecipesLearned*50 + agg.RecipesUsed*10

	return requestXP + successBonus + reliabilityBonus + recipeBonus
}

// xpToLevel implements the fixed XP band table (100/300/600/1000/
// 2000/4000/8000/16000/32000/64000) mapping to levels 1-11.
func xpToLevel(xp uint64) uint32 {
	switch {
	case xp < 100:
		return 1
	case xp < 300:
		return 2
	case xp < 600:
		return 3
	case xp < 1000:
		return 4
	case xp < 2000:
		return 5
	case xp < 4000:
		return 6
	case xp < 8000:
		return 7
	case xp < 16000:
		return 8
	case xp < 32000:
		return 9
	case xp < 64000:
		return 10
	default:
		return 11
	}
}

func levelTitle(level uint32) string {
	if int(level) < len(levelTitles) && level > 0 {
		return levelTitles[level]
	}
	return terminalTitle
}
