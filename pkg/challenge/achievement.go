package challenge

import "time"

// Achievement identifies an unlockable award.
type Achievement string

const (
	FirstGrep     Achievement = "first_grep"
	CaseMaster    Achievement = "case_master"
	RegexRookie   Achievement = "regex_rookie"
	ContextKing   Achievement = "context_king"
	SpeedDemon    Achievement = "speed_demon"
	Perfectionist Achievement = "perfectionist"
	GrepMaster    Achievement = "grep_master"
)

// SpeedDemonTime is the solve time under which SpeedDemon unlocks.
const SpeedDemonTime = 30 * time.Second

// AchievementInfo describes an achievement for display.
type AchievementInfo struct {
	ID          Achievement
	Name        string
	Description string
}

// Achievements lists every achievement in display order.
var Achievements = []AchievementInfo{
	{FirstGrep, "First Grep", "Execute your first grep command"},
	{CaseMaster, "Case Master", "Master case-insensitive searching"},
	{RegexRookie, "Regex Rookie", "Use your first regular expression"},
	{ContextKing, "Context King", "Use context lines effectively"},
	{SpeedDemon, "Speed Demon", "Complete a challenge in under 30 seconds"},
	{Perfectionist, "Perfectionist", "Complete a level without using hints"},
	{GrepMaster, "Grep Master", "Complete all challenges"},
}

// Info returns the display information for a.
func (a Achievement) Info() AchievementInfo {
	for _, info := range Achievements {
		if info.ID == a {
			return info
		}
	}
	return AchievementInfo{ID: a, Name: string(a)}
}
