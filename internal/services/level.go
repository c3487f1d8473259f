package services

import "greenquest/internal/models"

// levelThreshold is one rung of the level ladder. A user qualifies for
// a level by meeting ANY of its thresholds.
type levelThreshold struct {
	Level   int
	Waste   float64
	Reports int
	Points  int
}

// levelLadder is ordered from highest level to lowest; the first rung
// the snapshot satisfies wins.
var levelLadder = []levelThreshold{
	{Level: 5, Waste: 1000, Reports: 100, Points: 5000},
	{Level: 4, Waste: 500, Reports: 50, Points: 2500},
	{Level: 3, Waste: 200, Reports: 25, Points: 1000},
	{Level: 2, Waste: 50, Reports: 10, Points: 250},
}

// LevelFor computes the level a progress snapshot qualifies for. It is
// a pure function of the snapshot: same input, same output, no I/O.
func LevelFor(p *models.ProgressSnapshot) int {
	for _, t := range levelLadder {
		if p.WasteCollected >= t.Waste ||
			p.ReportsSubmitted >= t.Reports ||
			p.PointsEarned >= t.Points {
			return t.Level
		}
	}
	return 1
}

// MaxLevel is the top of the ladder
const MaxLevel = 5
