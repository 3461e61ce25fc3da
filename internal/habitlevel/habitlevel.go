package habitlevel

// Info describes a habit's mastery band for a lifetime completion count.
type Info struct {
	Level          int     `json:"level"`
	Title          string  `json:"title"`
	MinCompletions int     `json:"min_completions"`
	MaxCompletions int     `json:"max_completions"`
	Progress       float64 `json:"progress"`
	XPMultiplier   float64 `json:"xp_multiplier"`
}

type band struct {
	level int
	title string
	min   int
	max   int // -1 marks the open-ended top band
}

var bands = []band{
	{1, "Beginner", 0, 6},
	{2, "Apprentice", 7, 20},
	{3, "Regular", 21, 49},
	{4, "Committed", 50, 99},
	{5, "Dedicated", 100, 199},
	{6, "Master", 200, 364},
	{7, "Legend", 365, -1},
}

// GetHabitLevel maps a lifetime completion count onto the 7-band curve.
// The multiplier grows 0.1 per level, so level 1 pays 1.1x and level 7 pays 1.7x.
func GetHabitLevel(totalCompletions int) Info {
	if totalCompletions < 0 {
		totalCompletions = 0
	}

	for _, b := range bands {
		if b.max != -1 && totalCompletions > b.max {
			continue
		}

		progress := 1.0
		if b.max != -1 {
			rangeSize := b.max - b.min + 1
			progress = float64(totalCompletions-b.min) / float64(rangeSize)
			if progress > 1 {
				progress = 1
			}
		}

		return Info{
			Level:          b.level,
			Title:          b.title,
			MinCompletions: b.min,
			MaxCompletions: b.max,
			Progress:       progress,
			XPMultiplier:   1 + float64(b.level)*0.1,
		}
	}

	top := bands[len(bands)-1]
	return Info{
		Level:          top.level,
		Title:          top.title,
		MinCompletions: top.min,
		MaxCompletions: -1,
		Progress:       1,
		XPMultiplier:   1.7,
	}
}
