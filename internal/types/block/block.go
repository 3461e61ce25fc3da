package block

// Block is a life-domain category used to group actions, habits and tasks.
type Block string

const (
	BlockHealth        Block = "HEALTH"
	BlockWork          Block = "WORK"
	BlockDevelopment   Block = "DEVELOPMENT"
	BlockRelationships Block = "RELATIONSHIPS"
	BlockFinance       Block = "FINANCE"
	BlockSpirituality  Block = "SPIRITUALITY"
	BlockBrightness    Block = "BRIGHTNESS"
	BlockHome          Block = "HOME"
)

// All lists the blocks in display order.
var All = []Block{
	BlockHealth,
	BlockWork,
	BlockDevelopment,
	BlockRelationships,
	BlockFinance,
	BlockSpirituality,
	BlockBrightness,
	BlockHome,
}

func (b Block) IsValid() bool {
	for _, known := range All {
		if b == known {
			return true
		}
	}
	return false
}

// DefaultCaps are the weekly XP targets per block used by the weekly balance
// view when a user has not configured their own.
var DefaultCaps = map[Block]int{
	BlockHealth:        100,
	BlockWork:          120,
	BlockDevelopment:   80,
	BlockRelationships: 60,
	BlockFinance:       60,
	BlockSpirituality:  60,
	BlockBrightness:    60,
	BlockHome:          80,
}
