package bot

import botinternal "bloktris/internal/bot/internal"

// DefaultTuning scores a placement as 10·mobility + outward + 3·size.
var DefaultTuning = botinternal.Weights{
	Mobility: 10,
	Outward:  1,
	Size:     3,
}
