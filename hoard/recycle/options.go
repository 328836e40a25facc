package recycle

import (
	"fmt"
	"strings"

	"github.com/joshuapare/hoardkit/hoard/superblock"
	"github.com/joshuapare/hoardkit/internal/mmap"
)

const (
	// DefaultBatchCount is how many superblocks one refill maps.
	DefaultBatchCount = 16

	// DefaultMaxFree is how many idle superblocks a Pool keeps.
	DefaultMaxFree = 64
)

// Mode selects the recycling strategy.
type Mode int

const (
	// ModePooled caches idle superblocks in a capped Pool.
	ModePooled Mode = iota
	// ModeDirect maps and unmaps on every call.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModePooled:
		return "pooled"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "pooled" or "direct" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pooled", "pool":
		return ModePooled, nil
	case "direct", "none":
		return ModeDirect, nil
	default:
		return 0, fmt.Errorf("recycle: unknown mode %q (want pooled or direct)", s)
	}
}

// Options configures a Manager. The zero value is a pooled manager with
// default batch size and cap, mapping from the operating system.
type Options struct {
	Mode       Mode
	BatchCount int               // Superblocks mapped per refill. Default: DefaultBatchCount
	MaxFree    int               // Idle superblocks retained. Default: DefaultMaxFree
	Mapper     superblock.Mapper // Default: mmap.Default
}

func (o Options) withDefaults() Options {
	if o.BatchCount <= 0 {
		o.BatchCount = DefaultBatchCount
	}
	if o.MaxFree <= 0 {
		o.MaxFree = DefaultMaxFree
	}
	if o.Mapper == nil {
		o.Mapper = mmap.Default
	}
	return o
}
