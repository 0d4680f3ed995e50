package orderid

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	Prefix      = "FD-"
	MaxAttempts = 12
)

// Generator produces short human-readable order ids such as FD-4821.
// Ids are unique with respect to the used set passed to Next.
type Generator struct {
	intN func(n int) int
	now  func() time.Time
}

func New() *Generator {
	return &Generator{intN: rand.IntN, now: time.Now}
}

// NewWithSource is used by tests to make candidates and the fallback deterministic.
func NewWithSource(intN func(n int) int, now func() time.Time) *Generator {
	return &Generator{intN: intN, now: now}
}

// Next tries MaxAttempts four-digit candidates and falls back to the current
// epoch milliseconds when all of them collide, stepping forward past any
// millisecond id already in used.
func (g *Generator) Next(used map[string]struct{}) string {
	for range MaxAttempts {
		candidate := fmt.Sprintf("%s%d", Prefix, 1000+g.intN(9000))
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}

	for millis := g.now().UnixMilli(); ; millis++ {
		candidate := fmt.Sprintf("%s%d", Prefix, millis)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}
