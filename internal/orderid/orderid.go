// Package orderid generates human-legible order references of the form
// ORD-<unix millis>-<6 base36 chars>.
package orderid

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

const (
	prefix       = "ORD-"
	suffixLength = 6
	alphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Generator hands out ids whose timestamp part strictly increases within
// the process. The random suffix separates ids minted by other processes.
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
	intn func(int) int
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now, intn: rand.IntN}
}

func (g *Generator) New() string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = alphabet[g.intn(len(alphabet))]
	}
	return prefix + strconv.FormatInt(ms, 10) + "-" + string(suffix)
}

var defaultGenerator = NewGenerator()

// New returns a fresh order id from the process-wide generator.
func New() string {
	return defaultGenerator.New()
}
