package meal

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces FoodItem ids. Ids are opaque to the store.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator returns time-sortable UUIDv7 strings, so items created later
// sort after earlier ones when listed by id.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate panics only if the system random source fails.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedIDGenerator returns predetermined ids in order, for tests and golden
// output.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that hands out ids in order.
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate panics once the ids run out so a miscounted test fails loudly.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
