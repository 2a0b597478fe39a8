package console

import (
	"fmt"
	"sync"

	"github.com/eugenenazirov/quality-control/internal/inspection"
)

// Notices buffers ledger events until the console renders them.
type Notices struct {
	mu    sync.Mutex
	items []string
}

// NewNotices returns an empty buffer.
func NewNotices() *Notices {
	return &Notices{}
}

// Handle is an inspection.EventHandler.
func (n *Notices) Handle(e inspection.Event) {
	var line string
	switch e.Kind {
	case inspection.EventBoxClosed:
		line = fmt.Sprintf("BOX %d CLOSED (capacity: %d pieces)", e.Box, inspection.BoxCapacity)
	case inspection.EventClosedBoxAltered:
		line = fmt.Sprintf("WARNING: piece %s removed from CLOSED box %d, which now holds %d/%d pieces",
			e.PieceID, e.Box, e.Population, inspection.BoxCapacity)
	default:
		return
	}

	n.mu.Lock()
	n.items = append(n.items, line)
	n.mu.Unlock()
}

// Drain returns and clears the buffered notices.
func (n *Notices) Drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}
