package particles

// OwnedMask marks the indices held by live bursts for the current frame.
// It is rebuilt once per frame before the steady pass and only read during it.
type OwnedMask struct {
	owned []bool
	list  []int
}

// NewOwnedMask creates a mask over n particles.
func NewOwnedMask(n int) *OwnedMask {
	return &OwnedMask{owned: make([]bool, n)}
}

// Reset clears only the indices marked since the last reset.
func (m *OwnedMask) Reset() {
	for _, i := range m.list {
		m.owned[i] = false
	}
	m.list = m.list[:0]
}

// Mark flags index i as owned.
func (m *OwnedMask) Mark(i int) {
	if !m.owned[i] {
		m.owned[i] = true
		m.list = append(m.list, i)
	}
}

// Owned reports whether index i is held by a live burst.
func (m *OwnedMask) Owned(i int) bool { return m.owned[i] }

// Count returns the number of marked indices.
func (m *OwnedMask) Count() int { return len(m.list) }

// CountBelow returns how many marked indices are below n.
func (m *OwnedMask) CountBelow(n int) int {
	c := 0
	for _, i := range m.list {
		if i < n {
			c++
		}
	}
	return c
}
