package corrector

// CorrectionMap maps validated 1-based local indices to corrected text.
// Keys outside [1, batchLen] are rejected at insert time, so lookups during
// reconciliation can never land outside the batch.
type CorrectionMap struct {
	batchLen int
	entries  map[int]string
}

// NewCorrectionMap creates an empty map bounded by the batch length
func NewCorrectionMap(batchLen int) *CorrectionMap {
	return &CorrectionMap{
		batchLen: batchLen,
		entries:  make(map[int]string),
	}
}

// Set records corrected text for a local index, overwriting any earlier
// value (last occurrence wins). Returns false for out-of-range indices.
func (m *CorrectionMap) Set(index int, text string) bool {
	if index < 1 || index > m.batchLen {
		return false
	}
	m.entries[index] = text
	return true
}

// Get returns the corrected text for a local index, if any
func (m *CorrectionMap) Get(index int) (string, bool) {
	text, ok := m.entries[index]
	return text, ok
}

// Len returns the number of recorded corrections
func (m *CorrectionMap) Len() int {
	return len(m.entries)
}
