package campaign

// TurnOrder cycles through the creatures acting in the current area.
type TurnOrder struct {
	ids   []string
	index int
	Round int
}

// Reset replaces the order and starts before the first creature.
func (t *TurnOrder) Reset(ids []string) {
	t.ids = append([]string(nil), ids...)
	t.index = -1
}

// Advance moves to the next creature, starting a new round after the last.
func (t *TurnOrder) Advance() string {
	if len(t.ids) == 0 {
		return ""
	}
	t.index++
	if t.index >= len(t.ids) {
		t.index = 0
		t.Round++
	}
	return t.ids[t.index]
}

// Current returns the creature whose turn it is.
func (t *TurnOrder) Current() string {
	if t.index < 0 || t.index >= len(t.ids) {
		return ""
	}
	return t.ids[t.index]
}

// IDs returns the order.
func (t *TurnOrder) IDs() []string { return append([]string(nil), t.ids...) }
