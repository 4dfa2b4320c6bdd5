package domain

// LabelTable maps classifier labels to member keys and back. It is the exact
// inverse of the registry ordering used for training.
type LabelTable struct {
	keys   []string
	labels map[string]int
}

func newLabelTable(keys []string) *LabelTable {
	t := &LabelTable{
		keys:   make([]string, len(keys)),
		labels: make(map[string]int, len(keys)),
	}
	copy(t.keys, keys)
	for i, k := range t.keys {
		t.labels[k] = i
	}
	return t
}

// Key decodes a classifier label
func (t *LabelTable) Key(label int) (string, bool) {
	if t == nil || label < 0 || label >= len(t.keys) {
		return "", false
	}
	return t.keys[label], true
}

// Label encodes a member key
func (t *LabelTable) Label(key string) (int, bool) {
	if t == nil {
		return 0, false
	}
	label, ok := t.labels[key]
	return label, ok
}

func (t *LabelTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}
