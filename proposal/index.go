package proposal

// OpenIndex is the unordered set of open proposal IDs. Removal swaps the
// target with the last element and truncates, so order is not stable.
type OpenIndex struct {
	ids []uint64
}

func (x *OpenIndex) Add(id uint64) { x.ids = append(x.ids, id) }

// Remove deletes id and reports whether it was present. Removing an
// absent id is a no-op.
func (x *OpenIndex) Remove(id uint64) bool {
	for i, v := range x.ids {
		if v != id {
			continue
		}
		last := len(x.ids) - 1
		if i != last {
			x.ids[i] = x.ids[last]
		}
		x.ids = x.ids[:last]
		return true
	}
	return false
}

func (x *OpenIndex) Contains(id uint64) bool {
	for _, v := range x.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (x *OpenIndex) Len() int { return len(x.ids) }

// IDs returns a copy of the index in its current order.
func (x *OpenIndex) IDs() []uint64 {
	return append([]uint64{}, x.ids...)
}
