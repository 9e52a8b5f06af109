package models

// AddID appends id to ids when it is not already present and reports whether ids changed.
func AddID(ids []uint, id uint) ([]uint, bool) {
	for _, existing := range ids {
		if existing == id {
			return ids, false
		}
	}
	return append(ids, id), true
}

// RemoveID drops every occurrence of id and reports whether ids changed.
func RemoveID(ids []uint, id uint) ([]uint, bool) {
	out := ids[:0:0]
	removed := false
	for _, existing := range ids {
		if existing == id {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	if !removed {
		return ids, false
	}
	return out, true
}

// UniqueIDs returns ids without duplicates, keeping first-seen order.
func UniqueIDs(ids ...[]uint) []uint {
	seen := make(map[uint]struct{})
	out := make([]uint, 0)
	for _, group := range ids {
		for _, id := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
