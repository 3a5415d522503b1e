package models

// Contains reports whether id is present in ids.
func Contains(ids []string, id string) bool {
	return IndexOf(ids, id) >= 0
}

// IndexOf returns the position of id in ids, or -1.
func IndexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Prepend returns a new slice with id in front of ids.
func Prepend(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, id)
	return append(out, ids...)
}

// Remove returns a new slice without the first occurrence of id. The second
// result is false when id was not present.
func Remove(ids []string, id string) ([]string, bool) {
	i := IndexOf(ids, id)
	if i < 0 {
		return ids, false
	}
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...), true
}

// Clone copies ids, turning nil into an empty slice.
func Clone(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
