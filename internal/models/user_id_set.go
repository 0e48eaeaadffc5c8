package models

// UserIDSet is a set of user IDs. It is stored as a BSON array and only ever
// mutated through $addToSet/$pull (or With/Without in memory), so it never
// holds duplicates.
type UserIDSet []uint

// Len returns the number of members.
func (s UserIDSet) Len() int { return len(s) }

// Contains reports whether id is a member.
func (s UserIDSet) Contains(id uint) bool {
	for _, member := range s {
		if member == id {
			return true
		}
	}
	return false
}

// With returns the set with id added and whether it was missing before.
func (s UserIDSet) With(id uint) (UserIDSet, bool) {
	if s.Contains(id) {
		return s, false
	}
	out := make(UserIDSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, id), true
}

// Without returns the set with id removed and whether it was present.
func (s UserIDSet) Without(id uint) (UserIDSet, bool) {
	for i, member := range s {
		if member == id {
			out := make(UserIDSet, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...), true
		}
	}
	return s, false
}
