package domain

// Friendship is a symmetric relation between two users. It is stored as an
// unordered pair; Canonical gives the storage orientation so both lookups
// resolve to the same record.
type Friendship struct {
	UserA string
	UserB string
}

// Canonical orders the pair lexicographically.
func (f Friendship) Canonical() Friendship {
	if f.UserB < f.UserA {
		return Friendship{UserA: f.UserB, UserB: f.UserA}
	}
	return f
}
