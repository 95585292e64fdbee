package types

// Address is an SS58-encoded chain address.
type Address string

// String returns the string form of the address.
func (a Address) String() string { return string(a) }

// Short returns a truncated form of the address suitable for display and logs.
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// Prefix returns the first n characters of the address.
func (a Address) Prefix(n int) string {
	s := string(a)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
