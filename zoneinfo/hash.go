package zoneinfo

// ZoneID computes the 32-bit Jenkins one-at-a-time hash of a zone's
// canonical name, used as the registry's binary-search sort key (spec.md
// §3, §4.5). The algorithm is specified exactly enough by spec.md and the
// GLOSSARY that it is implemented directly from the textbook definition
// rather than adapted from any particular source file.
func ZoneID(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h += uint32(name[i])
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}
