package user

// IdentityHash is the Jenkins one-at-a-time hash of an id.
// It is used for cheap identity comparison and sharding, never for security.
func IdentityHash(id string) uint32 {
	var h uint32

	for i := 0; i < len(id); i++ {
		h += uint32(id[i])
		h += h << 10
		h ^= h >> 6
	}

	h += h << 3
	h ^= h >> 11
	h += h << 15

	return h
}
