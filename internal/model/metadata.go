package model

// Metadata is the free-form key/value mapping carried by users and invites.
// It is persisted as a jsonb column and may hold keys owned by other modules.
type Metadata map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Has reports whether key is present with a non-nil value.
func (m Metadata) Has(key string) bool {
	if m == nil {
		return false
	}
	v, ok := m[key]
	return ok && v != nil
}
