package role

import "github.com/storefront/server/internal/model"

// Merge overlays metadata layers left to right; later layers win on key
// collisions. Nil layers are skipped and no input is mutated.
func Merge(layers ...model.Metadata) model.Metadata {
	out := make(model.Metadata)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// Stamp returns a layer holding only the role claim.
func Stamp(r Role) model.Metadata {
	return model.Metadata{MetadataKey: r.String()}
}
