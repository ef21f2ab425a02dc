package models

// Entity is implemented by every persisted domain record.
type Entity interface {
	EntityID() string
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
