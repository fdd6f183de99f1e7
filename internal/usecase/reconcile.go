package usecase

// ReconcileResult partitions an incoming collection against the stored one.
type ReconcileResult[T any] struct {
	Create []T
	Update []T
	Delete []T
}

// Reconcile diffs incoming against existing by the identity returned by key.
// Incoming items without an identity, or with one that is not stored, are
// created. Items with an identity present in both are updated. Stored items
// the request no longer mentions are deleted. Repeated identities in incoming
// are updated once, first occurrence wins.
func Reconcile[T any](existing, incoming []T, key func(T) string) ReconcileResult[T] {
	stored := make(map[string]T, len(existing))
	for _, item := range existing {
		stored[key(item)] = item
	}

	var result ReconcileResult[T]
	kept := make(map[string]bool, len(incoming))
	for _, item := range incoming {
		id := key(item)
		if id == "" {
			result.Create = append(result.Create, item)
			continue
		}
		if _, ok := stored[id]; !ok {
			result.Create = append(result.Create, item)
			continue
		}
		if kept[id] {
			continue
		}
		kept[id] = true
		result.Update = append(result.Update, item)
	}

	for _, item := range existing {
		if !kept[key(item)] {
			result.Delete = append(result.Delete, item)
		}
	}
	return result
}
