package observe

// Epsilon thresholds for floating-point dirty-checks. A change is
// reported only when the delta strictly exceeds the epsilon.
const (
	EpsilonF32 = 1e-6
	EpsilonF64 = 1e-9
)

// DriftF32 reports whether cur moved away from old by more than EpsilonF32.
// Generic over named float types so generated comparisons need no
// conversion at the call site.
func DriftF32[F ~float32](old, cur F) bool {
	d := cur - old
	return d > EpsilonF32 || d < -EpsilonF32
}

// DriftF64 reports whether cur moved away from old by more than EpsilonF64.
func DriftF64[F ~float64](old, cur F) bool {
	d := cur - old
	return d > EpsilonF64 || d < -EpsilonF64
}

// PtrChanged compares two nullable values by content, treating nil as a
// distinct state.
func PtrChanged[T comparable](old, cur *T) bool {
	if (old == nil) != (cur == nil) {
		return true
	}
	return old != nil && *old != *cur
}

// ClonePtr snapshots a nullable value so later mutation through the live
// pointer cannot silently update the cache.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
