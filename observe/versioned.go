package observe

// Versioned is the contract a version-capable source value type fulfills.
// Detection in the analyzer is structural; any type with this method
// shape participates, not only the containers in this package.
//
// The NoVersion convention: an absent (nil) container reads as version
// NoVersion, which is why the container Version receivers are nil-safe.
type Versioned interface {
	Version() int64
}

// NoVersion is the version reported for an absent container.
const NoVersion int64 = -1
