package cacheaside

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths; wrap slow sinks with hooks/async.
type Hooks interface {
	// A typed read found (Hit) or did not find (Miss) an entry.
	Hit(storageKey string)
	Miss(storageKey string)

	// A computed value was written back after a miss.
	Populated(storageKey string)

	// A computed value was returned without being written.
	// reason ∈ {"zero_value", "disabled"}
	PopulateSkipped(storageKey, reason string)

	// A populate call joined a concurrent in-flight computation and shared its
	// result. The caller that started the computation is not counted.
	Coalesced(storageKey string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// The provider failed; the error is returned to the caller unchanged.
	// op ∈ {"get", "set", "del"}
	StoreError(op, storageKey string, err error)

	// A stored entry could not be decoded into the value type.
	DecodeError(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                       {}
func (NopHooks) Miss(string)                      {}
func (NopHooks) Populated(string)                 {}
func (NopHooks) PopulateSkipped(string, string)   {}
func (NopHooks) Coalesced(string)                 {}
func (NopHooks) ProviderSetRejected(string)       {}
func (NopHooks) StoreError(string, string, error) {}
func (NopHooks) DecodeError(string, error)        {}
