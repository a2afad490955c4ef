package enum

import "sync"

// registry maps enumeration symbol names to member-to-literal tables
var (
	registry = make(map[string]map[string]string)
	mu       sync.RWMutex
)

// Register registers an enumeration symbol and its member literals.
// symbol: the class name as imported in plugin source (e.g. "IOType")
// members: map of member names to the literal they serialize to
// (e.g. {"STDOUT": "stdout"})
//
// Registering the same symbol again merges the member tables, with the
// newer registration winning on conflicts.
func Register(symbol string, members map[string]string) {
	mu.Lock()
	defer mu.Unlock()

	if registry[symbol] == nil {
		registry[symbol] = make(map[string]string)
	}
	for member, literal := range members {
		registry[symbol][member] = literal
	}
}

// RegisterBatch registers several enumerations at once.
func RegisterBatch(symbols map[string]map[string]string) {
	for symbol, members := range symbols {
		Register(symbol, members)
	}
}

// IsEnum reports whether the symbol is a registered enumeration.
func IsEnum(symbol string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := registry[symbol]
	return ok
}

// Lookup returns the serialized literal for one member of a registered
// enumeration. The second return value is false when either the symbol is
// not an enumeration or the member is not registered; use IsEnum to tell
// the two apart.
func Lookup(symbol, member string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()

	members, ok := registry[symbol]
	if !ok {
		return "", false
	}
	literal, ok := members[member]
	return literal, ok
}

// Members returns a copy of the member table for a symbol, or nil when
// the symbol is not registered.
func Members(symbol string) map[string]string {
	mu.RLock()
	defer mu.RUnlock()

	members, ok := registry[symbol]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(members))
	for member, literal := range members {
		out[member] = literal
	}
	return out
}

// Clear resets the entire registry.
// This is primarily useful for testing.
func Clear() {
	mu.Lock()
	defer mu.Unlock()

	registry = make(map[string]map[string]string)
}
