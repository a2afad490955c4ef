// Package enum provides a global registry of enumeration symbols and the
// literal each member serializes to.
//
// The static discovery path cannot import a plugin's modules, so when a
// constructor argument reads an attribute off an imported symbol (for
// example a mode selector like IOType.STDOUT) the resolver has to know,
// without executing code, that the symbol is an enumeration and what its
// members serialize as. This registry carries exactly that knowledge.
//
// Register an enumeration and its members:
//
//	enum.Register("IOType", map[string]string{
//	    "STDIN":  "stdin",
//	    "STDOUT": "stdout",
//	    "BOTH":   "both",
//	})
//
// Resolve a member access:
//
//	literal, ok := enum.Lookup("IOType", "STDOUT")
//	// literal == "stdout", ok == true
//
// # Thread Safety
//
// All operations are safe for concurrent use. The registry uses
// sync.RWMutex; registration happens once at engine start and lookups
// dominate afterwards.
//
// # Unknown Members
//
// Lookup distinguishes an unknown enumeration from a known enumeration
// with an unknown member via IsEnum. The resolver treats the former as an
// ordinary symbol and the latter as a case needing runtime inspection.
package enum
