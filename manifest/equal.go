package manifest

import (
	"encoding/json"
	"reflect"

	"github.com/trellis-data/pluginkit/discerr"
)

// JSONEqual reports whether two JSON documents are semantically equal:
// object key order is irrelevant, array order is significant. This is the
// comparison the oracle tests use to check the static manifest against the
// dynamic path's output.
func JSONEqual(a, b []byte) (bool, error) {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false, err
	}
	return reflect.DeepEqual(av, bv), nil
}

// Verify compares a statically produced manifest against the dynamic
// path's serialization of the same package. A disagreement is a
// SCHEMA_MISMATCH discovery error. Validation-time only: the engine never
// calls this at runtime.
func Verify(packageName string, static, dynamic []byte) error {
	equal, err := JSONEqual(static, dynamic)
	if err != nil {
		return discerr.New(packageName, "verify", discerr.CodeSchemaMismatch,
			"manifest is not comparable").WithCause(err)
	}
	if !equal {
		return discerr.New(packageName, "verify", discerr.CodeSchemaMismatch,
			"static manifest disagrees with dynamic output")
	}
	return nil
}
