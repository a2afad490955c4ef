package pluginkit

import "github.com/trellis-data/pluginkit/discerr"

// Code-level sentinels for the discovery error codes. Use with
// errors.Is() to test what a discovery attempt failed on:
//
//	pkg, err := engine.Discover(ctx, root, name)
//	if errors.Is(err, pluginkit.ErrRequiresRuntimeInspection) {
//		// registration logic is genuinely dynamic
//	}
var (
	// ErrSourceNotFound matches errors where the registration file is
	// missing or ambiguous.
	ErrSourceNotFound = &discerr.Error{Code: discerr.CodeSourceNotFound}

	// ErrRegistrationFunctionNotFound matches errors where the entry
	// point is absent from the located file.
	ErrRegistrationFunctionNotFound = &discerr.Error{Code: discerr.CodeRegistrationFunctionNotFound}

	// ErrUnresolvedSymbol matches errors where a referenced identifier is
	// not importable from the file's import map.
	ErrUnresolvedSymbol = &discerr.Error{Code: discerr.CodeUnresolvedSymbol}

	// ErrRequiresRuntimeInspection matches errors where a value depends
	// on information only the interpreter can observe.
	ErrRequiresRuntimeInspection = &discerr.Error{Code: discerr.CodeRequiresRuntimeInspection}

	// ErrUnknownPluginKind matches errors where a constructor name is
	// outside the closed descriptor set.
	ErrUnknownPluginKind = &discerr.Error{Code: discerr.CodeUnknownPluginKind}

	// ErrStructuralMatchToolFailure matches errors where the external
	// extraction helper failed or timed out.
	ErrStructuralMatchToolFailure = &discerr.Error{Code: discerr.CodeStructuralMatchToolFailure}
)

// TriggersFallback reports whether err should route the package to the
// dynamic discovery path. Every typed discovery error does.
func TriggersFallback(err error) bool {
	return discerr.TriggersFallback(err)
}
