package nn

import (
	"errors"
	"fmt"
	"os"
)

// Severity controls how a failed dependency probe is reported.
type Severity int

const (
	// SeverityNone suppresses reporting; callers use BackendAvailable.
	SeverityNone Severity = iota
	// SeverityWarning prints a warning and continues.
	SeverityWarning
	// SeverityError turns the missing entry into an error.
	SeverityError
)

// ErrMissingDependency is wrapped by CheckBackend when a registry entry
// an estimator relies on has been removed.
var ErrMissingDependency = errors.New("missing dependency")

// requiredEntries are the registry entries the stock estimators resolve
// at build time. Removing any of them leaves the framework unable to
// compile a default model.
var requiredEntries = []struct {
	kind string
	name string
	ok   func(string) bool
}{
	{"loss", "mean_squared_error", func(n string) bool { _, ok := lossRegistry[n]; return ok }},
	{"optimizer", "adam", func(n string) bool { _, ok := optimizerRegistry[n]; return ok }},
	{"metric", "accuracy", func(n string) bool { _, ok := metricRegistry[n]; return ok }},
	{"activation", "linear", func(n string) bool { _, ok := activationRegistry[n]; return ok }},
	{"activation", "sigmoid", func(n string) bool { _, ok := activationRegistry[n]; return ok }},
}

// CheckBackend probes the framework registries for the entries default
// model construction needs. With SeverityError the first missing entry
// is returned as an error naming it; with SeverityWarning it is printed
// to stderr; with SeverityNone the probe is silent.
func CheckBackend(sev Severity) error {
	for _, e := range requiredEntries {
		if e.ok(e.name) {
			continue
		}
		switch sev {
		case SeverityError:
			return fmt.Errorf("%w: %s %q is not registered", ErrMissingDependency, e.kind, e.name)
		case SeverityWarning:
			fmt.Fprintf(os.Stderr, "warning: %s %q is not registered\n", e.kind, e.name)
		}
	}
	return nil
}

// BackendAvailable reports whether all required registry entries are
// present.
func BackendAvailable() bool {
	for _, e := range requiredEntries {
		if !e.ok(e.name) {
			return false
		}
	}
	return true
}
