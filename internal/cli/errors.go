package cli

import "errors"

// CLI-specific sentinel errors: validation/usage errors that don't
// belong to a domain package.
var (
	// ErrProjectFlagRequired indicates a command needing an existing
	// project was run without --project.
	ErrProjectFlagRequired = errors.New("--project is required")

	// ErrNoUncastSpeakers indicates review-export/suggest found nothing
	// left to cast.
	ErrNoUncastSpeakers = errors.New("no uncast speakers")

	// ErrUnknownSourceFormat indicates `new` was given a file this
	// module has no parser for.
	ErrUnknownSourceFormat = errors.New("unsupported source format")
)
