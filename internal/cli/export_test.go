package cli

// Exports for black-box tests.

var (
	ClampParallel        = clampParallel
	SupportedFormatsList = supportedFormatsList
)
