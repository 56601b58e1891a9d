package pipeline

// Exports for black-box tests.

var WithNow = withNow
