package encryption

// Result represents the outcome of processing a single file.
type Result struct {
	// Input file path
	Input string

	// Output file path
	Output string

	// Output file size in bytes
	OutputSize int64

	// Skipped is set when the file was never started because the context was done.
	Skipped bool

	// Any error that occurred during processing
	Error error
}

// Summary totals the results of a batch.
type Summary struct {
	Processed int
	Errored   int
	Skipped   int
	// TotalSize is the combined size of all outputs in bytes.
	TotalSize int64
}
