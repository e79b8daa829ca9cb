package ingest

// Missing-value policies.
const (
	PolicyDrop = "drop"
	PolicyFail = "fail"
)

// Option applies a configuration option to the loader.
type Option func(*loader)

// WithHeadRows sets how many raw records are kept for the sample dump.
func WithHeadRows(n int) Option {
	return func(l *loader) {
		if n >= 0 {
			l.headRows = n
		}
	}
}

// WithMissingPolicy selects what happens to rows with missing values.
// Unknown policies are ignored.
func WithMissingPolicy(policy string) Option {
	return func(l *loader) {
		if policy == PolicyDrop || policy == PolicyFail {
			l.policy = policy
		}
	}
}

// WithComma sets the field delimiter.
func WithComma(r rune) Option {
	return func(l *loader) {
		if r != 0 {
			l.comma = r
		}
	}
}
