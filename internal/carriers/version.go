package carriers

// Version changes whenever a built-in pattern table or recognizer changes
// what it extracts. Cached scans from another version are not reused.
const Version = "2"

// Versioned is implemented by recognizers whose output depends on
// configuration that the concrete type alone does not capture
type Versioned interface {
	Version() string
}
