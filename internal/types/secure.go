package types

// secretPlaceholder replaces secret values in logs and serialized output.
const secretPlaceholder = "***REDACTED***"

var secretPlaceholderJSON = []byte(`"***REDACTED***"`)

// SecretString holds a sensitive value (API key, connection string) and
// prevents it from leaking through fmt functions or JSON encoding by
// overriding String() and MarshalJSON() with a redacted placeholder.
//
// Call Unmask() only at the point the plaintext is genuinely required,
// such as building an Authorization header or opening a database pool.
type SecretString string

// String returns the redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return secretPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string so secrets
// never appear in config dumps or structured log entries.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return secretPlaceholderJSON, nil
}

// Unmask returns the raw plaintext value.
func (s SecretString) Unmask() string {
	return string(s)
}

// IsSet reports whether the secret has a non-empty value.
func (s SecretString) IsSet() bool {
	return len(s) > 0
}
