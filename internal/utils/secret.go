package utils

// SecretString wraps a credential so it cannot leak through logging,
// formatting, or JSON encoding. The underlying value is only reachable
// through Reveal, which callers should invoke at the single point of use.
type SecretString struct {
	value string
}

func NewSecretString(value string) SecretString {
	return SecretString{value: value}
}

// Reveal returns the wrapped credential.
func (s SecretString) Reveal() string {
	return s.value
}

func (s SecretString) String() string {
	return "[REDACTED]"
}

func (s SecretString) GoString() string {
	return "utils.SecretString{value:\"[REDACTED]\"}"
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
