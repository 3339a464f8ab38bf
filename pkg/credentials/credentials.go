// Package credentials reads the GitHub login secrets from the process
// environment at the moment a login is attempted.
//
// Values are held only for the duration of one attempt. The password is
// wrapped in Secret so that formatting, JSON encoding and slog output all
// render a placeholder instead of the value.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Default environment variable names.
const (
	DefaultUsernameEnv = "GITHUB_USERNAME"
	DefaultPasswordEnv = "GITHUB_PASSWORD"
)

// RedactedPlaceholder replaces secret values in any rendered output.
const RedactedPlaceholder = "***REDACTED***"

// ErrMissing is matched by errors.Is for any MissingError.
var ErrMissing = errors.New("credentials missing")

// EnvNames names the variables holding the username and password.
type EnvNames struct {
	Username string
	Password string
}

// DefaultEnvNames returns GITHUB_USERNAME / GITHUB_PASSWORD.
func DefaultEnvNames() EnvNames {
	return EnvNames{Username: DefaultUsernameEnv, Password: DefaultPasswordEnv}
}

// WithDefaults fills empty names with the defaults.
func (n EnvNames) WithDefaults() EnvNames {
	if n.Username == "" {
		n.Username = DefaultUsernameEnv
	}
	if n.Password == "" {
		n.Password = DefaultPasswordEnv
	}
	return n
}

// Secret is a string that never prints its value.
type Secret string

// Reveal returns the raw value. Only the code filling the form calls it.
func (s Secret) Reveal() string { return string(s) }

func (s Secret) String() string { return RedactedPlaceholder }

func (s Secret) GoString() string { return RedactedPlaceholder }

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + RedactedPlaceholder + `"`), nil
}

func (s Secret) LogValue() slog.Value { return slog.StringValue(RedactedPlaceholder) }

// Credentials is one username/password pair.
type Credentials struct {
	Username string
	Password Secret
}

// MissingError lists the environment variables that were unset or blank.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variable(s): %s", strings.Join(e.Vars, ", "))
}

func (e *MissingError) Is(target error) bool {
	return target == ErrMissing
}

// Load reads both values through lookup. Blank values count as missing.
func Load(lookup func(string) (string, bool), names EnvNames) (Credentials, error) {
	names = names.WithDefaults()

	var missing []string
	username, ok := lookup(names.Username)
	if !ok || strings.TrimSpace(username) == "" {
		missing = append(missing, names.Username)
	}
	password, ok := lookup(names.Password)
	if !ok || password == "" {
		missing = append(missing, names.Password)
	}
	if len(missing) > 0 {
		return Credentials{}, &MissingError{Vars: missing}
	}

	return Credentials{
		Username: strings.TrimSpace(username),
		Password: Secret(password),
	}, nil
}

// FromEnv reads both values from the process environment.
func FromEnv(names EnvNames) (Credentials, error) {
	return Load(os.LookupEnv, names)
}
