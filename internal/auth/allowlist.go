// Package auth handles SSH public key authentication via allowlist.
package auth

import (
	"bytes"
	"errors"
	"os"

	"golang.org/x/crypto/ssh"
)

// ErrAllowlistNotFound is returned when the allowlist file doesn't exist.
var ErrAllowlistNotFound = errors.New("allowlist file not found")

// LoadAllowlist reads an OpenSSH authorized_keys format file and returns
// the parsed public keys. Blank lines, comments, and unparseable lines are
// skipped.
func LoadAllowlist(path string) ([]ssh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAllowlistNotFound
		}
		return nil, err
	}

	var keys []ssh.PublicKey
	rest := data
	for len(bytes.TrimSpace(rest)) > 0 {
		key, _, _, remaining, err := ssh.ParseAuthorizedKey(rest)
		if err != nil {
			// Drop the offending line and keep going.
			i := bytes.IndexByte(rest, '\n')
			if i < 0 {
				break
			}
			rest = rest[i+1:]
			continue
		}
		keys = append(keys, key)
		rest = remaining
	}

	return keys, nil
}

// IsKeyAllowed checks if the given public key is in the allowlist by
// fingerprint.
func IsKeyAllowed(key ssh.PublicKey, allowlist []ssh.PublicKey) bool {
	if key == nil {
		return false
	}

	fp := ssh.FingerprintSHA256(key)
	for _, allowed := range allowlist {
		if ssh.FingerprintSHA256(allowed) == fp {
			return true
		}
	}
	return false
}

// CreateEmptyAllowlist creates an empty allowlist file with a helpful comment.
func CreateEmptyAllowlist(path string) error {
	content := `# SSH Public Key Allowlist
# Add one public key per line in OpenSSH authorized_keys format.
# Example:
# ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIExample... operator@host
`
	return os.WriteFile(path, []byte(content), 0644)
}
