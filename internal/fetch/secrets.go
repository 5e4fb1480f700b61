// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TokenFile is the secrets file holding the bearer token for the response API.
	TokenFile = "response-api-token"

	// TokenEnv overrides TokenFile when set.
	TokenEnv = "SCIEXTRACT_RESPONSE_API_TOKEN"
)

// Token returns the response API bearer token. TokenEnv wins over TokenFile
// in dir. A leading "Bearer " is dropped so either form can be stored. An
// empty result means requests go out unauthenticated.
func Token(dir string) (string, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnv))
	if token == "" && dir != "" {
		secrets, err := LoadSecrets(dir)
		if err != nil {
			return "", err
		}
		token = secrets[TokenFile]
	}
	if len(token) > len("Bearer ") && strings.EqualFold(token[:len("Bearer ")], "Bearer ") {
		token = strings.TrimSpace(token[len("Bearer "):])
	}
	return token, nil
}

// LoadSecrets reads all files in dir and returns a map of filename to
// trimmed contents. A missing directory is not an error; LoadSecrets returns
// an empty map. Dotfiles, subdirectories, and empty files are ignored.
func LoadSecrets(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading secret %s: %w", name, err)
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
