package cli

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Environment variables holding credentials
const (
	EnvAuthPassword = "APIPROBE_AUTH_PASSWORD"
	EnvAuthToken    = "APIPROBE_AUTH_TOKEN"
)

// Supported --auth-type values
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
	AuthHeader = "header"
)

// BuildAuthHeaders turns the auth flags into headers sent with every request.
// Secrets come from the environment or, when the matching -stdin flag is set, from stdin.
// CLI flags for credentials are not supported so they never show up in process lists.
// A nil map means no authentication was requested.
func BuildAuthHeaders(opts *ConfigOptions, stdin io.Reader) (map[string]string, error) {
	if opts.AuthPasswordStdin && opts.AuthTokenStdin {
		return nil, fmt.Errorf("--auth-password-stdin and --auth-token-stdin are mutually exclusive")
	}

	password := os.Getenv(EnvAuthPassword)
	token := os.Getenv(EnvAuthToken)

	if opts.AuthPasswordStdin {
		secret, err := ReadSecret(stdin, "password")
		if err != nil {
			return nil, err
		}
		password = secret
	}
	if opts.AuthTokenStdin {
		secret, err := ReadSecret(stdin, "token")
		if err != nil {
			return nil, err
		}
		token = secret
	}

	switch opts.AuthType {
	case "":
		if opts.AuthUsername != "" || opts.AuthHeader != "" {
			return nil, fmt.Errorf("--auth-type is required when auth flags are set")
		}
		return nil, nil

	case AuthBasic:
		if opts.AuthUsername == "" {
			return nil, fmt.Errorf("basic auth requires --auth-username")
		}
		if password == "" {
			return nil, fmt.Errorf("basic auth requires a password via %s or --auth-password-stdin", EnvAuthPassword)
		}
		creds := base64.StdEncoding.EncodeToString([]byte(opts.AuthUsername + ":" + password))
		return map[string]string{"Authorization": "Basic " + creds}, nil

	case AuthBearer:
		if token == "" {
			return nil, fmt.Errorf("bearer auth requires a token via %s or --auth-token-stdin", EnvAuthToken)
		}
		return map[string]string{"Authorization": "Bearer " + token}, nil

	case AuthHeader:
		parts := strings.SplitN(opts.AuthHeader, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid auth header format: expected 'Name:Value', got %q", opts.AuthHeader)
		}
		return map[string]string{strings.TrimSpace(parts[0]): strings.TrimSpace(parts[1])}, nil

	default:
		return nil, fmt.Errorf("unknown auth type %q (want %s, %s or %s)", opts.AuthType, AuthBasic, AuthBearer, AuthHeader)
	}
}

// ReadSecret reads a single line for secure credential input.
// Returns an error if the reader is empty or closed without data.
func ReadSecret(r io.Reader, name string) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s from stdin: %w", name, err)
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", fmt.Errorf("%s from stdin is empty", name)
	}
	return trimmed, nil
}
