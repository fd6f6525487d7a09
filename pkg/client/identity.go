package client

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadOperatorToken reads an operator bearer token written by
// 'custodyctl token --save'. Surrounding whitespace is ignored.
func LoadOperatorToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", errors.New("token file is empty")
	}
	return tok, nil
}

// NewFromTokenFile creates a Client authenticated with the operator token
// stored at path. Additional options are applied after the token.
func NewFromTokenFile(registryBase, path string, opts ...Option) (*Client, error) {
	tok, err := LoadOperatorToken(path)
	if err != nil {
		return nil, err
	}
	return New(registryBase, append([]Option{WithBearerToken(tok)}, opts...)...)
}
