// Package auth supplies bearer tokens for the portal. The token is
// captured out of band by the operator (the portal's login flow involves
// a CAPTCHA); authentication itself is never performed here.
package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// EnvVar is the environment variable consulted by the env provider.
const EnvVar = "HOADON_TOKEN"

// Ensure providers implement the TokenProvider interface.
var (
	_ driven.TokenProvider = (*StaticProvider)(nil)
	_ driven.TokenProvider = (*EnvProvider)(nil)
	_ driven.TokenProvider = (*PromptProvider)(nil)
)

// StaticProvider returns a fixed token from the profile.
type StaticProvider struct {
	token string
}

// NewStaticProvider creates a provider returning the given token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// Token returns the configured token.
func (p *StaticProvider) Token(context.Context) (string, error) {
	if p.token == "" {
		return "", domain.ErrAuthRequired
	}
	return p.token, nil
}

// EnvProvider reads the token from the environment.
type EnvProvider struct{}

// NewEnvProvider creates a provider reading from HOADON_TOKEN.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Token returns the token from the environment.
func (p *EnvProvider) Token(context.Context) (string, error) {
	token := strings.TrimSpace(os.Getenv(EnvVar))
	if token == "" {
		return "", fmt.Errorf("%w: %s is not set", domain.ErrAuthRequired, EnvVar)
	}
	return token, nil
}

// PromptProvider asks the operator for the token on the terminal, once,
// with echo disabled. The token is held for the life of the process.
type PromptProvider struct {
	mu    sync.Mutex
	token string
}

// NewPromptProvider creates an interactive token provider.
func NewPromptProvider() *PromptProvider {
	return &PromptProvider{}
}

// Token prompts for the token on first call and caches it.
func (p *PromptProvider) Token(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		return p.token, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: stdin is not a terminal", domain.ErrAuthRequired)
	}

	fmt.Fprint(os.Stderr, "Portal bearer token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", domain.ErrAuthRequired
	}
	p.token = token
	return token, nil
}

// NewProvider picks the token source: profile first, then environment,
// then an interactive prompt.
func NewProvider(profile *domain.Profile) driven.TokenProvider {
	if profile != nil && profile.PortalToken != "" {
		return NewStaticProvider(profile.PortalToken)
	}
	if strings.TrimSpace(os.Getenv(EnvVar)) != "" {
		return NewEnvProvider()
	}
	return NewPromptProvider()
}
