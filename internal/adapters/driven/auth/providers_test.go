package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

func TestStaticProvider(t *testing.T) {
	token, err := NewStaticProvider("abc123").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = NewStaticProvider("").Token(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestEnvProvider(t *testing.T) {
	t.Setenv(EnvVar, "  env-token \n")
	token, err := NewEnvProvider().Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	t.Setenv(EnvVar, "")
	_, err = NewEnvProvider().Token(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestNewProvider_Selection(t *testing.T) {
	t.Setenv(EnvVar, "")

	profile := &domain.Profile{PortalToken: "from-profile"}
	assert.IsType(t, &StaticProvider{}, NewProvider(profile))

	t.Setenv(EnvVar, "from-env")
	assert.IsType(t, &EnvProvider{}, NewProvider(&domain.Profile{}))

	t.Setenv(EnvVar, "")
	assert.IsType(t, &PromptProvider{}, NewProvider(&domain.Profile{}))
}
