package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/assistant"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_ShoppingSession(t *testing.T) {
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "file")
	t.Setenv("STOREFRONT_STORAGE_PATH", filepath.Join(t.TempDir(), "store.json"))
	t.Setenv("STOREFRONT_LOG_LEVEL", "error")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "20 products")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	out, err = run(t, "login", "--role", "customer", "--name", "Mary Jane")
	require.NoError(t, err)
	assert.Contains(t, out, "maryjane@example.com")

	_, err = run(t, "cart", "add", "prod-1")
	require.NoError(t, err)
	out, err = run(t, "cart", "add", "prod-1")
	require.NoError(t, err)
	assert.Contains(t, out, "prod-1")

	out, err = run(t, "checkout", "--payment", "nagad")
	require.NoError(t, err)
	assert.Contains(t, out, "ORD-")

	out, err = run(t, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")

	out, err = run(t, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "nagad")

	_, err = run(t, "logout")
	require.NoError(t, err)
	_, err = run(t, "orders")
	assert.Error(t, err)
}

func TestChatLoop_KeepsTranscript(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)

	ai := assistant.NewService(nil, 0, nil)
	require.NoError(t, chatLoop(cmd, ai, strings.NewReader("hello\n\nanything cheap?\n")))
	assert.Equal(t, 2, strings.Count(out.String(), assistant.OfflineText))
}

func TestInit_WritesConfigWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("STOREFRONT_LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "conf", "storefront.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", path, "init"})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shipping_fee: 60")
	assert.NotContains(t, string(data), "secret")

	rootCmd.SetArgs([]string{"--config", path, "init"})
	assert.ErrorContains(t, rootCmd.Execute(), "already exists")
}
