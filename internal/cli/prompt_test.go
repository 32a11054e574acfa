package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordPrompt_Resolve(t *testing.T) {
	notTTY, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = notTTY.Close() })

	env := map[string]string{}
	p := &PasswordPrompt{
		In:  notTTY,
		Out: os.Stderr,
		Lookup: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
	}

	t.Run("Flag wins", func(t *testing.T) {
		env[PasswordEnv] = "from-env"
		defer delete(env, PasswordEnv)

		pw, err := p.Resolve("from-flag", "Password")
		require.NoError(t, err)
		assert.Equal(t, "from-flag", pw)
	})

	t.Run("Environment", func(t *testing.T) {
		env[PasswordEnv] = "from-env"
		defer delete(env, PasswordEnv)

		pw, err := p.Resolve("", "Password")
		require.NoError(t, err)
		assert.Equal(t, "from-env", pw)
	})

	t.Run("No terminal", func(t *testing.T) {
		_, err := p.Resolve("", "Password")
		assert.ErrorIs(t, err, ErrPasswordRequired)
	})
}
