package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procoachmastery/website/internal/appid"
)

func TestAppIdentityLoading(t *testing.T) {
	t.Run("built-in identity", func(t *testing.T) {
		identity, err := appid.Get(context.Background())
		require.NoError(t, err)
		require.NotNil(t, identity)

		expectedFields := map[string]string{
			"Vendor":     identity.Vendor,
			"BinaryName": identity.BinaryName,
			"EnvPrefix":  identity.EnvPrefix,
			"ConfigName": identity.ConfigName,
		}
		for fieldName, value := range expectedFields {
			assert.NotEmpty(t, value, "app identity field %s", fieldName)
		}

		assert.True(t, strings.HasSuffix(identity.EnvPrefix, "_"), "env prefix %q should end with underscore", identity.EnvPrefix)
	})

	t.Run("help text follows identity", func(t *testing.T) {
		identity := GetAppIdentity()
		applyIdentityToHelp(identity)

		assert.Equal(t, identity.BinaryName, rootCmd.Use)
		assert.Contains(t, rootCmd.Long, identity.Description)
		assert.Contains(t, rootCmd.PersistentFlags().Lookup("config").Usage, identity.ConfigName)
	})
}
