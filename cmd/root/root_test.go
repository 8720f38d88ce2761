package root

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/internal/config"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "statement-import", Cmd.Use)
	assert.Contains(t, Cmd.Short, "Import bank statements")
	assert.NotNil(t, Cmd.PersistentPreRunE)
}

func TestRootCommand_Flags(t *testing.T) {
	if Cmd.PersistentFlags().Lookup("tenant") == nil {
		Init()
	}
	for _, name := range []string{"config", "tenant", "user", "ledger", "categories", "log-level", "json"} {
		assert.NotNil(t, Cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "t", Cmd.PersistentFlags().Lookup("tenant").Shorthand)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, ApplyFlagOverrides(cfg, CommonFlags{
		LedgerPath:     "/tmp/x.db",
		CategoriesFile: "cats.yaml",
		LogLevel:       "debug",
	}))
	assert.Equal(t, "/tmp/x.db", cfg.Data.LedgerPath)
	assert.Equal(t, "cats.yaml", cfg.Data.CategoriesFile)
	assert.Equal(t, "debug", cfg.Log.Level)

	unchanged := config.Default()
	require.NoError(t, ApplyFlagOverrides(unchanged, CommonFlags{}))
	assert.Equal(t, config.Default().Data.LedgerPath, unchanged.Data.LedgerPath)

	assert.Error(t, ApplyFlagOverrides(config.Default(), CommonFlags{LogLevel: "loud"}))
}

func TestRequireTenant(t *testing.T) {
	saved := SharedFlags
	defer func() { SharedFlags = saved }()

	SharedFlags.TenantID = ""
	_, err := RequireTenant()
	assert.Error(t, err)

	SharedFlags.TenantID = "acme"
	tenant, err := RequireTenant()
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant)
}
