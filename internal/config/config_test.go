package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalink/ledger/internal/types"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, types.ModeLocal, cfg.Deployment.Mode)
	assert.True(t, decimal.NewFromInt(3).Equal(cfg.Credit.DefaultInterestRate))
	assert.Equal(t, 30, cfg.Credit.DefaultNetTerms)
	assert.True(t, decimal.RequireFromString("0.01").Equal(cfg.Rewards.PointValue))
	assert.Equal(t, types.CacheTypeInMemory, cfg.Cache.Type)
	assert.Equal(t, 3, cfg.Invoice.NumberMaxAttempts)
	assert.Equal(t, "15s", cfg.Server.ReadTimeout.String())
}

func TestNewConfig_EnvOverride(t *testing.T) {
	t.Setenv("LEDGER_CREDIT_DEFAULT_INTEREST_RATE", "2.5")
	t.Setenv("LEDGER_PENALTY_MAX_WORKERS", "2")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("2.5").Equal(cfg.Credit.DefaultInterestRate))
	assert.Equal(t, 2, cfg.Penalty.MaxWorkers)
}

func TestValidate_RejectsBadNetTerms(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	cfg.Credit.DefaultNetTerms = 10
	assert.Error(t, cfg.Validate())
}
