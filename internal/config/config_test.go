package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	cfg := fromViper()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Risk.WasteWindowMonths)
	assert.Equal(t, 8, cfg.Risk.WasteConcurrency)
	assert.Equal(t, 0.5, cfg.Risk.NeutralStorageRisk)
	assert.Equal(t, 3, cfg.Risk.AlertHorizonDays)
	assert.Equal(t, 30*time.Second, cfg.Risk.BatchTimeout())
	assert.False(t, cfg.Cache.Enabled)
	assert.Empty(t, cfg.Storage.Endpoint)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromViperEnvOverride(t *testing.T) {
	viper.Reset()
	setDefaults()
	t.Setenv("RISK_WASTE_WINDOW_MONTHS", "6")
	t.Setenv("RISK_BATCH_TIMEOUT_SECONDS", "0")
	viper.AutomaticEnv()

	cfg := fromViper()

	assert.Equal(t, 6, cfg.Risk.WasteWindowMonths)
	assert.Zero(t, cfg.Risk.BatchTimeout())
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
