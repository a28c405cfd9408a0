package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Log       LogConfig       `yaml:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AnalyzerConfig holds settings for the external morphological analyzer
// service (the LatinCy/Stanza sidecar).
type AnalyzerConfig struct {
	BaseURL string        `yaml:"base_url" env:"ANALYZER_BASE_URL" env-default:"http://localhost:8090"`
	Timeout time.Duration `yaml:"timeout"  env:"ANALYZER_TIMEOUT"  env-default:"30s"`
}

// IngestConfig holds text ingestion settings.
type IngestConfig struct {
	// ResolveRetries bounds the automatic retry of a resolution that lost a
	// concurrent provisional-entry creation race.
	ResolveRetries int  `yaml:"resolve_retries" env:"INGEST_RESOLVE_RETRIES" env-default:"3"`
	RenderTrees    bool `yaml:"render_trees"    env:"INGEST_RENDER_TREES"    env-default:"true"`
}

// ReconcileConfig holds consolidation settings.
type ReconcileConfig struct {
	// LockKey is the advisory lock key serializing reconciliation passes.
	LockKey int64 `yaml:"lock_key" env:"RECONCILE_LOCK_KEY" env-default:"74201"`
	DryRun  bool  `yaml:"dry_run"  env:"RECONCILE_DRY_RUN"  env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
