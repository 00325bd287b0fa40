package models

import "time"

// Config represents the application configuration
type Config struct {
	Store      StoreConfig
	Database   DatabaseConfig
	Formance   FormanceConfig
	Reconciler ReconcilerConfig
	Session    SessionConfig
}

// StoreConfig selects the entity store backend ("sqlite" or "formance")
type StoreConfig struct {
	Backend string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// FormanceConfig holds Formance Stack settings for the remote document store
type FormanceConfig struct {
	StackURL        string
	ClientID        string
	ClientSecret    string
	LedgerName      string
	PollingInterval time.Duration
}

// ReconcilerConfig holds background reconciliation settings
type ReconcilerConfig struct {
	Enabled      bool
	AutoPayDelay time.Duration
	Timezone     string
}

// SessionConfig holds guest persistence and seeding settings
type SessionConfig struct {
	GuestDataFile  string
	CategoriesFile string
}
