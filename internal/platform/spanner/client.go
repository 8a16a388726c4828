// Package spanner connects the order ledger to Cloud Spanner and carries
// ledger transactions through context.
package spanner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/spanner"
)

// Config names the ledger database.
type Config struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
}

// Database returns the fully qualified database name.
func (c Config) Database() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s",
		c.ProjectID, c.InstanceID, c.DatabaseID)
}

func (c Config) validate() error {
	var errs []error
	if c.ProjectID == "" {
		errs = append(errs, errors.New("project id is required"))
	}
	if c.InstanceID == "" {
		errs = append(errs, errors.New("instance id is required"))
	}
	if c.DatabaseID == "" {
		errs = append(errs, errors.New("database id is required"))
	}
	return errors.Join(errs...)
}

// NewClient opens a client for the ledger database. SPANNER_EMULATOR_HOST is
// honoured by the client library itself. Callers close the client.
func NewClient(ctx context.Context, cfg Config) (*spanner.Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("spanner config: %w", err)
	}
	client, err := spanner.NewClient(ctx, cfg.Database())
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", cfg.Database(), err)
	}
	return client, nil
}

// UsingEmulator reports whether the client library will dial a local emulator.
func UsingEmulator() bool {
	return os.Getenv("SPANNER_EMULATOR_HOST") != ""
}
