// Package appid provides the application identity used for help text,
// config paths, the env prefix and the telemetry namespace.
package appid

import (
	"context"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/appidentity"
)

const (
	Vendor      = "procoachmastery"
	BinaryName  = "procoach"
	EnvPrefix   = "PROCOACH_"
	ConfigName  = "procoach"
	Description = "Pro Coach Mastery website and form intake service"
)

// Default returns the built-in identity. Each call returns a fresh copy.
func Default() *appidentity.Identity {
	return &appidentity.Identity{
		Vendor:      Vendor,
		BinaryName:  BinaryName,
		EnvPrefix:   EnvPrefix,
		ConfigName:  ConfigName,
		Description: Description,
	}
}

// Get returns the identity named by FULMEN_APP_IDENTITY_PATH when set,
// and the built-in identity otherwise.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	if strings.TrimSpace(os.Getenv(appidentity.EnvIdentityPath)) != "" {
		return appidentity.Get(ctx)
	}
	return Default(), nil
}
