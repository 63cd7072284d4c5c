package appid

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/appidentity"
)

func TestGet_BuiltInIdentity(t *testing.T) {
	t.Setenv(appidentity.EnvIdentityPath, "")

	identity, err := Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if identity.BinaryName != "procoach" {
		t.Fatalf("BinaryName = %q", identity.BinaryName)
	}
	if !strings.HasSuffix(identity.EnvPrefix, "_") {
		t.Fatalf("expected env prefix to end with underscore, got %q", identity.EnvPrefix)
	}
	if identity.ConfigName == "" || identity.Vendor == "" {
		t.Fatalf("expected config name and vendor to be set: %+v", identity)
	}
}

func TestDefault_ReturnsCopy(t *testing.T) {
	first := Default()
	first.BinaryName = "changed"

	if Default().BinaryName != BinaryName {
		t.Fatalf("Default shares state between calls")
	}
}

func TestGet_EnvVarRemainsAuthoritative(t *testing.T) {
	appidentity.Reset()
	t.Cleanup(func() { appidentity.Reset() })

	missing := filepath.Join(t.TempDir(), "missing-app.yaml")
	t.Setenv(appidentity.EnvIdentityPath, missing)

	_, err := Get(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}

	var notFound *appidentity.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}
