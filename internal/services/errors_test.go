package services_test

import (
	"errors"
	"strings"
	"testing"

	"shorepull/internal/services"
)

func TestWrapCarriesMarker(t *testing.T) {
	cause := errors.New("connection reset")
	err := services.Wrap(services.ErrTransport, "discovery", "list date directory", "/archive/2023-04-01", cause)

	if !errors.Is(err, services.ErrTransport) {
		t.Fatal("expected wrapped error to match its marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to retain its cause")
	}
	msg := err.Error()
	for _, fragment := range []string{"discovery", "list date directory", "/archive/2023-04-01", "connection reset"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("error message missing %q: %s", fragment, msg)
		}
	}
}

func TestFatal(t *testing.T) {
	persistence := services.Wrap(services.ErrPersistence, "routing", "mark pulled", "54321", errors.New("database is locked"))
	if !services.Fatal(persistence) {
		t.Fatal("persistence failures are fatal")
	}

	transport := services.Wrap(services.ErrTransport, "fetch", "get", "a.tar.gz", errors.New("timeout"))
	if services.Fatal(transport) {
		t.Fatal("transport failures are not fatal")
	}
	if services.Fatal(nil) {
		t.Fatal("nil is not fatal")
	}
}
