package connectivity

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"fieldcheck/internal/domain/datasync"
)

func newProbeServer(t *testing.T, status int) *httptest.Server {
	t.Helper()

	router := chi.NewRouter()
	router.Head("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestCheckReachableServer(t *testing.T) {
	server := newProbeServer(t, http.StatusNoContent)
	checker, err := NewChecker(Options{BaseURL: server.URL + "/api", ProbePath: "/ping"})
	if err != nil {
		t.Fatalf("NewChecker() error = %v", err)
	}
	checker.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
			{Name: "wlan0", Flags: net.FlagUp},
		}, nil
	}

	status, err := checker.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !status.IsConnected || status.ConnectionType != TypeWiFi {
		t.Fatalf("Check() = %#v", status)
	}
}

func TestCheckWithoutActiveInterface(t *testing.T) {
	server := newProbeServer(t, http.StatusOK)
	checker, err := NewChecker(Options{BaseURL: server.URL + "/api", ProbePath: "ping"})
	if err != nil {
		t.Fatalf("NewChecker() error = %v", err)
	}
	checker.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{{Name: "lo", Flags: net.FlagUp | net.FlagLoopback}, {Name: "eth0"}}, nil
	}

	_, err = checker.Check(context.Background())
	var connErr *datasync.ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("Check() error = %v, want *ConnectivityError", err)
	}
	if connErr.Reason != "no active network interface" {
		t.Fatalf("reason = %q", connErr.Reason)
	}
}

func TestCheckServerFailures(t *testing.T) {
	server := newProbeServer(t, http.StatusServiceUnavailable)
	checker, err := NewChecker(Options{BaseURL: server.URL + "/api", ProbePath: "/ping", SkipInterfaceCheck: true})
	if err != nil {
		t.Fatalf("NewChecker() error = %v", err)
	}
	if _, err := checker.Check(context.Background()); !isConnectivityError(err) {
		t.Fatalf("Check() 503 error = %v", err)
	}

	server.Close()
	if _, err := checker.Check(context.Background()); !isConnectivityError(err) {
		t.Fatalf("Check() closed server error = %v", err)
	}
}

func TestCheckTreatsClientErrorsAsReachable(t *testing.T) {
	server := newProbeServer(t, http.StatusUnauthorized)
	checker, err := NewChecker(Options{BaseURL: server.URL + "/api", ProbePath: "/ping", SkipInterfaceCheck: true})
	if err != nil {
		t.Fatalf("NewChecker() error = %v", err)
	}
	status, err := checker.Check(context.Background())
	if err != nil || !status.IsConnected {
		t.Fatalf("Check() = %#v, %v", status, err)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"wlan0":  TypeWiFi,
		"eth0":   TypeEthernet,
		"enp3s0": TypeEthernet,
		"rmnet0": TypeCellular,
		"tun0":   TypeOther,
	}
	for name, want := range cases {
		if got := classify(name); got != want {
			t.Fatalf("classify(%q) = %q, want %q", name, got, want)
		}
	}
}

func isConnectivityError(err error) bool {
	var connErr *datasync.ConnectivityError
	return errors.As(err, &connErr)
}
