package connectivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldcheck/internal/bootstrap/logging"
	"fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
)

const (
	TypeWiFi     = "wifi"
	TypeEthernet = "ethernet"
	TypeCellular = "cellular"
	TypeOther    = "other"
	TypeUnknown  = "unknown"
)

type Options struct {
	BaseURL            string
	ProbePath          string
	Timeout            time.Duration
	SkipInterfaceCheck bool
}

// Checker answers "can a sync start now": some network interface is up and
// the server answers a probe.
type Checker struct {
	probeURL       string
	skipInterfaces bool
	client         *http.Client
	interfaces     func() ([]net.Interface, error)
}

var _ ports.ConnectivityChecker = (*Checker)(nil)

func NewChecker(opts Options) (*Checker, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, errors.New("connectivity probe requires a base url")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, errs.Wrapf(err, "parse probe base url %q", base)
	}
	if path := strings.TrimSpace(opts.ProbePath); path != "" {
		parsed = parsed.JoinPath(strings.TrimPrefix(path, "/"))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Checker{
		probeURL:       parsed.String(),
		skipInterfaces: opts.SkipInterfaceCheck,
		client:         &http.Client{Timeout: timeout},
		interfaces:     net.Interfaces,
	}, nil
}

func (c *Checker) Check(ctx context.Context) (ports.ConnectionStatus, error) {
	if ctx == nil {
		return ports.ConnectionStatus{}, errors.New("context is required")
	}
	logCtx := logging.WithComponent(ctx, "connectivity.checker")

	status := ports.ConnectionStatus{ConnectionType: TypeUnknown}
	if !c.skipInterfaces {
		kind, name, err := c.activeInterface()
		if err != nil {
			return status, err
		}
		status.ConnectionType = kind
		status.ConnectionDetails = name
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.probeURL, nil)
	if err != nil {
		return status, errs.Wrap(err, "build probe request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		logging.Warn(logCtx, "server probe failed", slog.String("url", c.probeURL), logging.Err(err))
		return status, &datasync.ConnectivityError{Reason: "server is unreachable", Err: err}
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return status, &datasync.ConnectivityError{
			Reason: fmt.Sprintf("server answered the probe with status %d", resp.StatusCode),
		}
	}

	status.IsConnected = true
	if status.ConnectionDetails == "" {
		status.ConnectionDetails = c.probeURL
	} else {
		status.ConnectionDetails += " -> " + c.probeURL
	}
	return status, nil
}

func (c *Checker) activeInterface() (string, string, error) {
	ifaces, err := c.interfaces()
	if err != nil {
		return "", "", &datasync.ConnectivityError{Reason: "network interfaces could not be listed", Err: err}
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		return classify(iface.Name), iface.Name, nil
	}
	return "", "", &datasync.ConnectivityError{Reason: "no active network interface"}
}

func classify(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "wl"), strings.HasPrefix(lower, "wifi"):
		return TypeWiFi
	case strings.HasPrefix(lower, "eth"), strings.HasPrefix(lower, "en"):
		return TypeEthernet
	case strings.HasPrefix(lower, "ww"), strings.HasPrefix(lower, "rmnet"), strings.HasPrefix(lower, "ccmni"):
		return TypeCellular
	default:
		return TypeOther
	}
}
