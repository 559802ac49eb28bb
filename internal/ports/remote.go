package ports

import (
	"context"
	"encoding/json"
	"net/url"
)

// FileScheme marks photo paths that point at a file on the device.
const FileScheme = "file://"

// FileRef points a multipart form field at a file on the device.
type FileRef struct {
	Field string
	Path  string
}

// RemoteClient exchanges authenticated requests with the server. Any
// non-success status or transport failure comes back as a typed error from
// the datasync domain package.
type RemoteClient interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	PostWithFiles(ctx context.Context, path string, body any, files []FileRef) (json.RawMessage, error)
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// SessionStore hands out the credential of the signed-in user.
type SessionStore interface {
	Token(ctx context.Context) (string, error)
}

type ConnectionStatus struct {
	IsConnected       bool
	ConnectionType    string
	ConnectionDetails string
}

// ConnectivityChecker fails with a descriptive error when the device is
// offline or the server is unreachable.
type ConnectivityChecker interface {
	Check(ctx context.Context) (ConnectionStatus, error)
}
