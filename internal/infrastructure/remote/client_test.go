package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/ports"
)

func newTestClient(t *testing.T, router http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseURL:    server.URL + "/api",
		AppVersion: "2.4.0",
		UserAgent:  "fieldcheck-test",
	}, NewStaticSession("secret-token", ""))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestPostSendsCredentialsAndBody(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/equipe-turnos", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad token " + got})
			return
		}
		if got := r.Header.Get("X-App-Version"); got != "2.4.0" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing version"})
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": 99, "uuid": body["uuid"]})
	})
	client := newTestClient(t, router)

	raw, err := client.Post(context.Background(), "/equipe-turnos", map[string]any{"uuid": "s-1"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["uuid"] != "s-1" {
		t.Fatalf("Post() response = %s", raw)
	}
}

func TestPostMapsErrorResponses(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/message", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "team is inactive"})
	})
	router.Post("/api/error", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
	})
	router.Post("/api/html", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})
	client := newTestClient(t, router)

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/message", http.StatusUnprocessableEntity, "team is inactive"},
		{"/error", http.StatusBadRequest, "invalid date"},
		{"/html", http.StatusBadGateway, datasync.GenericTransferMessage},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			_, err := client.Post(context.Background(), tc.path, map[string]any{})
			var transfer *datasync.TransferError
			if !errors.As(err, &transfer) {
				t.Fatalf("Post() error = %v, want *TransferError", err)
			}
			if transfer.Status != tc.status || transfer.Message != tc.message {
				t.Fatalf("TransferError = %d %q, want %d %q", transfer.Status, transfer.Message, tc.status, tc.message)
			}
		})
	}
}

func TestPostUpdateRequired(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/checklist-realizados", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUpgradeRequired, map[string]string{
			"description":  "Install the new release",
			"url":          "https://example.test/app.apk",
			"version_name": "3.0.0",
		})
	})
	client := newTestClient(t, router)

	_, err := client.Post(context.Background(), "/checklist-realizados", map[string]any{})
	var update *datasync.UpdateRequiredError
	if !errors.As(err, &update) {
		t.Fatalf("Post() error = %v, want *UpdateRequiredError", err)
	}
	if update.VersionName != "3.0.0" || update.URL != "https://example.test/app.apk" {
		t.Fatalf("UpdateRequiredError = %#v", update)
	}
	if !datasync.IsFatalToBatch(err) {
		t.Fatal("update required must be fatal to the batch")
	}
}

func TestPostWithFilesSendsMultipart(t *testing.T) {
	photo := filepath.Join(t.TempDir(), "item-5.jpg")
	if err := os.WriteFile(photo, []byte("jpeg-bytes"), 0o600); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	router := chi.NewRouter()
	router.Post("/api/checklist-realizados", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(r.FormValue("data")), &data); err != nil || data["uuid"] != "c-1" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad data field"})
			return
		}
		file, header, err := r.FormFile("fotos[5]")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing photo"})
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		writeJSON(w, http.StatusOK, map[string]any{"name": header.Filename, "size": len(content)})
	})
	client := newTestClient(t, router)

	raw, err := client.PostWithFiles(context.Background(), "/checklist-realizados",
		map[string]any{"uuid": "c-1"},
		[]ports.FileRef{{Field: "fotos[5]", Path: ports.FileScheme + photo}},
	)
	if err != nil {
		t.Fatalf("PostWithFiles() error = %v", err)
	}
	var resp struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "item-5.jpg" || resp.Size != len("jpeg-bytes") {
		t.Fatalf("PostWithFiles() response = %s", raw)
	}
}

func TestPostWithFilesMissingFileIsTransferError(t *testing.T) {
	var hits atomic.Int32
	router := chi.NewRouter()
	router.Post("/api/checklist-realizados", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	client := newTestClient(t, router)

	_, err := client.PostWithFiles(context.Background(), "/checklist-realizados", map[string]any{},
		[]ports.FileRef{{Field: "fotos[1]", Path: "file:///does/not/exist.jpg"}})
	var transfer *datasync.TransferError
	if !errors.As(err, &transfer) {
		t.Fatalf("PostWithFiles() error = %v, want *TransferError", err)
	}
	if datasync.IsFatalToBatch(err) {
		t.Fatal("a missing attachment must stay isolated to its record")
	}
	if hits.Load() != 0 {
		t.Fatalf("server hits = %d, want 0", hits.Load())
	}
}

func TestGetUnwrapsDataEnvelope(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/equipes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": 1, "nome": "Team A", "centro_custo_id": r.URL.Query().Get("centro_custo_id")}},
		})
	})
	router.Get("/api/cidades", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 2, "nome": "Recife"}})
	})
	client := newTestClient(t, router)

	raw, err := client.Get(context.Background(), "/equipes", url.Values{"centro_custo_id": {"3"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var teams []map[string]any
	if err := json.Unmarshal(raw, &teams); err != nil {
		t.Fatalf("decode teams: %v (%s)", err, raw)
	}
	if len(teams) != 1 || teams[0]["centro_custo_id"] != "3" {
		t.Fatalf("Get() = %s", raw)
	}

	raw, err = client.Get(context.Background(), "cidades", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var cities []map[string]any
	if err := json.Unmarshal(raw, &cities); err != nil || len(cities) != 1 {
		t.Fatalf("Get() bare array = %s, err=%v", raw, err)
	}
}

func TestStaticSession(t *testing.T) {
	ctx := context.Background()

	if _, err := NewStaticSession("", "").Token(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Token() error = %v, want ErrNoSession", err)
	}

	tokenFile := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenFile, []byte(" from-file \n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}
	token, err := NewStaticSession("from-config", tokenFile).Token(ctx)
	if err != nil || token != "from-file" {
		t.Fatalf("Token() = %q, %v", token, err)
	}
}

func TestMissingSessionFailsBeforeReachingServer(t *testing.T) {
	var hits atomic.Int32
	router := chi.NewRouter()
	router.Post("/api/x", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL + "/api"}, NewStaticSession("", ""))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = client.Post(context.Background(), "/x", map[string]any{})
	var transfer *datasync.TransferError
	if !errors.As(err, &transfer) || !errors.Is(err, ErrNoSession) {
		t.Fatalf("Post() error = %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("server hits = %d, want 0", hits.Load())
	}
}
