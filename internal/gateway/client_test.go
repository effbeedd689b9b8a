package gateway

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/bootstrap"
	"simple-notes-be/internal/config"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fiberTransport serves requests straight from a fiber app without a socket.
type fiberTransport struct {
	app *fiber.App
}

func (t fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}

func newAppClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{
			CorsAllowedOrigins: "*",
			MaxUploadBytes:     1024 * 1024,
		},
		Database: config.DatabaseConfig{Backend: "local"},
		Local:    config.LocalStorageConfig{Engine: "cache"},
		Events:   config.EventsConfig{Topic: "NOTE_EVENTS"},
	}
	sysLogger := logger.NewNopLogger()

	backend, err := bootstrap.NewStorageBackend(cfg, sysLogger)
	require.NoError(t, err)
	container := bootstrap.NewContainer(backend, cfg, sysLogger)
	t.Cleanup(func() { _ = container.Close() })

	app := server.New(cfg, container).GetApp()
	return NewClient(Config{
		BaseURL:    "http://notes.test/api",
		HTTPClient: &http.Client{Transport: fiberTransport{app: app}},
	})
}

func TestClientAgainstServer(t *testing.T) {
	ctx := context.Background()
	client := newAppClient(t)

	created, err := client.CreateNote(ctx, dto.CreateNoteRequest{Title: "Shopping List"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Id)

	content := "<p>buy eggs</p>"
	updated, err := client.UpdateNote(ctx, created.Id, dto.UpdateNoteRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)
	assert.Equal(t, "Shopping List", updated.Title)

	found, err := client.SearchNotes(ctx, "EGG")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.Id, found[0].Id)

	got, err := client.GetNote(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 7))))
	ref, err := client.UploadImage(ctx, created.Id, "scan.png", buf.Bytes(), &dto.UploadImageMetadata{Id: "scan", Alt: "receipt"})
	require.NoError(t, err)
	assert.Equal(t, created.Id+"_scan", ref.BlobKey)
	assert.Equal(t, 3, ref.Width)
	assert.Equal(t, 7, ref.Height)

	blob, err := client.GetImage(ctx, ref.BlobKey)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), blob)

	stats, err := client.GetStorageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NoteCount)
	assert.Equal(t, int64(1), stats.ImageCount)

	health, err := client.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	require.NoError(t, client.DeleteNote(ctx, created.Id))
	require.NoError(t, client.DeleteNote(ctx, created.Id), "already gone is success")

	got, err = client.GetNote(ctx, created.Id)
	require.NoError(t, err)
	assert.Nil(t, got)

	blob, err = client.GetImage(ctx, ref.BlobKey)
	require.NoError(t, err)
	assert.Nil(t, blob)

	_, err = client.UpdateNote(ctx, created.Id, dto.UpdateNoteRequest{Content: &content})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	cleared, err := client.ClearAllData(ctx)
	require.NoError(t, err)
	assert.True(t, cleared.Success)

	all, err := client.GetAllNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClientRequestFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/notes":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to fetch notes"}`))
		case "/api/stats":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		case "/api/images/k":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Blob key is required"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","database":{"connected":false,"error":"db down"}}`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(Config{BaseURL: srv.URL + "/api/", Timeout: time.Second})

	_, err := client.GetAllNotes(ctx)
	var failure *RequestFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, http.StatusInternalServerError, failure.StatusCode)
	assert.Equal(t, "Failed to fetch notes", failure.Message)

	_, err = client.GetStorageStats(ctx)
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "HTTP 502", failure.Message)

	err = client.DeleteImage(ctx, "k")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	health, err := client.HealthCheck(ctx)
	assert.ErrorIs(t, err, apperror.ErrBackendUnavailable)
	require.NotNil(t, health)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "db down", health.Database.Error)
}

func TestClientServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url, Timeout: time.Second})
	_, err := client.GetAllNotes(context.Background())
	assert.ErrorIs(t, err, apperror.ErrBackendUnavailable)
}
