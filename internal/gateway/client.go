package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/mapper"
)

const defaultTimeout = 10 * time.Second

// Config points the client at a server's /api root,
// e.g. "http://localhost:3000/api".
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is the typed API for the notes transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.NewBackendUnavailableError("reach server", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewBackendUnavailableError("read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFrom(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func failureFrom(status int, raw []byte) *RequestFailure {
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return &RequestFailure{StatusCode: status, Message: body.Error}
	}
	return &RequestFailure{StatusCode: status, Message: fmt.Sprintf("HTTP %d", status)}
}

func isNotFound(err error) bool {
	var failure *RequestFailure
	return errors.As(err, &failure) && failure.StatusCode == http.StatusNotFound
}

func (c *Client) listNotes(ctx context.Context, query string) ([]*entity.Note, error) {
	path := "/notes"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var res dto.NotesResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}

	notes := make([]*entity.Note, len(res.Notes))
	for i, n := range res.Notes {
		notes[i] = mapper.NoteFromDTO(n)
	}
	return notes, nil
}

func (c *Client) GetAllNotes(ctx context.Context) ([]*entity.Note, error) {
	return c.listNotes(ctx, "")
}

func (c *Client) SearchNotes(ctx context.Context, query string) ([]*entity.Note, error) {
	return c.listNotes(ctx, query)
}

// GetNote returns (nil, nil) when the note does not exist.
func (c *Client) GetNote(ctx context.Context, id string) (*entity.Note, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var res dto.NoteResponse
	if err := c.do(req, &res); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.NoteFromDTO(res.Note), nil
}

func (c *Client) CreateNote(ctx context.Context, note dto.CreateNoteRequest) (*entity.Note, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/notes", note)
	if err != nil {
		return nil, err
	}

	var res dto.NoteResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return mapper.NoteFromDTO(res.Note), nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, patch dto.UpdateNoteRequest) (*entity.Note, error) {
	patch.Id = id
	req, err := c.newRequest(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}

	var res dto.NoteResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return mapper.NoteFromDTO(res.Note), nil
}

// DeleteNote treats a note that is already gone as deleted.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// UploadImage sends the bytes as the "image" part and meta as the
// "metadata" JSON part.
func (c *Client) UploadImage(ctx context.Context, noteId, filename string, data []byte, meta *dto.UploadImageMetadata) (*entity.ImageReference, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		if err := w.WriteField("metadata", string(raw)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notes/"+url.PathEscape(noteId)+"/images", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var res dto.ImageResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	ref := mapper.ImageReferenceFromDTO(res.Image)
	return &ref, nil
}

// GetImage returns (nil, nil) when no image has that blob key.
func (c *Client) GetImage(ctx context.Context, blobKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/images/"+url.PathEscape(blobKey), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.NewBackendUnavailableError("reach server", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewBackendUnavailableError("read response", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failureFrom(resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) DeleteImage(ctx context.Context, blobKey string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/images/"+url.PathEscape(blobKey), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) GetStorageStats(ctx context.Context) (*dto.StatsResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return nil, err
	}

	var res dto.StatsResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ClearAllData(ctx context.Context) (*dto.ClearResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/clear", dto.ClearRequest{Confirm: "true"})
	if err != nil {
		return nil, err
	}

	var res dto.ClearResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// HealthCheck returns the health payload. An unhealthy server still yields
// the decoded payload alongside a *RequestFailure.
func (c *Client) HealthCheck(ctx context.Context) (*dto.HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.NewBackendUnavailableError("reach server", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewBackendUnavailableError("read response", err)
	}

	var res dto.HealthResponse
	decodeErr := json.Unmarshal(raw, &res)

	switch {
	case resp.StatusCode == http.StatusOK && decodeErr == nil:
		return &res, nil
	case resp.StatusCode == http.StatusServiceUnavailable && decodeErr == nil && res.Status != "":
		msg := res.Database.Error
		if msg == "" {
			msg = res.Status
		}
		return &res, &RequestFailure{StatusCode: resp.StatusCode, Message: msg}
	case resp.StatusCode != http.StatusOK:
		return nil, failureFrom(resp.StatusCode, raw)
	default:
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
}
