// Package upload provides a driver that sends the identifier batch it was
// triggered with as a JSON document to a URL, typically a pre-signed object
// storage URL.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
)

// httpClient is shared by all executions to reuse TCP connections.
var httpClient = &http.Client{}

// Input defines the arguments of the upload driver.
type Input struct {
	URL         string            `petal:"url"`
	Method      string            `petal:"method,optional"`
	Headers     map[string]string `petal:"headers,optional"`
	Timeout     string            `petal:"timeout,optional"`
	SkipIfEmpty bool              `petal:"skip_if_empty,optional"`
}

// Document is the JSON body the driver sends.
type Document struct {
	Module     string      `json:"module"`
	Count      int         `json:"count"`
	IDs        []labels.ID `json:"ids"`
	UploadedAt time.Time   `json:"uploaded_at"`
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunUpload is the handler for the upload driver.
func OnRunUpload(ctx context.Context, input *Input, batch *registry.Batch) error {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	if len(batch.IDs) == 0 && input.SkipIfEmpty {
		logger.Info("Empty batch, upload skipped.")
		return nil
	}
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	ids := batch.IDs
	if ids == nil {
		ids = []labels.ID{}
	}
	body, err := json.Marshal(Document{
		Module:     batch.Module,
		Count:      len(ids),
		IDs:        ids,
		UploadedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	method := strings.ToUpper(input.Method)
	if method == "" {
		method = http.MethodPut
	}
	req, err := http.NewRequestWithContext(ctx, method, input.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range input.Headers {
		req.Header.Set(k, v)
	}

	logger.Info("Uploading identifier batch", "count", len(ids), "size", len(body))
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}
	logger.Info("Successfully uploaded batch", "status", resp.Status)

	for _, id := range batch.IDs {
		batch.Out.Emit(id)
	}
	return nil
}

// Register registers the driver with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDriver("upload", &registry.RegisteredDriver{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunUpload,
	})
}
