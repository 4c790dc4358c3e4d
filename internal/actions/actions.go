// Package actions validates user requests and forwards them to the
// backend. Validation failures never reach the network.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nconklindev/dexcel/internal/api"
	"github.com/nconklindev/dexcel/internal/copytext"
	"github.com/nconklindev/dexcel/internal/types"
	"github.com/nconklindev/dexcel/internal/workbook"

	"github.com/atotto/clipboard"
)

var (
	ErrNoSelection   = errors.New("no row selected")
	ErrHeaderRow     = errors.New("header row cannot be changed")
	ErrNoColumns     = errors.New("no columns loaded")
	ErrBlankRow      = errors.New("every field is blank")
	ErrNoFile        = errors.New("no file selected")
	ErrBlankTemplate = errors.New("template is blank")
)

// ClipboardError wraps a failed clipboard write.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("clipboard write: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

type Controller struct {
	backend   api.Backend
	clipboard Clipboard
	logger    *slog.Logger
}

func NewController(backend api.Backend, cb Clipboard, logger *slog.Logger) *Controller {
	if cb == nil {
		cb = SystemClipboard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{backend: backend, clipboard: cb, logger: logger}
}

// checkRow rejects a missing selection and the header row.
func checkRow(row *types.Row) error {
	if row == nil {
		return ErrNoSelection
	}
	if row.IsHeader() {
		return ErrHeaderRow
	}
	return nil
}

// SetRowStatus sends a status change for the selected row.
func (c *Controller) SetRowStatus(ctx context.Context, row *types.Row, status types.Status) (string, error) {
	if err := checkRow(row); err != nil {
		return "", err
	}
	return c.backend.SetRowStatus(ctx, types.StatusRequestFor(row.ExcelRow, status))
}

// CopyRowText fills the matching template from the selected row and
// puts it on the clipboard. It returns the copied text.
func (c *Controller) CopyRowText(row *types.Row, columns []string, t types.Templates) (string, error) {
	if err := checkRow(row); err != nil {
		return "", err
	}

	text := copytext.Build(columns, *row, t)
	if err := c.clipboard.WriteText(text); err != nil {
		c.logger.Warn("clipboard write failed", "row", row.ExcelRow, "error", err)
		return "", &ClipboardError{Err: err}
	}
	c.logger.Debug("row copied", "row", row.ExcelRow, "chars", len(text))
	return text, nil
}

// AddRow appends a row with one value per column, in column order.
func (c *Controller) AddRow(ctx context.Context, columns, values []string) (string, error) {
	if len(columns) == 0 {
		return "", ErrNoColumns
	}

	blank := true
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			blank = false
			break
		}
	}
	if blank {
		return "", ErrBlankRow
	}

	ordered := make([]string, len(columns))
	copy(ordered, values)
	return c.backend.AddRow(ctx, ordered)
}

// Import replaces the backend database with the file at path.
func (c *Controller) Import(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrNoFile
	}
	if err := checkUploadable(path); err != nil {
		return "", err
	}
	return c.backend.Import(ctx, path)
}

// Merge appends the rows of every file to the backend database.
func (c *Controller) Merge(ctx context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoFile
	}
	for _, path := range paths {
		if err := checkUploadable(path); err != nil {
			return "", err
		}
	}
	return c.backend.Merge(ctx, paths)
}

// checkUploadable refuses extensions the backend cannot read. File
// contents are left to the backend.
func checkUploadable(path string) error {
	if !workbook.IsUploadable(path) {
		return fmt.Errorf("%s: %w", filepath.Base(path), workbook.ErrUnsupportedFile)
	}
	return nil
}

// SaveTemplates stores both templates. Blank templates are refused.
func (c *Controller) SaveTemplates(ctx context.Context, t types.Templates) (string, error) {
	if strings.TrimSpace(t.Converted) == "" || strings.TrimSpace(t.NotConverted) == "" {
		return "", ErrBlankTemplate
	}
	return c.backend.SaveTemplates(ctx, t)
}

// Export writes the snapshot to path.
func (c *Controller) Export(path string, snap *types.Snapshot) error {
	if err := workbook.Export(path, snap); err != nil {
		return err
	}
	c.logger.Info("snapshot exported", "path", path, "rows", len(snap.Rows))
	return nil
}
