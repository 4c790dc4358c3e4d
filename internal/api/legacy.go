package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/nconklindev/dexcel/internal/types"
)

// LegacyClient speaks the older session-backed server: rows are
// addressed by data index and status is sent as a label.
type LegacyClient struct {
	*Client

	mu         sync.Mutex
	sourceName string
}

func NewLegacyClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *LegacyClient {
	return &LegacyClient{Client: NewClient(baseURL, httpClient, logger)}
}

type legacyTable struct {
	Headers []string   `json:"headers"`
	Data    [][]string `json:"data"`
}

type legacyAck struct {
	Success bool `json:"success"`
}

type legacyUpload struct {
	Status   string   `json:"status"`
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"`
}

// statusLabel maps a status request to the label the legacy server expects.
func statusLabel(req types.StatusRequest) string {
	switch {
	case req.Clear:
		return "clear"
	case req.Converted:
		return "convertita"
	case req.NotConverted:
		return "non_conv"
	}
	return "clear"
}

// Snapshot rebuilds the header row the legacy table omits, so that
// data index i becomes Excel row i+2.
func (c *LegacyClient) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	var table legacyTable
	if err := c.getJSON(ctx, "/api/table", &table); err != nil {
		return nil, err
	}

	snap := &types.Snapshot{
		Columns:    table.Headers,
		Rows:       make([]types.Row, 0, len(table.Data)+1),
		SourceName: c.source(),
	}
	snap.Rows = append(snap.Rows, types.Row{
		ExcelRow: types.HeaderExcelRow,
		Values:   append([]string(nil), table.Headers...),
	})
	for i, values := range table.Data {
		snap.Rows = append(snap.Rows, types.Row{ExcelRow: i + 2, Values: values})
	}
	return snap, nil
}

func (c *LegacyClient) Templates(ctx context.Context) (*types.Templates, error) {
	return nil, ErrUnsupported
}

func (c *LegacyClient) SaveTemplates(ctx context.Context, t types.Templates) (string, error) {
	return "", ErrUnsupported
}

func (c *LegacyClient) Merge(ctx context.Context, paths []string) (string, error) {
	return "", ErrUnsupported
}

func (c *LegacyClient) SetRowStatus(ctx context.Context, req types.StatusRequest) (string, error) {
	if req.ExcelRow <= types.HeaderExcelRow {
		return "", fmt.Errorf("row %d cannot be marked", req.ExcelRow)
	}
	body := struct {
		RowIdx int    `json:"row_idx"`
		Status string `json:"status"`
	}{req.ExcelRow - 2, statusLabel(req)}

	var ack legacyAck
	if err := c.postJSON(ctx, "/api/mark_row", body, &ack); err != nil {
		return "", err
	}
	c.logger.Info("row status updated", "row", req.ExcelRow, "status", body.Status)
	return "Riga aggiornata!", nil
}

func (c *LegacyClient) AddRow(ctx context.Context, values []string) (string, error) {
	body := struct {
		Values []string `json:"values"`
	}{values}

	var ack legacyAck
	if err := c.postJSON(ctx, "/api/add_row", body, &ack); err != nil {
		return "", err
	}
	c.logger.Info("row added", "values", len(values))
	return "Riga aggiunta.", nil
}

// Import replaces the session workbook with the file at path.
func (c *LegacyClient) Import(ctx context.Context, path string) (string, error) {
	var reply legacyUpload
	if err := c.postFiles(ctx, "/", "excel_file", []string{path}, &reply); err != nil {
		return "", err
	}

	name := reply.Filename
	if name == "" {
		name = filepath.Base(path)
	}
	c.mu.Lock()
	c.sourceName = name
	c.mu.Unlock()

	c.logger.Info("file imported", "file", name, "columns", len(reply.Headers))
	return fmt.Sprintf("%s: %s", reply.Status, name), nil
}

func (c *LegacyClient) source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sourceName == "" {
		return "(sessione)"
	}
	return c.sourceName
}
