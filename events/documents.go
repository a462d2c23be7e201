package events

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/metrics"
)

// Sheet is a rendered-ready standings table.
type Sheet struct {
	Title  string
	Header []string
	Rows   [][]string
}

// StandingsSource builds the standings sheet of a class.
type StandingsSource interface {
	StandingsSheet(ctx context.Context, classID int64) (Sheet, error)
}

const maxSheetName = 31

// RenderXLSX renders sheet as a single-sheet workbook with a bold header row.
func RenderXLSX(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Title
	if name == "" {
		name = "Standings"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), name); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	rows := append([][]string{sheet.Header}, sheet.Rows...)
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return nil, err
		}
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		if err := f.SetSheetRow(name, axis, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", idx+1, err)
		}
	}

	if len(sheet.Header) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Header), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(name, "A1", last, style); err != nil {
			return nil, fmt.Errorf("apply header style: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCSV is the minimal fallback artifact.
func RenderCSV(sheet Sheet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sheet.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(sheet.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Documents writes a standings document for a class every time its results
// change.
type Documents struct {
	dir    string
	source StandingsSource
	logger *zap.Logger
	render func(Sheet) ([]byte, error)
}

func NewDocuments(dir string, source StandingsSource, logger *zap.Logger) *Documents {
	return &Documents{dir: dir, source: source, logger: logger, render: RenderXLSX}
}

// HandleResults is the results.normalized subscriber.
func (d *Documents) HandleResults(ctx context.Context, msg *message.Message) error {
	var ev ResultsNormalized
	if err := Decode(msg, &ev); err != nil {
		return err
	}
	sheet, err := d.source.StandingsSheet(ctx, ev.ClassID)
	if err != nil {
		metrics.RecordSideEffectFailure("document")
		return fmt.Errorf("standings for class %d: %w", ev.ClassID, err)
	}
	path, err := d.Write(ev.ClassID, sheet)
	if err != nil {
		return err
	}
	d.logger.Info("standings document written", zap.Int64("class_id", ev.ClassID), zap.String("path", path))
	return nil
}

// Write stores sheet under the class directory and returns the file path.
// A failing workbook render falls back to CSV.
func (d *Documents) Write(classID int64, sheet Sheet) (string, error) {
	data, err := d.render(sheet)
	ext := "xlsx"
	if err != nil {
		metrics.RecordSideEffectFailure("document")
		d.logger.Warn("workbook render failed, writing csv", zap.Int64("class_id", classID), zap.Error(err))
		if data, err = RenderCSV(sheet); err != nil {
			return "", fmt.Errorf("csv fallback: %w", err)
		}
		ext = "csv"
	}

	dir := filepath.Join(d.dir, fmt.Sprintf("class-%d", classID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.RecordSideEffectFailure("document")
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("standings-%s.%s", uuid.NewString(), ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.RecordSideEffectFailure("document")
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
