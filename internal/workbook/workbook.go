// Package workbook serializes conversations and batch status into the
// fixed-schema xlsx outputs.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/coursekit/roundex/internal/rounds"
)

// Headers is the conversation sheet schema, in column order.
var Headers = []string{
	"Round",
	"Prompt",
	"Prompt_upload",
	"ChatGPT's thought time",
	"ChatGPT's thought",
	"ChatGPT's response",
	"ChatGPT's response code",
}

// StatusHeaders is the status sheet schema, in column order.
var StatusHeaders = []string{"Name.dot", "Link", "Status", "Reason", "Round_count"}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// StatusRecord is one status-sheet row. RoundCount is 0 on failure.
type StatusRecord struct {
	Name       string
	Link       string
	Status     string
	Reason     string
	RoundCount int
}

// Conversation builds a single-sheet workbook with one row per round.
// Zero rounds yield a header-only sheet; an empty conversation is reported
// through the status sheet, not an error here.
func Conversation(name string, rows []rounds.Row) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := SafeSheetTitle(name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, toAny(Headers)); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cells := []any{
			r.Index,
			XMLSafe(r.Prompt),
			XMLSafe(r.PromptUpload),
			XMLSafe(r.ThoughtTime),
			XMLSafe(r.Thought),
			XMLSafe(r.Response),
			XMLSafe(r.ResponseCode),
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Status builds the batch status workbook, one row per input link in the
// order given.
func Status(records []StatusRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "status"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, "status", 1, toAny(StatusHeaders)); err != nil {
		return nil, err
	}
	for i, rec := range records {
		cells := []any{
			XMLSafe(rec.Name),
			XMLSafe(rec.Link),
			XMLSafe(rec.Status),
			XMLSafe(rec.Reason),
			rec.RoundCount,
		}
		if err := writeRow(f, "status", i+2, cells); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
