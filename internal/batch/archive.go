package batch

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/coursekit/roundex/internal/workbook"
)

// WriteArchive streams the batch ZIP: results/<name>.xlsx per successful
// link, plus status.xlsx covering every record given.
func WriteArchive(w io.Writer, outputs []Output, records []workbook.StatusRecord) error {
	zw := zip.NewWriter(w)

	for _, out := range outputs {
		entry, err := zw.Create("results/" + out.Name + ".xlsx")
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", out.Name, err)
		}
		if _, err := out.File.WriteTo(entry); err != nil {
			return fmt.Errorf("write workbook %s: %w", out.Name, err)
		}
	}

	status, err := workbook.Status(records)
	if err != nil {
		return fmt.Errorf("build status workbook: %w", err)
	}
	entry, err := zw.Create("status.xlsx")
	if err != nil {
		return fmt.Errorf("create status entry: %w", err)
	}
	if _, err := status.WriteTo(entry); err != nil {
		return fmt.Errorf("write status workbook: %w", err)
	}

	return zw.Close()
}
