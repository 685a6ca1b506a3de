package workbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/coursekit/roundex/internal/share"
)

const metadataSheet = "metadata"

// ReadTargets reads share links from a metadata workbook whose rows carry
// the display name in column B and the link in column C (header row first).
// students filters by display name; nil selects every named row. Requested
// students missing from the workbook come back as failed status records so
// the batch report still covers them.
func ReadTargets(path string, students []string) ([]share.Link, []StatusRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open metadata workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	for _, s := range f.GetSheetList() {
		if s == metadataSheet {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata sheet: %w", err)
	}

	var wanted map[string]bool
	if students != nil {
		wanted = make(map[string]bool, len(students))
		for _, s := range students {
			if s = strings.TrimSpace(s); s != "" {
				wanted[s] = true
			}
		}
	}

	found := make(map[string]string) // name -> link, first occurrence wins
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[1])
		link := ""
		if len(row) > 2 {
			link = strings.TrimSpace(row[2])
		}
		if name == "" {
			continue
		}
		if wanted != nil && !wanted[name] {
			continue
		}
		if _, ok := found[name]; !ok {
			found[name] = link
		}
	}

	targetNames := make([]string, 0, len(found))
	for name := range found {
		targetNames = append(targetNames, name)
	}
	sort.Strings(targetNames)

	targets := make([]share.Link, 0, len(targetNames))
	for _, name := range targetNames {
		targets = append(targets, share.Link{URL: found[name], Name: name})
	}

	var missing []StatusRecord
	if wanted != nil {
		missingNames := make([]string, 0)
		for name := range wanted {
			if _, ok := found[name]; !ok {
				missingNames = append(missingNames, name)
			}
		}
		sort.Strings(missingNames)
		for _, name := range missingNames {
			missing = append(missing, StatusRecord{
				Name:   name,
				Status: StatusFailed,
				Reason: "student_not_found",
			})
		}
	}

	return targets, missing, nil
}
