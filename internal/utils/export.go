package utils

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	. "monitor/internal/models"
)

// ExportDateFormat is the day-first rendering used in every CSV export.
const ExportDateFormat = "02/01/2006"

// FormatExportDate renders a nullable date, empty when unset.
func FormatExportDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(ExportDateFormat)
}

// ExportColumn is one column of a case export: a header and a value
// projection.
type ExportColumn struct {
	Header string
	Value  func(c *Case) string
}

// WriteCaseCSV streams the cases through the given columns.
func WriteCaseCSV(w io.Writer, columns []ExportColumn, cases []*Case) error {
	writer := csv.NewWriter(w)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = column.Header
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	row := make([]string, len(columns))
	for _, c := range cases {
		for i, column := range columns {
			row[i] = column.Value(c)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ContactBlock renders a case's contacts as one cell: name, job title
// and email per contact, blank line between contacts.
func ContactBlock(contacts []Contact) string {
	var blocks []string
	for _, contact := range contacts {
		if contact.IsDeleted {
			continue
		}
		var lines []string
		for _, line := range []string{contact.Name, contact.JobTitle, contact.Email} {
			if line != "" {
				lines = append(lines, line)
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
