package services

import (
	"testing"
	"time"

	. "monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDiffEntryRender(t *testing.T) {
	entry := DiffEntry{Old: "unassigned", New: "test_in_progress"}
	assert.Equal(t, "unassigned -> test_in_progress", entry.Render())
}

func TestParseDiffValue(t *testing.T) {
	tests := []struct {
		name     string
		rendered string
		expected DiffEntry
	}{
		{
			name:     "Plain diff",
			rendered: "old -> new",
			expected: DiffEntry{Old: "old", New: "new"},
		},
		{
			name:     "No separator means a bare new value",
			rendered: "created",
			expected: DiffEntry{New: "created"},
		},
		{
			name:     "Separator inside data splits on the first occurrence",
			rendered: "a -> b -> c",
			expected: DiffEntry{Old: "a", New: "b -> c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDiffValue(tt.rendered))
		})
	}
}

func TestFieldValues(t *testing.T) {
	sent := time.Date(2023, 2, 28, 9, 30, 0, 0, time.UTC)
	c := Case{
		OrganisationName: "Example Council",
		CaseNumber:       42,
		ReportSentDate:   &sent,
		AuditorID:        nil,
	}
	c.ID = "case-1"

	fields := FieldValues(&c)

	assert.Equal(t, "Example Council", fields["organisationName"])
	assert.Equal(t, "42", fields["caseNumber"])
	assert.Equal(t, "2023-02-28T09:30:00Z", fields["reportSentDate"])
	assert.Equal(t, "None", fields["auditorId"])

	// Bookkeeping columns and associations stay out of the diff.
	assert.NotContains(t, fields, "id")
	assert.NotContains(t, fields, "version")
	assert.NotContains(t, fields, "contacts")
	assert.NotContains(t, fields, "audit")
}

func TestFieldValuesNilPointer(t *testing.T) {
	var c *Case
	assert.Empty(t, FieldValues(c))
}

func TestComputeDiff(t *testing.T) {
	old := Case{OrganisationName: "Before", Status: StatusUnassigned}
	updated := Case{OrganisationName: "After", Status: StatusUnassigned}
	updated.Version = old.Version + 1

	diff := ComputeDiff(&old, &updated)

	assert.Len(t, diff, 1)
	assert.Equal(t, DiffEntry{Old: "Before", New: "After"}, diff["organisationName"])
}

func TestComputeDiffNoChanges(t *testing.T) {
	c := Case{OrganisationName: "Same"}
	assert.Empty(t, ComputeDiff(&c, &c))
}

func TestContentTypeOf(t *testing.T) {
	assert.Equal(t, "case", ContentTypeOf(&Case{}))
	assert.Equal(t, "case", ContentTypeOf(Case{}))
	assert.Equal(t, "check_result", ContentTypeOf(&CheckResult{}))
	assert.Equal(t, "equality_body_correspondence", ContentTypeOf(&EqualityBodyCorrespondence{}))
	assert.Equal(t, "s3_report", ContentTypeOf(&S3Report{}))
}
