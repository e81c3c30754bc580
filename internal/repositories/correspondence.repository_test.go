package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZendeskTicketID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected int
	}{
		{"Agent ticket URL", "https://govuk.zendesk.com/agent/tickets/12345", 12345},
		{"Trailing path", "https://govuk.zendesk.com/agent/tickets/678/events", 678},
		{"Not an agent URL", "https://govuk.zendesk.com/hc/requests/999", 0},
		{"No digits", "https://govuk.zendesk.com/agent/tickets/", 0},
		{"Empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ZendeskTicketID(tt.url))
		})
	}
}
