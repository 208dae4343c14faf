package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gmail-sender-stats-go/internal/models"
)

func TestCleanSender(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "display name with angle brackets",
			raw:  "Jane Doe <jane@example.com>",
			want: "jane@example.com",
		},
		{
			name: "bare address",
			raw:  "jane@example.com",
			want: "jane@example.com",
		},
		{
			name: "bare address with surrounding spaces",
			raw:  "  jane@example.com  ",
			want: "jane@example.com",
		},
		{
			name: "brackets without display name",
			raw:  "<jane@example.com>",
			want: "jane@example.com",
		},
		{
			name: "subdomain address",
			raw:  "Alerts <noreply@mail.example.co.uk>",
			want: "noreply@mail.example.co.uk",
		},
		{
			name: "not an email",
			raw:  "not an email",
			want: "not an email",
		},
		{
			name: "empty value",
			raw:  "",
			want: "",
		},
		{
			name: "bracketed garbage",
			raw:  "Someone <not-an-address>",
			want: "Someone <not-an-address>",
		},
		{
			// Two bracketed addresses in one value. The pattern is
			// anchored, so only the first address is extracted.
			name: "multiple bracketed addresses",
			raw:  "Jane <jane@example.com> via <relay@mailer.io>",
			want: "jane@example.com",
		},
		{
			// The TLD token matches at most 4 characters; the rest of
			// the line is ignored.
			name: "long tld is truncated",
			raw:  "Jane <jane@example.museum>",
			want: "jane@example.muse",
		},
		{
			name: "bare address with long tld does not match",
			raw:  "jane@example.museum",
			want: "jane@example.museum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSender(tt.raw))
		})
	}
}

func TestSenderAddress(t *testing.T) {
	tests := []struct {
		name    string
		headers []models.Header
		want    string
	}{
		{
			name: "from header",
			headers: []models.Header{
				{Name: "Subject", Value: "hello"},
				{Name: "From", Value: "jane@example.com"},
			},
			want: "jane@example.com",
		},
		{
			name: "uppercase fallback",
			headers: []models.Header{
				{Name: "FROM", Value: "shouty@example.com"},
			},
			want: "shouty@example.com",
		},
		{
			name: "return-path fallback",
			headers: []models.Header{
				{Name: "Return-Path", Value: "<bounce@example.com>"},
			},
			want: "<bounce@example.com>",
		},
		{
			// From outranks Return-Path even when Return-Path comes
			// first in the header list.
			name: "from outranks return-path",
			headers: []models.Header{
				{Name: "Return-Path", Value: "<bounce@example.com>"},
				{Name: "From", Value: "jane@example.com"},
			},
			want: "jane@example.com",
		},
		{
			name: "first duplicate wins",
			headers: []models.Header{
				{Name: "From", Value: "first@example.com"},
				{Name: "From", Value: "second@example.com"},
			},
			want: "first@example.com",
		},
		{
			name:    "no recognizable header",
			headers: []models.Header{{Name: "Subject", Value: "hello"}},
			want:    "",
		},
		{
			name:    "no headers at all",
			headers: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := models.Message{ID: "m1", Headers: tt.headers}
			assert.Equal(t, tt.want, SenderAddress(msg))
		})
	}
}
