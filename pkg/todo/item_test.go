package todo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gotodo/todokit/pkg/todo"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-01T10:30:00Z", "2024-01-01 10:30"},
		{"2024-01-01T10:30:00.123456Z", "2024-01-01 10:30"},
		{"2024-01-01T12:30:00+02:00", "2024-01-01 10:30"},
		{"2024-01-01 10:30:00", "2024-01-01 10:30"},
		{"2024-01-01", "2024-01-01 00:00"},
		{"yesterday", "yesterday"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, todo.FormatDate(tt.in, time.UTC))
		})
	}
}

func TestFormatDate_Location(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	assert.Equal(t, "2024-01-01 13:30", todo.FormatDate("2024-01-01T10:30:00Z", loc))
}
