package handlers

import (
	"testing"

	"capstone-tracker/models"

	"github.com/stretchr/testify/assert"
)

func TestParseAuthorsField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []models.Author
	}{
		{
			name: "json list",
			raw:  `[{"first_name":"Juan","last_name":"Dela Cruz"}]`,
			want: []models.Author{{FirstName: "Juan", LastName: "Dela Cruz"}},
		},
		{
			name: "legacy student data",
			raw:  "STUDENT_DATA:Ana||Lopez|Jr.|DISPLAY:Ana Lopez",
			want: []models.Author{{FirstName: "Ana", LastName: "Lopez", Suffix: "Jr."}},
		},
		{
			name: "legacy display names",
			raw:  "Ana Lopez",
			want: []models.Author{{FirstName: "Ana", LastName: "Lopez"}},
		},
		{name: "broken json", raw: `[{"first_name":`, want: nil},
		{name: "empty", raw: "  ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAuthors(tt.raw))
		})
	}
}
