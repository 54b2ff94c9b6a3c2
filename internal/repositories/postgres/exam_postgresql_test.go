package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ITI-GP-2025/examination-service/internal/repositories"
)

func TestExamOrderClause(t *testing.T) {
	tests := []struct {
		name    string
		filters repositories.ExamFilters
		want    string
	}{
		{"defaults", repositories.ExamFilters{}, "date asc"},
		{"date desc", repositories.ExamFilters{SortBy: "date", SortOrder: "desc"}, "date desc"},
		{"created_at asc", repositories.ExamFilters{SortBy: "created_at"}, "created_at asc"},
		{"unknown column falls back", repositories.ExamFilters{SortBy: "score"}, "date asc"},
		{"sql fragment falls back",
			repositories.ExamFilters{SortBy: "date; SELECT pg_sleep(5)--", SortOrder: "desc"},
			"date desc"},
		{"unknown direction falls back", repositories.ExamFilters{SortBy: "date", SortOrder: "DESC; --"}, "date asc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, examOrderClause(tt.filters))
		})
	}
}
