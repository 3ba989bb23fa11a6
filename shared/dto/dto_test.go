package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/model"
	"roombook/shared/timezone"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	modifiedAt := createdAt.Add(90 * time.Minute)

	t.Run("renders both stamps in app time", func(t *testing.T) {
		var metadata dto.Metadata

		metadata.FromModel(model.Metadata{
			CreatedAt:  createdAt,
			ModifiedAt: modifiedAt,
			CreatedBy:  "creator",
			ModifiedBy: "modifier",
		})

		assert.Equal(t, dto.Metadata{
			CreatedAt:  timezone.Format(createdAt, constant.DateFormat),
			ModifiedAt: timezone.Format(modifiedAt, constant.DateFormat),
			CreatedBy:  "creator",
			ModifiedBy: "modifier",
		}, metadata)
	})

	t.Run("zero modification stamp stays empty", func(t *testing.T) {
		metadata := dto.Metadata{ModifiedAt: "stale", ModifiedBy: "stale"}

		metadata.FromModel(model.Metadata{CreatedAt: createdAt, CreatedBy: "creator"})

		assert.NotEmpty(t, metadata.CreatedAt)
		assert.Empty(t, metadata.ModifiedAt)
		assert.Empty(t, metadata.ModifiedBy)
	})
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=name&sort_dir=desc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: dto.SortDirDesc},
		},
		{
			name:           "defaults applied",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "nothing set without defaults",
		},
		{
			name:           "non positive numbers ignored",
			query:          "page=-1&limit=0",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:           "garbage ignored",
			query:          "page=abc&limit=xyz&sort_dir=sideways",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:           "partial",
			query:          "page=3&sort_by=date",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: 3, Limit: constant.DefaultValueLimit, SortBy: "date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/rooms?"+tt.query, nil)

			var params dto.QueryParams
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_RestrictSort(t *testing.T) {
	tests := []struct {
		name     string
		params   dto.QueryParams
		expected dto.QueryParams
	}{
		{
			name:     "allowed column is kept",
			params:   dto.QueryParams{SortBy: "name", SortDir: dto.SortDirDesc},
			expected: dto.QueryParams{SortBy: "name", SortDir: dto.SortDirDesc},
		},
		{
			name:     "unknown column falls back",
			params:   dto.QueryParams{SortBy: "name; DROP TABLE rooms", SortDir: dto.SortDirDesc},
			expected: dto.QueryParams{SortBy: "created_at", SortDir: dto.SortDirDesc},
		},
		{
			name:     "missing direction defaults to ascending",
			expected: dto.QueryParams{SortBy: "created_at", SortDir: dto.SortDirAsc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.RestrictSort("created_at", "name", "created_at")

			assert.Equal(t, tt.expected, tt.params)
		})
	}
}
