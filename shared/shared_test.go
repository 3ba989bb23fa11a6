package shared_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/shared"
	"roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/shared/dto"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		input    string
		expected *bool
	}{
		{input: "", expected: nil},
		{input: "true", expected: boolPtr(true)},
		{input: "F", expected: boolPtr(false)},
		{input: "1", expected: boolPtr(true)},
		{input: "random", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.ConvertStringToBool(tt.input))
		})
	}
}

func TestConvertStringToInt(t *testing.T) {
	res, err := shared.ConvertStringToInt("")
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = shared.ConvertStringToInt("12")
	require.NoError(t, err)
	assert.Equal(t, 12, *res)

	_, err = shared.ConvertStringToInt("twelve")
	assert.Error(t, err)
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "zero total", total: 0, limit: 10, expected: 1},
		{name: "zero limit", total: 100, limit: 0, expected: 1},
		{name: "negative limit", total: 100, limit: -5, expected: 1},
		{name: "exact division", total: 100, limit: 10, expected: 10},
		{name: "remainder", total: 101, limit: 10, expected: 11},
		{name: "limit greater than total", total: 5, limit: 10, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	type patch struct {
		Status  string  `db:"status"`
		Purpose string  `db:"purpose"`
		Note    *string `db:"note"`
		Count   *int    `db:"count"`
		NoDBTag string
	}

	t.Run("only set fields plus metadata", func(t *testing.T) {
		zero := 0

		res := shared.TransformFields(patch{Status: "cancelled", Count: &zero, NoDBTag: "x"}, "user-1")

		assert.Len(t, res, 4)
		assert.Equal(t, "cancelled", res["status"])
		assert.Equal(t, 0, res["count"])
		assert.Equal(t, "user-1", res[constant.FieldModifiedBy])
		assert.IsType(t, time.Time{}, res[constant.FieldModifiedAt])
		assert.NotContains(t, res, "purpose")
		assert.NotContains(t, res, "note")
	})

	t.Run("zero struct keeps metadata only", func(t *testing.T) {
		res := shared.TransformFields(patch{}, "user-1")

		assert.Len(t, res, 2)
	})
}

func TestFilterByID(t *testing.T) {
	expected := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "id", Value: "123", Operator: dto.FilterOperatorEq, Table: "rooms"},
		},
	}

	assert.Equal(t, expected, shared.FilterByID("123", "id", "rooms"))
}

func TestFilterByIDAndOwner(t *testing.T) {
	filter := shared.FilterByIDAndOwner("res-1", "id", "user-1", "user_id", "reservations")
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(reservations.id = :id AND reservations.user_id = :user_id)", where)
	assert.Equal(t, map[string]any{"id": "res-1", "user_id": "user-1"}, args)
}

func TestPqErrors(t *testing.T) {
	unique := fmt.Errorf("failed to insert data: %w", &pq.Error{Code: constant.PqErrorCodeUniqueViolation})
	fk := &pq.Error{Code: constant.PqErrorCodeFkViolation}

	assert.True(t, shared.IsUniqueViolation(unique))
	assert.False(t, shared.IsForeignKeyViolation(unique))
	assert.True(t, shared.IsForeignKeyViolation(fk))
	assert.Equal(t, constant.Empty, shared.PqErrorCode(errors.New("boom")))
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "availability:room-1:2024-01-15", shared.BuildCacheKey("availability", "room-1", "2024-01-15"))
	assert.Equal(t, "room:gets", shared.BuildCacheKey("room:gets"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "date", SortDir: "ASC"}
	filter := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "user_id", Value: "user-1", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "status", Value: "confirmed", Operator: dto.FilterOperatorEq},
		},
	}

	first := shared.BuildCacheKeyWithQuery("reservation:mine:user-1", params, filter)
	second := shared.BuildCacheKeyWithQuery("reservation:mine:user-1", params, filter)

	assert.Equal(t, first, second)
	assert.Len(t, first, len("reservation:mine:user-1:")+16)

	params.Page = 2
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("reservation:mine:user-1", params, filter))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Clear(gomock.Any(), "room:gets*").Return(nil)
	mockCache.EXPECT().Clear(gomock.Any(), "room:count*").Return(errors.New("redis down"))

	shared.InvalidateCaches(context.Background(), mockCache, "room:gets")
	shared.InvalidateCaches(context.Background(), mockCache, "room:count")
}

func boolPtr(b bool) *bool {
	return &b
}
