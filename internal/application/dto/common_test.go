package dto_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
)

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		page, wantPage, wantOffset int
	}{
		{0, 1, 0},
		{-5, 1, 0},
		{3, 3, 20},
		{math.MaxInt, math.MaxInt32 / 10, (math.MaxInt32/10 - 1) * 10},
	}
	for _, tc := range cases {
		p := dto.PageRequest{Page: tc.page}
		p.Normalize(10)
		assert.Equal(t, tc.wantPage, p.Page, "page=%d", tc.page)
		assert.Equal(t, 10, p.PerPage)
		assert.Equal(t, tc.wantOffset, p.Offset(), "page=%d", tc.page)
		assert.GreaterOrEqual(t, p.Offset(), 0)
	}
}
