package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/buildbuildio/stitching/gqlerrors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestAsyncMapKeepsOrder(t *testing.T) {
	res, errs := AsyncMap(lo.Range(50), func(i int) (int, error) {
		return i * 2, nil
	})

	assert.Nil(t, errs)
	assert.Equal(t, lo.Map(lo.Range(50), func(i int, _ int) int { return i * 2 }), res)
}

func TestAsyncMapCollectsErrors(t *testing.T) {
	_, errs := AsyncMap([]int{1, 2, 3}, func(i int) (int, error) {
		if i == 2 {
			return 0, errors.New("boom")
		}
		return i, nil
	})

	assert.Len(t, errs, 1)
	assert.EqualError(t, errs, "boom")
}

func TestAsyncMapReportsErrorsInPayloadOrder(t *testing.T) {
	payload := []int{1, 2, 3, 4}

	for i := 0; i < 5; i++ {
		_, errs := AsyncMap(payload, func(v int) (int, error) {
			// earlier elements finish last
			time.Sleep(time.Duration(len(payload)-v) * 5 * time.Millisecond)
			if v%2 == 0 {
				return 0, fmt.Errorf("failed %d", v)
			}
			return v, nil
		})

		assert.Equal(t, []string{"failed 2", "failed 4"}, lo.Map(errs, func(e *gqlerrors.Error, _ int) string {
			return e.Message
		}))
	}
}
