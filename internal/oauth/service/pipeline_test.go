package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/stretchr/testify/require"
)

func normalize(err error) (int, errx.Envelope) {
	return errx.Normalizer{}.Normalize(err)
}

func TestOperationRun(t *testing.T) {
	t.Parallel()

	op := newOperation("test_op", "test failed", map[int]string{404: "thing not found"})

	t.Run("runs steps in order once", func(t *testing.T) {
		var seen []int
		err := op.run(context.Background(),
			func(context.Context) error { seen = append(seen, 1); return nil },
			func(context.Context) error { seen = append(seen, 2); return nil },
		)
		require.NoError(t, err)
		require.Equal(t, []int{1, 2}, seen)
	})

	t.Run("stops at first failure without retry", func(t *testing.T) {
		calls := 0
		err := op.run(context.Background(),
			func(context.Context) error {
				calls++
				return errx.FromUpstream(errx.Upstream{Status: http.StatusNotFound}, nil)
			},
			func(context.Context) error { t.Fatal("second step must not run"); return nil },
		)
		require.Equal(t, 1, calls)

		status, env := normalize(err)
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "thing not found", env.Description)
	})

	t.Run("inherits shared overrides", func(t *testing.T) {
		err := op.run(context.Background(), func(context.Context) error {
			return errx.FromUpstream(errx.Upstream{Status: http.StatusUnauthorized}, nil)
		})
		_, env := normalize(err)
		require.Equal(t, "invalid or expired token", env.Description)
	})

	t.Run("cancellation stops before the next step", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		err := op.run(ctx,
			func(context.Context) error { cancel(); return nil },
			func(context.Context) error { t.Fatal("must not run after cancel"); return nil },
		)
		require.ErrorIs(t, err, context.Canceled)

		status, _ := normalize(err)
		require.Equal(t, http.StatusInternalServerError, status)
	})

	t.Run("plain errors become unexpected", func(t *testing.T) {
		err := op.run(context.Background(), func(context.Context) error { return errors.New("boom") })
		require.Equal(t, errx.KindUnexpected, errx.KindOf(err))
	})
}
