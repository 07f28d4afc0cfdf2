package errx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, errx.KindValidation, errx.KindOf(errx.Validation("x")))
	require.Equal(t, errx.KindUpstream, errx.KindOf(errx.FromUpstream(errx.Upstream{Status: 404}, nil)))
	require.Equal(t, errx.KindUnexpected, errx.KindOf(errors.New("x")))
}

func TestUpstreamStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, 403, errx.UpstreamStatus(errx.FromUpstream(errx.Upstream{Status: 403}, nil)))
	require.Equal(t, 0, errx.UpstreamStatus(errx.Validation("x")))
	require.Equal(t, 0, errx.UpstreamStatus(nil))
}

func TestUnexpectedKeepsCause(t *testing.T) {
	t.Parallel()

	err := errx.Unexpected(context.DeadlineExceeded)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotEmpty(t, err.StackTrace())

	// already tagged errors pass through
	v := errx.Validation("x")
	require.Same(t, v, errx.Unexpected(v))
}

func TestWithPolicyFirstWins(t *testing.T) {
	t.Parallel()

	inner := &errx.Policy{Name: "inner"}
	outer := &errx.Policy{Name: "outer"}

	err := errx.WithPolicy(errx.WithPolicy(errx.Validation("x"), inner), outer)

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "inner", e.Policy().Name)
	require.Nil(t, errx.WithPolicy(nil, outer))
}
