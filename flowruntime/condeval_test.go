package flowruntime

import (
	"testing"
	"time"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/stretchr/testify/require"
)

func TestEvalBool(t *testing.T) {
	ctx := blueprint.NewContext(blueprint.Metadata{})
	ctx.Set("total", int64(120))
	ctx.Set("approved", true)

	cases := []struct {
		expr string
		want bool
	}{
		{"total > 100", true},
		{"total < 100", false},
		{"approved && total > 100", true},
		{"!approved", false},
		{"total == 120", true},
		{"total != 120", false},
	}
	for _, c := range cases {
		got, err := EvalBool(c.expr, ctx)
		require.NoError(t, err, c.expr)
		require.Equal(t, c.want, got, c.expr)
	}
}

func TestEvalDuration(t *testing.T) {
	ctx := blueprint.NewContext(blueprint.Metadata{})
	d, err := EvalDuration("5*time.Second", ctx)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, d)
}

func TestEvalValue_ContextLookup(t *testing.T) {
	ctx := blueprint.NewContext(blueprint.Metadata{})
	ctx.Set("item", "widget")
	v, err := EvalValue("item", ctx)
	require.NoError(t, err)
	require.Equal(t, "widget", v)
}

func TestEvalValue_StructField(t *testing.T) {
	type order struct{ Total int }
	ctx := blueprint.NewContext(blueprint.Metadata{})
	ctx.Set("order", order{Total: 42})
	v, err := EvalValue("order.Total", ctx)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestEvalBool_UnknownIdentifier(t *testing.T) {
	ctx := blueprint.NewContext(blueprint.Metadata{})
	_, err := EvalBool("missing", ctx)
	require.Error(t, err)
}
