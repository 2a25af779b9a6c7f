package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionEval(t *testing.T) {
	vars := map[string]any{
		"metNpc": true,
		"hasKey": false,
		"visits": 2,
		"name":   "volg",
		"ratio":  0.5,
		"len":    1,
		"count":  1.0,
		"zero":   0.0,
		"big":    int64(3),
	}
	tests := []struct {
		expr string
		want bool
	}{
		{"metNpc", true},
		{"metNpc == true", true},
		{"hasKey", false},
		{"!hasKey", true},
		{"metNpc == true && hasKey != false", false},
		{"metNpc && !hasKey", true},
		{"hasKey || visits == 2", true},
		{"visits != 2", false},
		{`name == "volg"`, true},
		{`name == 'volg'`, true},
		{`name != "ash"`, true},
		{"ratio == 0.5", true},
		{"unset", false},
		{"unset == false", true},
		{"unset == true", false},
		{"!(hasKey || unset)", true},
		{"(metNpc || hasKey) && visits == 2", true},
		{"true", true},
		{"false || false", false},
		{"len == 1", true},
		{"len != 1", false},
		{"count == 1", true},
		{"visits == 2.0", true},
		{"1.0 == 1", true},
		{"-2 == -2.0", true},
		{"big == 3", true},
		{"ratio == 0.50", true},
		{"!zero", true},
		{"zero == 0", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c, err := CompileCondition(tt.expr)
			require.NoError(t, err)
			got, err := c.Eval(vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditionDoesNotModifyVars(t *testing.T) {
	c, err := CompileCondition("a == b")
	require.NoError(t, err)
	vars := map[string]any{"a": 1}
	_, err = c.Eval(vars)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, vars)
}

func TestConditionRejects(t *testing.T) {
	for _, expr := range []string{
		"",
		"a = b",
		"a == ",
		"(a",
		"a)",
		"a b",
		"len(a)",
		"a.b",
		"a + 1",
		"a < 2",
		"import",
		"__cond__",
		`"open`,
		"a[0]",
	} {
		_, err := CompileCondition(expr)
		assert.Error(t, err, expr)
	}
}
