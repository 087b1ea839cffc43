package demo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumped-fn/canopy"
	"github.com/pumped-fn/canopy/internal/logging"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(&buf, canopy.WithLogger(logging.NewNop())))

	want := []string{
		"-- activate main display",
		"main <- score 5",
		"main enabled",
		"-- score = 6",
		"main <- score 6",
		"-- disable main display",
		"main disabled",
		"-- score = 7, score = 8",
		"-- enable main display",
		"main <- score 8",
		"main enabled",
		"-- activate ticker",
		"-- leader = ada, then lin",
		"ticker <- leader ada",
		"ticker <- leader lin",
		"-- rename old leader, rename current leader",
		"ticker <- leader lin yutang",
		`ticker <- news "half time"`,
		"-- dispose",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(buf.String()), "\n"))
}

func TestScoreboardSideDisplayResolvesThroughMain(t *testing.T) {
	var buf bytes.Buffer
	s := NewScoreboard(&buf)
	engine := canopy.MustEngine(
		canopy.WithTree(s.Tree),
		canopy.WithIntrospector(Catalog()),
		canopy.WithLogger(logging.NewNop()),
	)

	ctrl, err := engine.Activate(s.Side, nil)
	require.NoError(t, err)
	require.Len(t, ctrl.Bindings(), 1)
	assert.Same(t, s.Game, ctrl.Bindings()[0].Provider())
	assert.Equal(t, []int{5}, s.Side.Seen)
}
