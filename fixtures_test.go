package canopy

import (
	"reflect"

	"github.com/pumped-fn/canopy/internal/logging"
)

type game struct {
	score  *Cell[int]
	player *Cell[*player]
	events *Channel[string]
}

type player struct {
	name  *Cell[string]
	level int
}

func newPlayer(name string, level int) *player {
	return &player{name: CellOf(name), level: level}
}

// scoreView receives the nearest int capability.
type scoreView struct {
	scores []int
	hooks  []string
}

func (v *scoreView) OnScore(n int) { v.scores = append(v.scores, n) }
func (v *scoreView) OnCreate()     { v.hooks = append(v.hooks, "create") }
func (v *scoreView) OnEnable()     { v.hooks = append(v.hooks, "enable") }
func (v *scoreView) OnDisable()    { v.hooks = append(v.hooks, "disable") }
func (v *scoreView) OnDestroy()    { v.hooks = append(v.hooks, "destroy") }

// nameLabel reaches the player's name through an access path.
type nameLabel struct {
	names  []string
	levels []int
}

func (l *nameLabel) OnName(s string) { l.names = append(l.names, s) }
func (l *nameLabel) OnLevel(n int)   { l.levels = append(l.levels, n) }

// relay is both a consumer and a provider.
type relay struct {
	doubled *Cell[int]
}

func (r *relay) OnScore(n int) { r.doubled.Set(n * 2) }

func testCatalog() *Catalog {
	return NewCatalog(
		Define[*game]("Game",
			Expose[*game, int]("score", func(g *game) *Cell[int] { return g.score }),
			Expose[*game, *player]("player", func(g *game) *Cell[*player] { return g.player }),
			Expose[*game, string]("events", func(g *game) *Channel[string] { return g.events }),
		),
		Define[*player]("Player",
			SourceAccessor[*player, string]("name", func(p *player) *Cell[string] { return p.name }),
			Accessor("level", func(p *player) int { return p.level }),
		),
		Define[*scoreView]("ScoreView",
			Receive("OnScore", (*scoreView).OnScore),
		),
		Define[*nameLabel]("NameLabel",
			Receive("OnName", (*nameLabel).OnName),
			Receive("OnLevel", (*nameLabel).OnLevel),
		),
		Define[*relay]("Relay",
			Expose[*relay, int]("doubled", func(r *relay) *Cell[int] { return r.doubled }),
			Receive("OnScore", (*relay).OnScore),
		),
	)
}

func newGame(score int) *game {
	return &game{
		score:  CellOf(score),
		player: NewCell[*player](),
		events: NewChannel[string](),
	}
}

// bindErrors collects reported binding problems.
type bindErrors []*BindError

func (b *bindErrors) report(err *BindError) {
	*b = append(*b, err)
}

func (b bindErrors) kinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(b))
	for _, err := range b {
		kinds = append(kinds, err.Kind)
	}
	return kinds
}

// countingIntrospector counts Describe calls per type.
type countingIntrospector struct {
	*Catalog
	calls map[reflect.Type]int
}

func newCountingIntrospector(c *Catalog) *countingIntrospector {
	return &countingIntrospector{Catalog: c, calls: make(map[reflect.Type]int)}
}

func (c *countingIntrospector) Describe(t reflect.Type) (*TypeSpec, bool) {
	c.calls[t]++
	return c.Catalog.Describe(t)
}

func quietEngine(tree Tree, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{
		WithTree(tree),
		WithIntrospector(testCatalog()),
		WithLogger(logging.NewNop()),
	}, opts...)
	return MustEngine(opts...)
}
