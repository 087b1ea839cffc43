// Package demo holds the scoreboard hierarchy used by the CLI and examples.
package demo

import (
	"fmt"
	"io"

	"github.com/pumped-fn/canopy"
)

// Game is the root provider.
type Game struct {
	Score  *canopy.Cell[int]
	Leader *canopy.Cell[*Player]
	News   *canopy.Channel[string]
}

func (g *Game) String() string { return "game" }

// Player is reached through access paths, never bound directly.
type Player struct {
	Name  *canopy.Cell[string]
	Level int
}

// Display prints every score it receives.
type Display struct {
	Label string
	Out   io.Writer
	Seen  []int
}

func (d *Display) String() string { return "display:" + d.Label }

func (d *Display) OnScore(v int) {
	d.Seen = append(d.Seen, v)
	fmt.Fprintf(d.Out, "%s <- score %d\n", d.Label, v)
}

func (d *Display) OnEnable()  { fmt.Fprintf(d.Out, "%s enabled\n", d.Label) }
func (d *Display) OnDisable() { fmt.Fprintf(d.Out, "%s disabled\n", d.Label) }

// Ticker shows the leader's name and the news feed.
type Ticker struct {
	Out   io.Writer
	Names []string
	News  []string
}

func (t *Ticker) String() string { return "ticker" }

func (t *Ticker) OnLeader(name string) {
	t.Names = append(t.Names, name)
	fmt.Fprintf(t.Out, "ticker <- leader %s\n", name)
}

func (t *Ticker) OnNews(s string) {
	t.News = append(t.News, s)
	fmt.Fprintf(t.Out, "ticker <- news %q\n", s)
}

// Catalog declares the demo types.
func Catalog() *canopy.Catalog {
	return canopy.NewCatalog(
		canopy.Define[*Game]("Game",
			canopy.Expose[*Game, int]("score", func(g *Game) *canopy.Cell[int] { return g.Score }),
			canopy.Expose[*Game, *Player]("leader", func(g *Game) *canopy.Cell[*Player] { return g.Leader }),
			canopy.Expose[*Game, string]("news", func(g *Game) *canopy.Channel[string] { return g.News }),
		),
		canopy.Define[*Player]("Player",
			canopy.SourceAccessor[*Player, string]("name", func(p *Player) *canopy.Cell[string] { return p.Name }),
			canopy.Accessor("level", func(p *Player) int { return p.Level }),
		),
		canopy.Define[*Display]("Display",
			canopy.Receive("OnScore", (*Display).OnScore),
		),
		canopy.Define[*Ticker]("Ticker",
			canopy.Receive("OnLeader", (*Ticker).OnLeader),
			canopy.Receive("OnNews", (*Ticker).OnNews),
		),
	)
}

// TickerConfig routes OnLeader through the leader's name.
var TickerConfig = canopy.Config{
	{Receiver: "OnLeader", Type: "Player", Path: "name"},
}

// Scoreboard is a built demo hierarchy.
type Scoreboard struct {
	Tree    *canopy.Hierarchy
	Game    *Game
	Main    *Display
	Side    *Display
	Ticker  *Ticker
	Players []*Player
}

// NewPlayer creates a player.
func NewPlayer(name string, level int) *Player {
	return &Player{Name: canopy.CellOf(name), Level: level}
}

// NewScoreboard builds game -> {main display -> side display, ticker}.
func NewScoreboard(out io.Writer) *Scoreboard {
	g := &Game{
		Score:  canopy.CellOf(5),
		Leader: canopy.NewCell[*Player](),
		News:   canopy.NewChannel[string](),
	}
	s := &Scoreboard{
		Tree:    canopy.NewHierarchy(),
		Game:    g,
		Main:    &Display{Label: "main", Out: out},
		Side:    &Display{Label: "side", Out: out},
		Ticker:  &Ticker{Out: out},
		Players: []*Player{NewPlayer("ada", 3), NewPlayer("lin", 5)},
	}
	s.Tree.Add(g, nil).
		Add(s.Main, g).
		Add(s.Side, s.Main).
		Add(s.Ticker, g)
	return s
}

// Run plays the disable/enable scenario on a fresh scoreboard and reports each
// step to out.
func Run(out io.Writer, opts ...canopy.EngineOption) error {
	s := NewScoreboard(out)
	opts = append([]canopy.EngineOption{
		canopy.WithTree(s.Tree),
		canopy.WithIntrospector(Catalog()),
	}, opts...)
	engine, err := canopy.NewEngine(opts...)
	if err != nil {
		return err
	}

	step := func(format string, args ...any) {
		fmt.Fprintf(out, "-- "+format+"\n", args...)
	}

	step("activate main display")
	main, err := engine.Activate(s.Main, nil)
	if err != nil {
		return err
	}

	step("score = 6")
	s.Game.Score.Set(6)

	step("disable main display")
	if err := main.Disable(); err != nil {
		return err
	}

	step("score = 7, score = 8")
	s.Game.Score.Set(7)
	s.Game.Score.Set(8)

	step("enable main display")
	if err := main.Enable(); err != nil {
		return err
	}

	step("activate ticker")
	if _, err := engine.Activate(s.Ticker, TickerConfig); err != nil {
		return err
	}

	step("leader = %s, then %s", s.Players[0].Name.Get(), s.Players[1].Name.Get())
	s.Game.Leader.Set(s.Players[0])
	s.Game.Leader.Set(s.Players[1])

	step("rename old leader, rename current leader")
	s.Players[0].Name.Set("ada lovelace")
	s.Players[1].Name.Set("lin yutang")

	s.Game.News.Set("half time")

	step("dispose")
	return engine.Dispose()
}
