// Package canopy provides a reactive composition engine for hierarchies of nodes.
//
// # Overview
//
// Nodes arranged in a tree expose typed capabilities. Descendants declare
// receivers; the engine finds the nearest ancestor exposing the receiver's type,
// subscribes, and keeps the receiver up to date:
//
//  1. Sources: Cell, Channel, Constant and Claimable hold or forward values
//  2. Type specs: explicit tables declaring capabilities, receivers and accessors
//  3. Engine: caches type specs, capability lists and binding plans
//  4. Controllers: drive each node through create, enable, disable and destroy
//
// # Basic Usage
//
// Declare the node types once:
//
//	type Game struct{ Score *canopy.Cell[int] }
//
//	type Display struct{ shown []int }
//
//	func (d *Display) OnScore(v int) { d.shown = append(d.shown, v) }
//
//	catalog := canopy.NewCatalog(
//	    canopy.Define[*Game]("Game",
//	        canopy.Expose[*Game, int]("score", func(g *Game) *canopy.Cell[int] { return g.Score }),
//	    ),
//	    canopy.Define[*Display]("Display",
//	        canopy.Receive("OnScore", (*Display).OnScore),
//	    ),
//	)
//
// Build the hierarchy and activate nodes:
//
//	game := &Game{Score: canopy.CellOf(5)}
//	display := &Display{}
//
//	tree := canopy.NewHierarchy().Add(game, nil).Add(display, game)
//	engine := canopy.MustEngine(
//	    canopy.WithTree(tree),
//	    canopy.WithIntrospector(catalog),
//	)
//
//	ctrl, err := engine.Activate(display, nil) // OnScore(5)
//	game.Score.Set(6)                          // OnScore(6)
//
// # Sources
//
// A Cell stores a value and notifies only on change, replaying the current
// value to new subscribers. A Channel forwards every value and stores nothing.
// A Constant replays one value and never changes. A Claimable publishes
// snapshots that remember the last acknowledged value.
//
// Reentrant updates are safe: a listener that sets the cell it listens to has
// its update queued and delivered after the current pass, in order.
//
// # Binding Configuration
//
// Receivers bind by parameter type unless a Config says otherwise:
//
//	cfg := canopy.Config{
//	    {Receiver: "OnName", Type: "Player", Path: "name"},
//	    {Receiver: "OnDebug", Type: canopy.IgnoreReceiver},
//	}
//
// Type names a type registered in the catalog, here the value type of a
// "player" capability; Path walks accessors declared with Accessor and
// SourceAccessor, starting from that value. When a source hop delivers a new instance,
// everything downstream is re-subscribed against it.
//
// Plans are compiled once per (node type, configuration) and shared.
//
// # Lifecycle
//
//	ctrl.Disable() // values are buffered, last one wins
//	ctrl.Enable()  // buffered value delivered if it differs from the last one
//	ctrl.Destroy() // bindings disposed, cleanups run, OnDestroy fired
//
// Nodes opt into the Creator, Enabler, Disabler and Destroyer hooks.
// Destroy is final: the node's controller rejects every later call.
//
// # Errors
//
// Missing providers, unassigned capabilities, reentrant builds and broken
// access paths are logged and reported to extensions as *BindError; the
// affected binding is skipped and the node keeps running. Only a structurally
// malformed Config fails, and only for the node using it.
//
// # Extensions
//
// Extensions wrap lifecycle operations and observe binding problems:
//
//	engine := canopy.MustEngine(
//	    canopy.WithExtension(extensions.NewLoggingExtension(logger)),
//	)
//
// # Thread Safety
//
// None. The engine, its sources and controllers are meant to be used from a
// single goroutine. Ancestors must outlive their descendants.
package canopy
