package canopy

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// IgnoreReceiver as a record's Type leaves the receiver unbound.
const IgnoreReceiver = "-"

// BindingConfig overrides how one receiver is bound.
type BindingConfig struct {
	// Receiver is the declared receiver name.
	Receiver string `yaml:"receiver" json:"receiver" mapstructure:"receiver"`
	// Type, when set, names a registered type to resolve instead of the
	// receiver's parameter type. IgnoreReceiver disables the receiver.
	Type string `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	// Path is an optional access path, hop names joined by PathSeparator.
	Path string `yaml:"path,omitempty" json:"path,omitempty" mapstructure:"path"`
}

// Config is the ordered binding configuration of one node. It is compared by
// value: two configs with equal records in the same order share a plan.
type Config []BindingConfig

// Validate reports structural problems: empty or duplicate receiver names and
// empty path segments. The error wraps ErrMalformedConfig.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c))
	for i, rec := range c {
		switch {
		case rec.Receiver == "":
			errs = append(errs, fmt.Errorf("record %d: empty receiver name", i))
		case seen[rec.Receiver]:
			errs = append(errs, fmt.Errorf("record %d: duplicate receiver %q", i, rec.Receiver))
		}
		seen[rec.Receiver] = true
		if rec.Path != "" {
			for j, seg := range SplitPath(rec.Path) {
				if strings.TrimSpace(seg) == "" {
					errs = append(errs, fmt.Errorf("record %d (%s): empty path segment %d in %q", i, rec.Receiver, j, rec.Path))
				}
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrMalformedConfig, errors.Join(errs...))
}

// Key returns the canonical encoding used as the cache key.
func (c Config) Key() string {
	var sb strings.Builder
	for _, rec := range c {
		sb.WriteString(strconv.Quote(rec.Receiver))
		sb.WriteByte(',')
		sb.WriteString(strconv.Quote(rec.Type))
		sb.WriteByte(',')
		sb.WriteString(strconv.Quote(rec.Path))
		sb.WriteByte(';')
	}
	return sb.String()
}

// Fingerprint returns a short stable digest of the configuration.
func (c Config) Fingerprint() string {
	return strconv.FormatUint(xxhash.Sum64String(c.Key()), 16)
}

func (c Config) lookup(receiver string) (BindingConfig, bool) {
	for _, rec := range c {
		if rec.Receiver == receiver {
			return rec, true
		}
	}
	return BindingConfig{}, false
}

// BindingInstruction is one compiled receiver binding.
type BindingInstruction struct {
	// Receiver is the receiver name.
	Receiver string
	// Type is the capability type resolved among the ancestors.
	Type reflect.Type
	// Param is the receiver's parameter type.
	Param reflect.Type
	chain *Chain
	bind  func(node any) func(any)
}

// Path returns the access path, or "" for a direct binding.
func (b *BindingInstruction) Path() string {
	if b.chain == nil {
		return ""
	}
	return b.chain.Path()
}

// Plan is the compiled, immutable set of instructions for a node type under
// one configuration.
type Plan struct {
	spec         *TypeSpec
	nodeType     reflect.Type
	instructions []*BindingInstruction
}

// NodeType returns the type the plan was compiled for.
func (p *Plan) NodeType() reflect.Type {
	return p.nodeType
}

// Instructions returns the instructions in receiver declaration order.
func (p *Plan) Instructions() []*BindingInstruction {
	return append([]*BindingInstruction(nil), p.instructions...)
}

// Apply resolves each instruction for node and subscribes the ones that
// resolve. Bindings start unregistered: anything replayed while subscribing
// lands in their pending slot.
func (p *Plan) Apply(resolver *Resolver, node any, report func(*BindError)) []*ActiveBinding {
	bindings := make([]*ActiveBinding, 0, len(p.instructions))
	for _, instr := range p.instructions {
		match, ok := resolver.Find(node, instr.Type)
		if !ok {
			err := newBindError(KindResolutionFailure, p.spec, instr.Receiver,
				fmt.Errorf("%w: %s", ErrNotFound, instr.Type))
			err.Node = node
			err.Path = instr.Path()
			report(err)
			continue
		}
		b := &ActiveBinding{
			instruction: instr,
			provider:    match.Provider,
			deliver:     instr.bind(node),
			equal:       anyEqual,
		}
		if instr.chain == nil {
			b.equal = match.Capability.Equal
			b.unsubscribe = match.Capability.Listen(b.receive)
		} else {
			b.unsubscribe = instr.chain.Bind(match.Capability, b.receive)
		}
		bindings = append(bindings, b)
	}
	return bindings
}

type planKey struct {
	nodeType reflect.Type
	config   string
}

// PlanCache compiles binding plans once per (node type, configuration).
type PlanCache struct {
	registry *Registry
	plans    *Cache[planKey, *Plan]
	report   func(*BindError)
}

// NewPlanCache creates a cache compiling against registry. report receives
// construction failures found at compile time; it may be nil.
func NewPlanCache(registry *Registry, report func(*BindError)) *PlanCache {
	if report == nil {
		report = func(*BindError) {}
	}
	return &PlanCache{
		registry: registry,
		plans:    NewCache[planKey, *Plan](),
		report:   report,
	}
}

// Build returns the plan for nodeType under cfg, compiling it on first use.
// Structurally equal configurations return the same *Plan. A malformed cfg
// fails with ErrMalformedConfig and is not cached.
func (c *PlanCache) Build(nodeType reflect.Type, cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := planKey{nodeType: nodeType, config: cfg.Key()}
	return c.plans.GetOrBuild(key, func() (*Plan, error) {
		return c.compile(nodeType, cfg), nil
	})
}

// Compiled returns how many plans have been compiled.
func (c *PlanCache) Compiled() int {
	return c.plans.Builds()
}

func (c *PlanCache) compile(nodeType reflect.Type, cfg Config) *Plan {
	spec, _ := c.registry.Spec(nodeType)
	plan := &Plan{spec: spec, nodeType: nodeType}
	if spec == nil {
		return plan
	}

	for _, rec := range cfg {
		if _, ok := spec.receiver(rec.Receiver); !ok {
			c.fail(spec, rec.Receiver, rec.Path, ErrUnknownReceiver)
		}
	}

	for _, r := range spec.receivers {
		rec, configured := cfg.lookup(r.Name)
		if configured && rec.Type == IgnoreReceiver {
			continue
		}
		instr := &BindingInstruction{
			Receiver: r.Name,
			Type:     r.Param,
			Param:    r.Param,
			bind:     r.bind,
		}
		if configured {
			if err := c.configure(instr, rec); err != nil {
				c.fail(spec, r.Name, rec.Path, err)
				continue
			}
		}
		plan.instructions = append(plan.instructions, instr)
	}
	return plan
}

func (c *PlanCache) configure(instr *BindingInstruction, rec BindingConfig) error {
	if rec.Type != "" {
		t, ok := c.registry.LookupType(rec.Type)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownType, rec.Type)
		}
		instr.Type = t
	}

	if rec.Path == "" {
		if !instr.Type.AssignableTo(instr.Param) {
			return fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, instr.Type, instr.Param)
		}
		return nil
	}

	chain, err := CompileChain(c.registry, instr.Type, SplitPath(rec.Path))
	if err != nil {
		return err
	}
	if !chain.Out().AssignableTo(instr.Param) {
		return fmt.Errorf("%w: path yields %s, receiver takes %s", ErrTypeMismatch, chain.Out(), instr.Param)
	}
	instr.chain = chain
	return nil
}

func (c *PlanCache) fail(spec *TypeSpec, receiver, path string, cause error) {
	err := newBindError(KindBindingConstruction, spec, receiver, cause)
	err.Path = path
	c.report(err)
}
