// Package testharness runs declarative bridge scenarios loaded from
// YAML: a source-object definition plus a list of steps that write,
// mutate, drain, and assert on both sides of the bridge.
package testharness

// Scenario represents a single scenario loaded from YAML.
type Scenario struct {
	// ID is the unique scenario identifier (e.g., "SC-SLOT-001").
	ID string `yaml:"id"`

	// Name is a human-readable name.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Source defines the source object to bridge.
	Source SourceSpec `yaml:"source"`

	// DisableDirectMutation builds the bridge with writes dropped.
	DisableDirectMutation bool `yaml:"disable_direct_mutation,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`
}

// SourceSpec defines the members of the source object.
type SourceSpec struct {
	// Data maps member names to initial values.
	Data map[string]any `yaml:"data,omitempty"`

	// Computed maps member names to computed definitions.
	Computed map[string]ComputedSpec `yaml:"computed,omitempty"`

	// Triggers lists write-only member names. Each records its writes
	// into a data member named "_<trigger>" for assertions.
	Triggers []string `yaml:"triggers,omitempty"`
}

// ComputedSpec defines a derived member as one of a fixed set of
// operations over other members. The harness does not embed an
// expression language; these cover the shapes the scenarios need.
type ComputedSpec struct {
	// Op is one of "double", "sum", "len", "concat".
	Op string `yaml:"op"`

	// Of names the operand members.
	Of []string `yaml:"of"`

	// Writable adds a write path that assigns the first operand.
	Writable bool `yaml:"writable,omitempty"`
}

// Step represents a single action in a scenario.
type Step struct {
	// Action is one of "set", "source-set", "mutate", "source-mutate",
	// "drain", "expect", "expect-source", "expect-error".
	Action string `yaml:"action"`

	// Member names the affected member.
	Member string `yaml:"member,omitempty"`

	// Value is the value to write or the expected value.
	Value any `yaml:"value,omitempty"`

	// Op is the nested mutation to apply (mutate actions):
	// "push", "pop", "shift", "unshift", "splice", "set-index", "set-key".
	Op string `yaml:"op,omitempty"`

	// Args are the mutation arguments.
	Args []any `yaml:"args,omitempty"`

	// Contains is a substring the expected error must contain
	// (expect-error action).
	Contains string `yaml:"contains,omitempty"`

	// Description explains what this step does.
	Description string `yaml:"description,omitempty"`
}
