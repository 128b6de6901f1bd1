// Package secrets resolves integration credentials through a fixed priority
// chain: preloaded/environment value, secret-manager lookup, interactive
// prompt. A required credential that survives all three sources empty is a
// hard failure; an optional one is recorded as skipped.
package secrets

import "context"

// Probe is a bounded-time outbound call that confirms a resolved value is
// accepted by the remote system. Probes validate, they never obtain.
type Probe func(ctx context.Context, value string) error

// Spec declares one credential the tool needs to obtain.
type Spec struct {
	// Key is the canonical env-var-style name; it doubles as the variable
	// used to preload the value and skip the prompt.
	Key string

	Description string
	Hint        string // example/format hint shown in the prompt
	Required    bool

	// Group names the integration this credential belongs to for the
	// end-of-run summary.
	Group string

	// ManagerItem is the item name in the secret manager; defaults to Key.
	ManagerItem string
	// ManagerField is the item field holding the value.
	ManagerField string

	// Probe validates the resolved value remotely; nil means the consuming
	// call is itself the check.
	Probe Probe
}

func (s Spec) managerItem() string {
	if s.ManagerItem != "" {
		return s.ManagerItem
	}
	return s.Key
}

func (s Spec) managerField() string {
	if s.ManagerField != "" {
		return s.ManagerField
	}
	return "credential"
}

// Source identifies where a value came from.
type Source string

const (
	SourcePreload Source = "environment/preload"
	SourceManager Source = "secret-manager"
	SourcePrompt  Source = "prompt"
	SourceNone    Source = "none"
)

// Resolution is the outcome of resolving one Spec.
type Resolution struct {
	Spec   Spec
	Value  string
	Source Source

	// Warning carries a non-fatal problem met along the way: manager
	// unreachable, or a failed validation probe.
	Warning error
}

// Skipped reports whether an optional credential was left unset.
func (r Resolution) Skipped() bool {
	return r.Value == ""
}
