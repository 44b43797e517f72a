package catalog

import "context"

// Builtin is the zone-based fallback renderer: always connected, no
// external targets or slots to browse.
type Builtin struct{}

// NewBuiltin creates the builtin source.
func NewBuiltin() *Builtin {
	return &Builtin{}
}

func (b *Builtin) Provider() Provider {
	return ProviderBuiltin
}

func (b *Builtin) IsConnected(ctx context.Context) (bool, error) {
	return true, nil
}

func (b *Builtin) ListTargets(ctx context.Context, locator string) ([]Target, error) {
	return []Target{}, nil
}

func (b *Builtin) ListSlots(ctx context.Context, targetID string) ([]DesignSlot, error) {
	return []DesignSlot{}, nil
}
