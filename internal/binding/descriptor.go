// Package binding translates the editor's provider/target/mapping
// selection into the persisted design-source shape and back.
package binding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crafthq/designbind/internal/catalog"
	"github.com/crafthq/designbind/internal/mapping"
	"github.com/crafthq/designbind/internal/schema"
)

// Descriptor is the persisted binding between a template's fields and a
// chosen external design's slots. It is stored on the template as the
// design_source JSON column; nil means the builtin zone-based renderer.
type Descriptor struct {
	Provider   catalog.Provider `json:"provider"`
	TargetID   string           `json:"target_id"`
	TargetName string           `json:"target_name,omitempty"`
	FieldMap   mapping.FieldMap `json:"field_map,omitempty"`
}

// ErrNoTarget is returned when a non-builtin provider is selected but no
// target has been chosen; such a selection must not be persisted.
var ErrNoTarget = fmt.Errorf("no design target selected")

// Build produces the descriptor to persist for the current editor
// selection. It returns nil for builtin (no external design source) and
// ErrNoTarget when a provider tab is active without a chosen target.
// Unmapped entries are stripped: absence means "not mapped", never an
// empty-string value.
func Build(provider catalog.Provider, target *catalog.Target, fieldMap mapping.FieldMap) (*Descriptor, error) {
	if provider == catalog.ProviderBuiltin {
		return nil, nil
	}
	if target == nil || target.ID == "" {
		return nil, ErrNoTarget
	}

	d := &Descriptor{
		Provider:   provider,
		TargetID:   target.ID,
		TargetName: target.Name,
	}
	for field, slotID := range fieldMap {
		if slotID == "" {
			continue
		}
		if d.FieldMap == nil {
			d.FieldMap = make(mapping.FieldMap)
		}
		d.FieldMap[field] = slotID
	}
	return d, nil
}

// Validate checks a loaded descriptor's internal consistency.
func (d *Descriptor) Validate() error {
	if _, err := catalog.ParseProvider(string(d.Provider)); err != nil {
		return err
	}
	if d.Provider == catalog.ProviderBuiltin {
		if d.TargetID != "" || len(d.FieldMap) > 0 {
			return fmt.Errorf("builtin design source carries no target or mapping")
		}
		return nil
	}
	if d.TargetID == "" {
		return ErrNoTarget
	}
	for field, slotID := range d.FieldMap {
		if field == "" || slotID == "" {
			return fmt.Errorf("field map entry %q -> %q is incomplete", field, slotID)
		}
	}
	return nil
}

// Parse decodes a persisted design_source value. A null or empty value
// yields nil (builtin fallback).
func Parse(data []byte) (*Descriptor, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse design source: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// EditorState is what the template editor needs to resume work on a
// saved descriptor: the live slot list and the reconciled mapping.
type EditorState struct {
	Provider   catalog.Provider     `json:"provider"`
	TargetID   string               `json:"target_id"`
	TargetName string               `json:"target_name,omitempty"`
	Slots      []catalog.DesignSlot `json:"slots"`
	FieldMap   mapping.FieldMap     `json:"field_map"`
}

// Hydrate rebuilds editor state from a saved descriptor. Slots are never
// persisted, so they are re-fetched live and the saved mapping is merged
// against them; confirmed choices survive as long as their field and
// slot still exist.
func Hydrate(ctx context.Context, reg *catalog.Registry, d *Descriptor, fields schema.Schema) (*EditorState, error) {
	if d == nil {
		return &EditorState{
			Provider: catalog.ProviderBuiltin,
			Slots:    []catalog.DesignSlot{},
			FieldMap: mapping.FieldMap{},
		}, nil
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	src, err := reg.Source(d.Provider)
	if err != nil {
		return nil, err
	}
	slots, err := src.ListSlots(ctx, d.TargetID)
	if err != nil {
		return nil, err
	}

	return &EditorState{
		Provider:   d.Provider,
		TargetID:   d.TargetID,
		TargetName: d.TargetName,
		Slots:      slots,
		FieldMap:   mapping.Propose(fields, slots, d.FieldMap),
	}, nil
}
