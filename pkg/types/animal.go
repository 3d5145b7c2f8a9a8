package types

import (
	"fmt"
	"strings"
)

// Variant is the stored discriminant of an animal row. The set is closed:
// every site that maps rows to views switches over exactly these values.
type Variant string

// Animal variants.
const (
	VariantLion  Variant = "lion"
	VariantShark Variant = "shark"
)

// Type names of the Animal variants as they appear in resolved output.
const (
	TypeNameLion  = "Lion"
	TypeNameShark = "Shark"
)

// Variants lists every variant in declaration order.
var Variants = []Variant{
	VariantLion,
	VariantShark,
}

// Valid reports whether v is one of the declared variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantLion, VariantShark:
		return true
	}
	return false
}

// ParseVariant maps external input ("lion", "Lion", "SHARK") onto a Variant.
// Returns ErrUnknownVariant for anything else.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
	return v, nil
}

// AnimalRow is the stored shape shared by every variant. Exactly one speed
// group is populated, chosen by Variant: lions carry WalkSpeed and RunSpeed,
// sharks carry SwimSpeed. A nil speed is absent source data.
type AnimalRow struct {
	ZooKey    Key      `json:"zoo_key"`
	Key       Key      `json:"key"`
	Name      string   `json:"name"`
	Variant   Variant  `json:"variant"`
	WalkSpeed *float64 `json:"walk_speed,omitempty"`
	RunSpeed  *float64 `json:"run_speed,omitempty"`
	SwimSpeed *float64 `json:"swim_speed,omitempty"`
}

// AnimalView is the resolved, polymorphic shape of an animal.
//
// This is a sealed interface: only LionView and SharkView implement it, so a
// type switch over those two cases is exhaustive.
type AnimalView interface {
	// AnimalName returns the name shared by every variant.
	AnimalName() string

	// Variant returns the discriminant of the concrete view.
	Variant() Variant

	animalView()
}

// LionView is the resolved shape of a lion.
type LionView struct {
	Name      string  `json:"name"`
	WalkSpeed float64 `json:"walkSpeed"`
	RunSpeed  float64 `json:"runSpeed"`
}

func (v LionView) AnimalName() string { return v.Name }
func (LionView) Variant() Variant     { return VariantLion }
func (LionView) animalView()          {}

// SharkView is the resolved shape of a shark.
type SharkView struct {
	Name      string  `json:"name"`
	SwimSpeed float64 `json:"swimSpeed"`
}

func (v SharkView) AnimalName() string { return v.Name }
func (SharkView) Variant() Variant     { return VariantShark }
func (SharkView) animalView()          {}

// TypeName returns the output type name of a concrete view, used to tag
// polymorphic results for client-side disambiguation.
// Panics on a nil view.
func TypeName(v AnimalView) string {
	switch v.(type) {
	case LionView, *LionView:
		return TypeNameLion
	case SharkView, *SharkView:
		return TypeNameShark
	}
	panic(fmt.Sprintf("types: unexpected animal view %T", v))
}

// NewLion is the write model for inserting a lion.
type NewLion struct {
	Name      string  `json:"name" mapstructure:"name"`
	WalkSpeed float64 `json:"walkSpeed" mapstructure:"walkSpeed"`
	RunSpeed  float64 `json:"runSpeed" mapstructure:"runSpeed"`
}

// NewShark is the write model for inserting a shark.
type NewShark struct {
	Name      string  `json:"name" mapstructure:"name"`
	SwimSpeed float64 `json:"swimSpeed" mapstructure:"swimSpeed"`
}
