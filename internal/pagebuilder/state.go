package pagebuilder

import (
	"fmt"

	"github.com/jwalitptl/admin-console/pkg/errors"
)

// Accordion keeps at most one section open. It lives only as long as the
// preview.
type Accordion struct {
	open int
}

func NewAccordion(initiallyOpen int) *Accordion {
	return &Accordion{open: initiallyOpen}
}

// Toggle opens i and closes the rest, or closes i if it is already open.
func (a *Accordion) Toggle(i int) {
	if a.open == i {
		a.open = -1
		return
	}
	a.open = i
}

func (a *Accordion) IsOpen(i int) bool {
	return a.open == i
}

// Open returns the open section, or -1.
func (a *Accordion) Open() int {
	return a.open
}

// PackPicker tracks the pack and quantity chosen in a preview.
type PackPicker struct {
	packs    []Pack
	selected int
	quantity int
}

func NewPackPicker(packs []Pack) *PackPicker {
	if len(packs) == 0 {
		packs = DummyProduct().Packs
	}
	return &PackPicker{packs: packs, quantity: 1}
}

func (p *PackPicker) Select(i int) error {
	if i < 0 || i >= len(p.packs) {
		return errors.NewValidation("pack", fmt.Sprintf("no pack at position %d", i))
	}
	p.selected = i
	return nil
}

// SetQuantity keeps the quantity at least 1.
func (p *PackPicker) SetQuantity(q int) {
	if q < 1 {
		q = 1
	}
	p.quantity = q
}

func (p *PackPicker) Selected() Pack {
	return p.packs[p.selected]
}

func (p *PackPicker) Quantity() int {
	return p.quantity
}

func (p *PackPicker) Total() float64 {
	return p.Selected().Price * float64(p.quantity)
}
