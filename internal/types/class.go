package types

import (
	"fmt"
	"strings"
)

// PurchaseClass tags the whole order at export time.
type PurchaseClass int

const (
	ClassStock PurchaseClass = iota
	ClassFull
	ClassBackorder
)

// Classes lists every purchase class in display order.
var Classes = []PurchaseClass{ClassStock, ClassFull, ClassBackorder}

// Literal returns the token written to the ClasCompra column.
func (c PurchaseClass) Literal() string {
	switch c {
	case ClassFull:
		return "FULL"
	case ClassBackorder:
		return "ENCOMENDA"
	default:
		return "ESTOQUE"
	}
}

// String returns the enum name.
func (c PurchaseClass) String() string {
	switch c {
	case ClassFull:
		return "FULL"
	case ClassBackorder:
		return "BACKORDER"
	default:
		return "STOCK"
	}
}

// ParsePurchaseClass accepts the enum name or the export literal, in any case.
// An empty string yields ClassStock, matching the operator form default.
func ParsePurchaseClass(s string) (PurchaseClass, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "STOCK", "ESTOQUE":
		return ClassStock, nil
	case "FULL":
		return ClassFull, nil
	case "BACKORDER", "ENCOMENDA":
		return ClassBackorder, nil
	default:
		return ClassStock, fmt.Errorf("unknown purchase class %q (want STOCK, FULL or BACKORDER)", s)
	}
}
