package types

import "fmt"

func errListTooBig(field string, got, limit int) error {
	return fmt.Errorf("ssz: %s has %d elements, exceeds limit %d", field, got, limit)
}

func errBadLength(typ string, n int) error {
	return fmt.Errorf("ssz: %s encoding has invalid length %d", typ, n)
}
