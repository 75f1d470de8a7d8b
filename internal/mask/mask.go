// Package mask implements the hex bitmask codec used to pick variables
// and levels out of a product's ordered key lists. A mask is a hex
// integer read as a bit string zero-padded on the left to the key list
// length; bit i counted from the most-significant end selects key i.
package mask

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/johnny111272/grib-getter/internal/model"
)

// Bits decodes a hex mask into one byte per key, 1 for selected. The
// result always has exactly length entries. An error is returned when
// the mask is not valid hex or sets bits beyond the key list.
func Bits(hexMask string, length int) ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(hexMask, "0x"), "0X")
	if s == "" {
		return nil, fmt.Errorf("empty mask %q", hexMask)
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex mask %q", hexMask)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative mask %q", hexMask)
	}
	if n.BitLen() > length {
		return nil, fmt.Errorf("mask %q needs %d bits but key list has %d entries",
			hexMask, n.BitLen(), length)
	}
	bits := make([]byte, length)
	for i := 0; i < n.BitLen(); i++ {
		bits[length-1-i] = byte(n.Bit(i))
	}
	return bits, nil
}

// SelectedNames returns the keys a mask selects, in key list order.
func SelectedNames(allKeys []string, hexMask string) ([]string, error) {
	bits, err := Bits(hexMask, len(allKeys))
	if err != nil {
		return nil, err
	}
	var out []string
	for i, b := range bits {
		if b == 1 {
			out = append(out, allKeys[i])
		}
	}
	return out, nil
}

// Encode builds the hex mask selecting exactly the given keys. Unknown
// names are an error so preset definitions fail loudly when a key list
// changes underneath them.
func Encode(allKeys, selected []string) (string, error) {
	index := make(map[string]int, len(allKeys))
	for i, k := range allKeys {
		index[k] = i
	}
	n := new(big.Int)
	for _, name := range selected {
		i, ok := index[name]
		if !ok {
			return "", fmt.Errorf("unknown key %q", name)
		}
		n.SetBit(n, len(allKeys)-1-i, 1)
	}
	return "0x" + n.Text(16), nil
}

// EncodeSelected renders a SelectedKeys into the query-string fragment
// NOMADS expects: each selected key becomes prefix+key=on, ampersand
// joined. Key names are escaped in case a product ever carries one
// with characters outside the query-safe set.
func EncodeSelected(sel model.SelectedKeys) (string, error) {
	names, err := SelectedNames(sel.AllKeys, sel.HexMask)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = url.QueryEscape(sel.Prefix+name) + "=on"
	}
	return strings.Join(parts, "&"), nil
}
