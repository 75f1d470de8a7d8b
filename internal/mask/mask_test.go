package mask_test

import (
	"reflect"
	"testing"

	"github.com/johnny111272/grib-getter/internal/mask"
	"github.com/johnny111272/grib-getter/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

var keys = []string{"TMP", "UGRD", "VGRD", "GUST", "PRMSL", "APCP", "CAPE", "REFC"}

// mustBits decodes a mask or fails the test.
func mustBits(t *testing.T, hexMask string, length int) []byte {
	t.Helper()
	bits, err := mask.Bits(hexMask, length)
	if err != nil {
		t.Fatalf("Bits(%q, %d): %v", hexMask, length, err)
	}
	return bits
}

// ─── Bits ────────────────────────────────────────────────────────────────────

func TestBitsPadsToLength(t *testing.T) {
	// 0x1 over 8 keys: only the last bit set.
	bits := mustBits(t, "0x1", 8)
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	if !reflect.DeepEqual(bits, want) {
		t.Errorf("expected %v, got %v", want, bits)
	}
}

func TestBitsHighBitIsFirstKey(t *testing.T) {
	bits := mustBits(t, "0x80", 8)
	want := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if !reflect.DeepEqual(bits, want) {
		t.Errorf("expected %v, got %v", want, bits)
	}
}

func TestBitsAcceptsBareHex(t *testing.T) {
	with := mustBits(t, "0xa5", 8)
	without := mustBits(t, "a5", 8)
	if !reflect.DeepEqual(with, without) {
		t.Errorf("prefix should not matter: %v vs %v", with, without)
	}
}

func TestBitsRejectsInvalidHex(t *testing.T) {
	if _, err := mask.Bits("0xzz", 8); err == nil {
		t.Error("expected error for non-hex mask")
	}
	if _, err := mask.Bits("", 8); err == nil {
		t.Error("expected error for empty mask")
	}
}

func TestBitsRejectsOversizeMask(t *testing.T) {
	// 0x100 needs 9 bits.
	if _, err := mask.Bits("0x100", 8); err == nil {
		t.Error("expected error for mask wider than key list")
	}
}

// ─── SelectedNames / Encode ──────────────────────────────────────────────────

func TestSelectedNamesPreservesKeyOrder(t *testing.T) {
	// TMP (bit 0 from MSB) and PRMSL (bit 4): 1000_1000 = 0x88.
	got, err := mask.SelectedNames(keys, "0x88")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"TMP", "PRMSL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	selected := []string{"UGRD", "VGRD", "REFC"}
	hexMask, err := mask.Encode(keys, selected)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := mask.SelectedNames(keys, hexMask)
	if err != nil {
		t.Fatalf("SelectedNames(%q): %v", hexMask, err)
	}
	if !reflect.DeepEqual(back, selected) {
		t.Errorf("round trip: expected %v, got %v", selected, back)
	}
}

func TestEncodeAllKeys(t *testing.T) {
	hexMask, err := mask.Encode(keys, keys)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if hexMask != "0xff" {
		t.Errorf("expected 0xff, got %s", hexMask)
	}
}

func TestEncodeRejectsUnknownKey(t *testing.T) {
	if _, err := mask.Encode(keys, []string{"NOPE"}); err == nil {
		t.Error("expected error for unknown key")
	}
}

// ─── EncodeSelected ──────────────────────────────────────────────────────────

func TestEncodeSelectedFragment(t *testing.T) {
	got, err := mask.EncodeSelected(model.SelectedKeys{
		AllKeys: keys,
		HexMask: "0xc0",
		Prefix:  "var_",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "var_TMP=on&var_UGRD=on"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEncodeSelectedEmptyMaskSelectsNothing(t *testing.T) {
	got, err := mask.EncodeSelected(model.SelectedKeys{
		AllKeys: keys,
		HexMask: "0x0",
		Prefix:  "lev_",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty fragment, got %q", got)
	}
}

func TestEncodeSelectedPropagatesMaskError(t *testing.T) {
	_, err := mask.EncodeSelected(model.SelectedKeys{
		AllKeys: keys,
		HexMask: "0x1ff",
		Prefix:  "var_",
	})
	if err == nil {
		t.Error("expected error for oversize mask")
	}
}
