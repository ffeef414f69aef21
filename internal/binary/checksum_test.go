package binary

import (
	"testing"
)

func TestLookup3KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected uint32
	}{
		{"empty", []byte{}, 0xdeadbeef},
		{"four score", []byte("Four score and seven years ago"), 0x17770551},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lookup3Checksum(tt.input); got != tt.expected {
				t.Errorf("Lookup3Checksum(%q) = 0x%08x, want 0x%08x", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLookup3ChecksumLengthVariations(t *testing.T) {
	checksums := make(map[uint32]int)

	for length := 0; length <= 24; length++ {
		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i)
		}
		checksums[Lookup3Checksum(data)] = length
	}

	if len(checksums) != 25 {
		t.Errorf("expected 25 unique checksums for lengths 0-24, got %d", len(checksums))
	}
}

func TestVerifyLookup3(t *testing.T) {
	data := []byte("superblock bytes")
	checksum := Lookup3Checksum(data)

	if !VerifyLookup3(data, checksum) {
		t.Error("VerifyLookup3 should return true for matching checksum")
	}
	if VerifyLookup3(data, checksum+1) {
		t.Error("VerifyLookup3 should return false for non-matching checksum")
	}

	data[0] ^= 0x01
	if VerifyLookup3(data, checksum) {
		t.Error("VerifyLookup3 should detect a flipped bit")
	}
}

func BenchmarkLookup3Checksum(b *testing.B) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Lookup3Checksum(data)
	}
}
