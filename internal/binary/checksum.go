package binary

// Lookup3Checksum computes the Jenkins lookup3 "hashlittle" hash with an
// initial value of 0. It protects the superblock and every object header.
func Lookup3Checksum(data []byte) uint32 {
	initval := uint32(0xdeadbeef) + uint32(len(data))
	a, b, c := initval, initval, initval
	k := data

	// Strictly more than 12: the final block always goes through the tail.
	for len(k) > 12 {
		a += le32(k[0:4])
		b += le32(k[4:8])
		c += le32(k[8:12])
		a, b, c = lookup3Mix(a, b, c)
		k = k[12:]
	}

	switch len(k) {
	case 12:
		c += uint32(k[11]) << 24
		fallthrough
	case 11:
		c += uint32(k[10]) << 16
		fallthrough
	case 10:
		c += uint32(k[9]) << 8
		fallthrough
	case 9:
		c += uint32(k[8])
		fallthrough
	case 8:
		b += uint32(k[7]) << 24
		fallthrough
	case 7:
		b += uint32(k[6]) << 16
		fallthrough
	case 6:
		b += uint32(k[5]) << 8
		fallthrough
	case 5:
		b += uint32(k[4])
		fallthrough
	case 4:
		a += uint32(k[3]) << 24
		fallthrough
	case 3:
		a += uint32(k[2]) << 16
		fallthrough
	case 2:
		a += uint32(k[1]) << 8
		fallthrough
	case 1:
		a += uint32(k[0])
	case 0:
		return c
	}

	_, _, c = lookup3Final(a, b, c)
	return c
}

// VerifyLookup3 reports whether data hashes to expected.
func VerifyLookup3(data []byte, expected uint32) bool {
	return Lookup3Checksum(data) == expected
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func lookup3Mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= rotl32(c, 4)
	c += b
	b -= a
	b ^= rotl32(a, 6)
	a += c
	c -= b
	c ^= rotl32(b, 8)
	b += a
	a -= c
	a ^= rotl32(c, 16)
	c += b
	b -= a
	b ^= rotl32(a, 19)
	a += c
	c -= b
	c ^= rotl32(b, 4)
	b += a
	return a, b, c
}

func lookup3Final(a, b, c uint32) (uint32, uint32, uint32) {
	c ^= b
	c -= rotl32(b, 14)
	a ^= c
	a -= rotl32(c, 11)
	b ^= a
	b -= rotl32(a, 25)
	c ^= b
	c -= rotl32(b, 16)
	a ^= c
	a -= rotl32(c, 4)
	b ^= a
	b -= rotl32(a, 14)
	c ^= b
	c -= rotl32(b, 24)
	return a, b, c
}

func rotl32(x uint32, k uint) uint32 {
	return (x << k) | (x >> (32 - k))
}
