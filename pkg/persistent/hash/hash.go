// Package hash contains the hash functions used by the persistent map and by
// structural fingerprints of expressions.
package hash

// DJBInit is the initial accumulator of the DJB hash.
const DJBInit uint32 = 5381

// DJBCombine combines an accumulator with another hash value.
func DJBCombine(acc, h uint32) uint32 {
	return mul33(acc) + h
}

// DJB combines a sequence of hash values.
func DJB(hs ...uint32) uint32 {
	acc := DJBInit
	for _, h := range hs {
		acc = DJBCombine(acc, h)
	}
	return acc
}

// String hashes a string.
func String(s string) uint32 {
	h := DJBInit
	for i := 0; i < len(s); i++ {
		h = DJBCombine(h, uint32(s[i]))
	}
	return h
}

// Strings hashes a sequence of strings. It is different from hashing their
// concatenation.
func Strings(ss []string) uint32 {
	acc := DJBCombine(DJBInit, uint32(len(ss)))
	for _, s := range ss {
		acc = DJBCombine(acc, String(s))
	}
	return acc
}

func mul33(u uint32) uint32 {
	return u<<5 + u
}
