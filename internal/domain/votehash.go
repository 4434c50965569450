package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
)

// Canonical DVM prices. TRUE is 1.0 in 18-decimal fixed point.
const (
	PriceTrueString  = "1000000000000000000"
	PriceFalseString = "0"
)

var (
	i128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	i128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
)

// PriceTrue returns a fresh copy of the TRUE price.
func PriceTrue() *big.Int {
	p, _ := new(big.Int).SetString(PriceTrueString, 10)
	return p
}

// PriceFalse returns a fresh copy of the FALSE price.
func PriceFalse() *big.Int {
	return new(big.Int)
}

// VotePrice maps a boolean vote to its canonical price.
func VotePrice(vote bool) *big.Int {
	if vote {
		return PriceTrue()
	}
	return PriceFalse()
}

// ParsePrice parses a decimal i128 price.
func ParsePrice(s string) (*big.Int, error) {
	p, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &EncodingError{Input: s, Reason: "price is not a decimal integer"}
	}
	if p.Cmp(i128Min) < 0 || p.Cmp(i128Max) > 0 {
		return nil, &EncodingError{Input: s, Reason: "price outside i128 range"}
	}
	return p, nil
}

// EncodeI128LE encodes v as 16 little-endian two's complement bytes, the same
// layout as Rust's i128::to_le_bytes.
func EncodeI128LE(v *big.Int) ([16]byte, error) {
	var out [16]byte
	if v == nil {
		return out, &EncodingError{Reason: "nil price"}
	}
	if v.Cmp(i128Min) < 0 || v.Cmp(i128Max) > 0 {
		return out, &EncodingError{Input: v.String(), Reason: "value outside i128 range"}
	}

	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	be := u.FillBytes(make([]byte, 16))
	for i := range out {
		out[i] = be[15-i]
	}
	return out, nil
}

// DecodeI128LE is the inverse of EncodeI128LE.
func DecodeI128LE(b [16]byte) *big.Int {
	be := make([]byte, 16)
	for i := range b {
		be[15-i] = b[i]
	}
	v := new(big.Int).SetBytes(be)
	if b[15]&0x80 != 0 {
		v.Sub(v, two128)
	}
	return v
}

// VoteHashPreimage returns le16(price) || salt, 48 bytes.
func VoteHashPreimage(price *big.Int, salt Bytes32) ([]byte, error) {
	le, err := EncodeI128LE(price)
	if err != nil {
		return nil, err
	}
	preimage := make([]byte, 0, len(le)+len(salt))
	preimage = append(preimage, le[:]...)
	preimage = append(preimage, salt[:]...)
	return preimage, nil
}

// ComputeVoteHash returns sha256(le16(price) || salt). The voting contract
// recomputes exactly this on reveal.
func ComputeVoteHash(price *big.Int, salt Bytes32) (Bytes32, error) {
	preimage, err := VoteHashPreimage(price, salt)
	if err != nil {
		return ZeroBytes32, err
	}
	return Bytes32(sha256.Sum256(preimage)), nil
}

// GenerateSalt draws 32 bytes from the system CSPRNG.
func GenerateSalt() (Bytes32, error) {
	return GenerateSaltFrom(rand.Reader)
}

// GenerateSaltFrom reads a salt from r. Production callers must pass a
// cryptographically secure source.
func GenerateSaltFrom(r io.Reader) (Bytes32, error) {
	var salt Bytes32
	if _, err := io.ReadFull(r, salt[:]); err != nil {
		return ZeroBytes32, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
