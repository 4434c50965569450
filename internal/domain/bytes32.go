package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Bytes32 is the fixed-width claim and identifier representation used by the
// oracle and voting contracts.
type Bytes32 [32]byte

// ZeroBytes32 is the all-zero value.
var ZeroBytes32 Bytes32

// DefaultIdentifier is ASSERT_TRUTH, the identifier the oracle uses when none is given.
var DefaultIdentifier = EncodeFixed32("ASSERT_TRUTH")

// printableRatio is the share of printable ASCII a decoded claim needs before
// it is shown as text rather than as a hash label.
const printableRatio = 0.9

// Hex returns the 0x-prefixed lowercase hex form.
func (b Bytes32) Hex() string {
	return hexutil.Encode(b[:])
}

func (b Bytes32) String() string {
	return b.Hex()
}

// IsZero reports whether every byte is zero.
func (b Bytes32) IsZero() bool {
	return b == ZeroBytes32
}

// Array returns the value as the number array the contracts take for [u8; 32].
func (b Bytes32) Array() []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// MarshalJSON encodes as a JSON array of 32 numbers.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Array())
}

// UnmarshalJSON accepts either a JSON number array or a hex string.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &EncodingError{Input: string(data), Reason: "expected hex string"}
		}
		if !IsValidBytes32(s) {
			return &EncodingError{Input: s, Reason: "expected 64 hex characters"}
		}
		parsed, err := ParseBytes32(s)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	}

	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return &EncodingError{Input: string(data), Reason: "expected 32-byte array"}
	}
	if len(nums) != len(b) {
		return &EncodingError{Input: string(data), Reason: "expected exactly 32 elements"}
	}
	for i, n := range nums {
		if n < 0 || n > 255 {
			return &EncodingError{Input: string(data), Reason: "byte value out of range"}
		}
		b[i] = byte(n)
	}
	return nil
}

// EncodeFixed32 UTF-8 encodes text into 32 bytes, truncating longer input and
// zero-padding shorter input on the right.
func EncodeFixed32(text string) Bytes32 {
	var out Bytes32
	copy(out[:], text)
	return out
}

// DecodeFixed32 decodes up to the first zero byte. Invalid UTF-8 is replaced,
// never reported.
func DecodeFixed32(b Bytes32) string {
	end := bytes.IndexByte(b[:], 0)
	if end < 0 {
		end = len(b)
	}
	return strings.ToValidUTF8(string(b[:end]), string(utf8.RuneError))
}

// DecodeForDisplay returns the claim text when it is mostly printable ASCII,
// otherwise a short "Claim Hash: 0x12345678...9abcdef0" label.
func DecodeForDisplay(b Bytes32) string {
	decoded := DecodeFixed32(b)
	printable := strings.Map(func(r rune) rune {
		if r >= 0x20 && r <= 0x7e {
			return r
		}
		return -1
	}, decoded)

	total := utf8.RuneCountInString(decoded)
	if total > 0 &&
		float64(len(printable))/float64(total) > printableRatio &&
		strings.TrimSpace(printable) != "" {
		return printable
	}

	h := b.Hex()
	return "Claim Hash: " + h[:10] + "..." + h[len(h)-8:]
}

// EncodeMulti32 splits text across consecutive 32-byte chunks. It always
// returns at least one chunk.
func EncodeMulti32(text string) []Bytes32 {
	raw := []byte(text)
	chunks := make([]Bytes32, 0, len(raw)/32+1)
	for i := 0; i < len(raw); i += 32 {
		var chunk Bytes32
		copy(chunk[:], raw[i:])
		chunks = append(chunks, chunk)
	}
	if len(chunks) == 0 {
		chunks = append(chunks, ZeroBytes32)
	}
	return chunks
}

// DecodeMulti32 joins chunks back into text. Only zero bytes at the very end
// are treated as padding.
func DecodeMulti32(chunks []Bytes32) string {
	all := make([]byte, 0, len(chunks)*32)
	for _, c := range chunks {
		all = append(all, c[:]...)
	}
	all = bytes.TrimRight(all, "\x00")
	return strings.ToValidUTF8(string(all), string(utf8.RuneError))
}

// HexToBytes decodes hex with or without a 0x prefix.
func HexToBytes(s string) ([]byte, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(clean)%2 != 0 {
		return nil, &EncodingError{Input: s, Reason: "odd length hex string"}
	}
	out, err := hexutil.Decode("0x" + clean)
	if err != nil {
		return nil, &EncodingError{Input: s, Reason: err.Error()}
	}
	return out, nil
}

// BytesToHex returns the 0x-prefixed lowercase hex form of raw.
func BytesToHex(raw []byte) string {
	return hexutil.Encode(raw)
}

// ParseBytes32 decodes hex into a Bytes32. Short input is zero-padded on the
// right and long input truncated, matching the contracts' argument helpers.
func ParseBytes32(s string) (Bytes32, error) {
	raw, err := HexToBytes(s)
	if err != nil {
		return ZeroBytes32, err
	}
	var out Bytes32
	copy(out[:], raw)
	return out, nil
}

// MustParseBytes32 is ParseBytes32 for constants and tests.
func MustParseBytes32(s string) Bytes32 {
	b, err := ParseBytes32(s)
	if err != nil {
		panic(err)
	}
	return b
}

// IsValidBytes32 reports whether s is exactly 64 hex characters, with or
// without a 0x prefix.
func IsValidBytes32(s string) bool {
	clean := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(clean) != 64 {
		return false
	}
	for _, c := range clean {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// HashClaim returns the Keccak-256 of a claim that does not fit in 32 bytes.
func HashClaim(text string) Bytes32 {
	return Bytes32(crypto.Keccak256Hash([]byte(text)))
}
