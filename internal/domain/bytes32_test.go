package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bytes32Gen() gopter.Gen {
	return gen.SliceOfN(32, gen.UInt8()).Map(func(raw []uint8) Bytes32 {
		var b Bytes32
		copy(b[:], raw)
		return b
	})
}

func TestBytes32Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("hex round trips", prop.ForAll(
		func(b Bytes32) bool {
			parsed, err := ParseBytes32(b.Hex())
			return err == nil && parsed == b && IsValidBytes32(b.Hex())
		},
		bytes32Gen(),
	))

	properties.Property("JSON number array round trips", prop.ForAll(
		func(b Bytes32) bool {
			data, err := json.Marshal(b)
			if err != nil {
				return false
			}
			var out Bytes32
			return json.Unmarshal(data, &out) == nil && out == b
		},
		bytes32Gen(),
	))

	properties.Property("short ASCII text round trips through fixed encoding", prop.ForAll(
		func(s string) bool {
			if len(s) > 32 {
				s = s[:32]
			}
			return DecodeFixed32(EncodeFixed32(s)) == s
		},
		gen.AlphaString(),
	))

	properties.Property("multi chunk encoding round trips", prop.ForAll(
		func(s string) bool {
			chunks := EncodeMulti32(s)
			return len(chunks) >= 1 && DecodeMulti32(chunks) == s
		},
		gen.AnyString().SuchThat(func(s string) bool {
			return !strings.ContainsRune(s, 0) && strings.ToValidUTF8(s, "") == s
		}),
	))

	properties.TestingRun(t)
}

func TestEncodeFixed32(t *testing.T) {
	b := EncodeFixed32("ASSERT_TRUTH")
	assert.Equal(t, "ASSERT_TRUTH", DecodeFixed32(b))
	assert.Equal(t, DefaultIdentifier, b)
	assert.Equal(t, make([]byte, 20), b[12:], "right padded with zeros")

	long := strings.Repeat("x", 40)
	assert.Equal(t, strings.Repeat("x", 32), DecodeFixed32(EncodeFixed32(long)))

	assert.Equal(t, "", DecodeFixed32(ZeroBytes32))
}

func TestDecodeFixed32InvalidUTF8(t *testing.T) {
	var b Bytes32
	copy(b[:], []byte{'o', 'k', 0xff, 0xfe})
	assert.Equal(t, "ok�", DecodeFixed32(b))
}

func TestDecodeForDisplay(t *testing.T) {
	assert.Equal(t, "Team A won the final", DecodeForDisplay(EncodeFixed32("Team A won the final")))

	hashed := HashClaim(strings.Repeat("a very long claim ", 5))
	label := DecodeForDisplay(hashed)
	assert.True(t, strings.HasPrefix(label, "Claim Hash: 0x"), label)
	assert.Contains(t, label, "...")
	assert.Equal(t, hashed.Hex()[:10], label[len("Claim Hash: "):len("Claim Hash: ")+10])

	assert.True(t, strings.HasPrefix(DecodeForDisplay(ZeroBytes32), "Claim Hash: "))
	assert.True(t, strings.HasPrefix(DecodeForDisplay(EncodeFixed32("   ")), "Claim Hash: "))
}

func TestBytes32UnmarshalJSON(t *testing.T) {
	hex := "0x" + strings.Repeat("0a", 32)

	var fromString Bytes32
	require.NoError(t, json.Unmarshal([]byte(`"`+hex+`"`), &fromString))
	assert.Equal(t, hex, fromString.Hex())

	var fromArray Bytes32
	require.NoError(t, json.Unmarshal([]byte("["+strings.TrimSuffix(strings.Repeat("10,", 32), ",")+"]"), &fromArray))
	assert.Equal(t, fromString, fromArray)

	tests := []struct {
		name  string
		input string
	}{
		{"short array", "[1,2,3]"},
		{"out of range", "[" + strings.Repeat("0,", 31) + "256]"},
		{"short hex", `"0x1234"`},
		{"not hex", `"` + strings.Repeat("zz", 32) + `"`},
		{"object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bytes32
			err := json.Unmarshal([]byte(tt.input), &b)
			var encErr *EncodingError
			assert.ErrorAs(t, err, &encErr)
		})
	}
}

func TestParseBytes32(t *testing.T) {
	b, err := ParseBytes32("0x1234")
	require.NoError(t, err)
	assert.Equal(t, byte(0x12), b[0])
	assert.Equal(t, byte(0x34), b[1])
	assert.True(t, Bytes32{}.IsZero())

	_, err = ParseBytes32("0x123")
	assert.Error(t, err)

	assert.False(t, IsValidBytes32("0x1234"))
	assert.True(t, IsValidBytes32(strings.Repeat("AB", 32)))
	assert.False(t, IsValidBytes32(strings.Repeat("g0", 32)))
}

func TestHashClaim(t *testing.T) {
	// keccak256("") is well known.
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		HashClaim("").Hex())
	assert.NotEqual(t, HashClaim("a"), HashClaim("b"))
}
