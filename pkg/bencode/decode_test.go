package bencode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/pkg/bencode"
)

type T struct {
	A string `bencode:"B"`
	B string `bencode:"-,"`

	C string

	X string
	Y string
	Z string `bencode:"-"`
}

var unmarshalTests = []struct {
	in  string
	ptr any
	out any
}{
	// basic values
	{in: "i123e", ptr: new(int), out: 123},
	{in: "i-123e", ptr: new(int), out: -123},
	{in: "i0e", ptr: new(int), out: 0},
	{in: "0:", ptr: new(string), out: ""},
	{in: "3:cat", ptr: new(string), out: "cat"},
	{in: "le", ptr: new(any), out: *new([]any)},
	{in: "li123e3:cate", ptr: new(any), out: []any{int64(123), "cat"}},
	{in: "lli123e3:catee", ptr: new(any), out: []any{[]any{int64(123), "cat"}}},
	{in: "de", ptr: new(any), out: map[string]any{}},
	{in: "d3:cati123e3:dogi-123ee", ptr: new(any), out: map[string]any{"cat": int64(123), "dog": int64(-123)}},
	{in: "d1:ad1:ai123e1:b3:catee", ptr: new(any), out: map[string]any{"a": map[string]any{"a": int64(123), "b": "cat"}}},
	{in: "d1:-3:rat1:B3:bat1:X3:cat1:Y3:dog1:Z3:nile", ptr: new(T), out: T{A: "bat", B: "rat", X: "cat", Y: "dog"}},
}

func TestUnmarshal(t *testing.T) {
	for _, test := range unmarshalTests {
		t.Run(test.in, func(t *testing.T) {
			err := bencode.Unmarshal([]byte(test.in), test.ptr)
			require.NoError(t, err)

			got := reflectElem(test.ptr)
			require.Equal(t, test.out, got)
		})
	}
}

func reflectElem(ptr any) any {
	switch p := ptr.(type) {
	case *int:
		return *p
	case *string:
		return *p
	case *any:
		return *p
	case *T:
		return *p
	default:
		panic("unsupported test pointer type")
	}
}

// TestDecodeConcreteScenarios checks the literal decode examples from
// the specification: byte-strings, negative integers, lists, and
// non-UTF-8 byte-strings preserved verbatim.
func TestDecodeConcreteScenarios(t *testing.T) {
	t.Run("byte-string", func(t *testing.T) {
		v, n, err := bencode.Decode([]byte("5:hello"))
		require.NoError(t, err)
		require.Equal(t, 7, n)
		require.Equal(t, bencode.KindString, v.Kind)
		require.Equal(t, []byte("hello"), v.Str())
	})

	t.Run("negative integer", func(t *testing.T) {
		v, n, err := bencode.Decode([]byte("i-42e"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, int64(-42), v.Int())
	})

	t.Run("list", func(t *testing.T) {
		v, n, err := bencode.Decode([]byte("l4:spami3ee"))
		require.NoError(t, err)
		require.Equal(t, 11, n)
		items := v.List()
		require.Len(t, items, 2)
		require.Equal(t, []byte("spam"), items[0].Str())
		require.Equal(t, int64(3), items[1].Int())
	})

	t.Run("non-UTF-8 byte-string", func(t *testing.T) {
		v, _, err := bencode.Decode([]byte("4:\x80\x81\x82\x83"))
		require.NoError(t, err)
		require.Equal(t, []byte{0x80, 0x81, 0x82, 0x83}, v.Str())
	})
}

// TestDecodeErrors checks that malformed bencode surfaces a
// *bencode.DecodeError with a byte offset rather than panicking.
func TestDecodeErrors(t *testing.T) {
	cases := []string{
		"",
		"i01e",
		"i-0e",
		"d3:dogi1e3:cati2ee", // "cat" seen after "dog": keys not ascending
		"5:ab",                // truncated string
	}

	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, _, err := bencode.Decode([]byte(in))
			require.Error(t, err)

			var decErr *bencode.DecodeError
			require.ErrorAs(t, err, &decErr)
		})
	}
}
