package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scenekit/crate/errs"
)

func TestBootstrap_RoundTrip(t *testing.T) {
	b := NewBootstrap()
	b.TOCOffset = 4096

	data := b.Bytes()
	require.Len(t, data, BootstrapSize)
	require.Equal(t, "PXR-USDC", string(data[:8]))

	var parsed Bootstrap
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, b, parsed)
	require.Equal(t, "0.8.0", parsed.Version())
}

func TestBootstrap_BadMagic(t *testing.T) {
	b := NewBootstrap()
	data := b.Bytes()
	data[0] = 'X'

	var parsed Bootstrap
	require.ErrorIs(t, parsed.Parse(data), errs.ErrInvalidMagic)
}

func TestBootstrap_Short(t *testing.T) {
	var parsed Bootstrap
	require.ErrorIs(t, parsed.Parse(make([]byte, BootstrapSize-1)), errs.ErrInvalidBootstrapSize)
}

func TestBootstrap_VersionGate(t *testing.T) {
	cases := []struct {
		major, minor uint8
		ok           bool
	}{
		{0, 3, false},
		{0, 4, true},
		{0, 8, true},
		{0, 10, true},
		{0, 11, false},
		{1, 8, false},
	}

	for _, tc := range cases {
		b := Bootstrap{Major: tc.major, Minor: tc.minor}
		data := b.Bytes()

		var parsed Bootstrap
		err := parsed.Parse(data)
		if tc.ok {
			require.NoError(t, err, "version %d.%d", tc.major, tc.minor)
		} else {
			require.ErrorIs(t, err, errs.ErrUnsupportedVersion, "version %d.%d", tc.major, tc.minor)
		}
	}
}

func TestTOC_RoundTrip(t *testing.T) {
	toc := TOC{Sections: []Section{
		{Name: TokensSectionName, Start: 88, Size: 100},
		{Name: SpecsSectionName, Start: 188, Size: 50},
	}}

	body, err := toc.Bytes()
	require.NoError(t, err)

	// Lay the TOC into a buffer large enough for the sections it names.
	buf := make([]byte, 300)
	buf = append(buf, body...)
	parsed, err := ParseTOC(buf, 300)
	require.NoError(t, err)
	require.Equal(t, toc.Sections, parsed.Sections)

	sec, ok := parsed.Find(SpecsSectionName)
	require.True(t, ok)
	require.Equal(t, uint64(238), sec.End())

	_, ok = parsed.Find("NOSUCH")
	require.False(t, ok)
}

func TestParseTOC_Corrupt(t *testing.T) {
	buf := make([]byte, 200)

	_, err := ParseTOC(buf, 9999)
	require.ErrorIs(t, err, errs.ErrCorruptTOC)

	_, err = ParseTOC(buf, 10) // inside the bootstrap
	require.ErrorIs(t, err, errs.ErrCorruptTOC)

	// An all-ones offset must not wrap past the bounds check.
	_, err = ParseTOC(buf, ^uint64(0))
	require.ErrorIs(t, err, errs.ErrCorruptTOC)
}

func TestParseTOC_SectionOutOfBounds(t *testing.T) {
	toc := TOC{Sections: []Section{{Name: TokensSectionName, Start: 10000, Size: 10}}}
	body, err := toc.Bytes()
	require.NoError(t, err)

	buf := make([]byte, 100)
	buf = append(buf, body...)
	_, err = ParseTOC(buf, 100)
	require.ErrorIs(t, err, errs.ErrSectionBounds)
}

func TestValueRep_Bits(t *testing.T) {
	r := NewValueRep(TypeDouble, true, false, true, 0x123456789ABC)
	require.Equal(t, TypeDouble, r.Type())
	require.True(t, r.IsArray())
	require.False(t, r.IsInlined())
	require.True(t, r.IsCompressed())
	require.False(t, r.IsArrayEdit())
	require.Equal(t, uint64(0x123456789ABC), r.Payload())

	inline := NewValueRep(TypeBool, false, true, false, 1)
	require.True(t, inline.IsInlined())
	require.Equal(t, uint64(1), inline.Payload())
	require.Equal(t, TypeBool, inline.Type())
}

func TestValueRep_PayloadTruncation(t *testing.T) {
	r := NewValueRep(TypeInt64, false, false, false, 1<<50|7)
	require.Equal(t, uint64(7), r.Payload())
}

func TestValueType_Strings(t *testing.T) {
	require.Equal(t, "Bool", TypeBool.String())
	require.Equal(t, "TimeSamples", TypeTimeSamples.String())
	require.Equal(t, "PathExpression", TypePathExpression.String())
	require.Equal(t, "Unknown", ValueType(200).String())
	require.True(t, TypeDictionary.IsKnown())
	require.False(t, ValueType(99).IsKnown())
}
