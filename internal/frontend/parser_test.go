package frontend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/source"
)

func parseSrc(t *testing.T, src string) (*diag.Engine, error) {
	t.Helper()
	d := diag.New()
	_, err := ParseFile(source.FileId{}, []byte(src), d)
	return d, err
}

// TestNativeMethodBoundary mirrors spec §8: a native method is accepted iff
// it is static, returns int, and takes exactly one int parameter.
func TestNativeMethodBoundary(t *testing.T) {
	d, err := parseSrc(t, `class Foo { Foo() {} static native int bar(int x); }`)
	require.NoError(t, err)
	require.False(t, d.HasErrors(), "unexpected diagnostics: %+v", d.Records())

	d, err = parseSrc(t, `class Foo { Foo() {} static native String bar(int x, int y); }`)
	require.NoError(t, err)
	require.True(t, d.HasErrors(), "expected a diagnostic for a non-int-returning native method")

	d, err = parseSrc(t, `class Foo { Foo() {} static native int bar(); }`)
	require.NoError(t, err)
	require.True(t, d.HasErrors(), "expected a diagnostic for a zero-parameter native method")
}

func TestClassModifierInvariants(t *testing.T) {
	d, err := parseSrc(t, `abstract final class Foo { Foo() {} }`)
	require.NoError(t, err)
	require.True(t, d.HasErrors(), "expected a diagnostic for abstract+final class")
}

func TestInterfaceModifierInvariants(t *testing.T) {
	d, err := parseSrc(t, `protected interface Foo { int bar(); }`)
	require.NoError(t, err)
	require.True(t, d.HasErrors(), "expected a diagnostic for a non-public interface")

	d, err = parseSrc(t, `public interface Foo { int bar(); }`)
	require.NoError(t, err)
	require.False(t, d.HasErrors(), "unexpected diagnostics: %+v", d.Records())
}
