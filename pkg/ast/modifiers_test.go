package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intParam() *Parameter {
	return &Parameter{Type: &BuiltInType{Kind: BuiltInInt}}
}

// TestModifiersValidateNativeMethodBoundary mirrors spec §8's native-method
// boundary: accepted iff static, returns int, and takes exactly one int
// parameter.
func TestModifiersValidateNativeMethodBoundary(t *testing.T) {
	intType := &BuiltInType{Kind: BuiltInInt}
	stringType := &BuiltInType{Kind: BuiltInString}

	static := Modifiers{Static: true, Native: true}
	require.NoError(t, static.Validate(false, false, true, intType, []*Parameter{intParam()}))

	wrongReturn := Modifiers{Static: true, Native: true}
	require.Error(t, wrongReturn.Validate(false, false, true, stringType, []*Parameter{intParam(), intParam()}))

	noParams := Modifiers{Static: true, Native: true}
	require.Error(t, noParams.Validate(false, false, true, intType, nil))
}

func TestModifiersValidateClassAndInterfaceInvariants(t *testing.T) {
	require.Error(t, Modifiers{Abstract: true, Final: true}.Validate(true, false, false, nil, nil))
	require.Error(t, Modifiers{Final: true}.Validate(false, true, false, nil, nil))
	require.Error(t, Modifiers{Visibility: VisibilityProtected}.Validate(false, true, false, nil, nil))
	require.NoError(t, Modifiers{Visibility: VisibilityPublic}.Validate(false, true, false, nil, nil))
	require.Error(t, Modifiers{Abstract: true, Static: true}.Validate(false, false, true, nil, nil))
	require.Error(t, Modifiers{Native: true}.Validate(false, false, true, &BuiltInType{Kind: BuiltInInt}, []*Parameter{intParam()}))
}
