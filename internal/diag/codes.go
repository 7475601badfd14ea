package diag

import (
	"fmt"
)

// Code identifies one diagnostic rule. The rendered strings (A001, B003,
// C010, W001) are a stable external contract: tooling filters on them.
type Code uint16

const (
	UnknownCode Code = 0

	// Class shape (rendered with prefix A).
	ClassNotExtensible             Code = 1001
	ClassMissingCapability         Code = 1002
	ClassBadThrottleValue          Code = 1003
	ClassThrottleWithoutCapability Code = 1004

	// Source shape (rendered with prefix B).
	SourceMethodReturnsNothing Code = 2001
	SourceMethodHasParameters  Code = 2002
	SourceAccessorUnreadable   Code = 2003
	SourceUnsupportedValueType Code = 2004
	SourceMissingEquality      Code = 2005

	// Binding shape (rendered with prefix C).
	BindingEmptyIdentityList       Code = 3001
	BindingIsStatic                Code = 3002
	BindingReturnsValue            Code = 3003
	BindingInvalidParameterCount   Code = 3004
	BindingParameterTypeMismatch   Code = 3005
	BindingDuplicateIdentities     Code = 3006
	BindingIdentityNotStatic       Code = 3007
	BindingAutoInferFoundNothing   Code = 3008
	BindingAutoInferWithParameters Code = 3009
	BindingUnknownIdentity         Code = 3010

	// Cross-cutting (rendered with prefix W).
	SourceUnreferenced Code = 4001
)

// String renders the stable external form of the code.
func (c Code) String() string {
	var prefix string
	switch {
	case c >= 1000 && c < 2000:
		prefix = "A"
	case c >= 2000 && c < 3000:
		prefix = "B"
	case c >= 3000 && c < 4000:
		prefix = "C"
	case c >= 4000 && c < 5000:
		prefix = "W"
	default:
		return fmt.Sprintf("X%04d", uint16(c))
	}
	return fmt.Sprintf("%s%03d", prefix, uint16(c)%1000)
}
