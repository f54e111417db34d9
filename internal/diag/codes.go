package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Fatal generation errors
	UnresolvableCycle    Code = 1001
	NameCollision        Code = 1002
	UnsupportedConstruct Code = 1003
	InvalidTag           Code = 1004
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	UnresolvableCycle:    "Value containment cycle cannot be broken",
	NameCollision:        "Two declarations map to the same C identifier",
	UnsupportedConstruct: "Type has no C lowering",
	InvalidTag:           "Forward declaration target is not a struct or union",
}

var codeName = map[Code]string{
	UnresolvableCycle:    "UnresolvableCycle",
	NameCollision:        "NameCollision",
	UnsupportedConstruct: "UnsupportedConstruct",
	InvalidTag:           "InvalidTag",
}

// ID returns the stable short identifier of the code, e.g. HDR1001.
func (c Code) ID() string {
	return fmt.Sprintf("HDR%04d", int(c))
}

// Name returns the symbolic kind of the code.
func (c Code) Name() string {
	if n, ok := codeName[c]; ok {
		return n
	}
	return "Unknown"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
