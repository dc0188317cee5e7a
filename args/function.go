package args

import "fmt"

// FunctionGroup selects the function range transported by a function message.
type FunctionGroup byte

const (
	// FunctionsF9ToF11 transports F9-F11 in bits 4-6.
	FunctionsF9ToF11 FunctionGroup = 0x07
	// FunctionsF12F20F28 transports F12, F20 and F28 in bits 4-6.
	FunctionsF12F20F28 FunctionGroup = 0x05
	// FunctionsF13ToF19 transports F13-F19 in bits 0-6.
	FunctionsF13ToF19 FunctionGroup = 0x08
	// FunctionsF21ToF27 transports F21-F27 in bits 0-6.
	FunctionsF21ToF27 FunctionGroup = 0x09
)

// Functions returns the function numbers of the group in bit order.
func (g FunctionGroup) Functions() []int {
	switch g {
	case FunctionsF9ToF11:
		return []int{9, 10, 11}
	case FunctionsF12F20F28:
		return []int{12, 20, 28}
	case FunctionsF13ToF19:
		return []int{13, 14, 15, 16, 17, 18, 19}
	case FunctionsF21ToF27:
		return []int{21, 22, 23, 24, 25, 26, 27}
	}
	return nil
}

func (g FunctionGroup) String() string {
	switch g {
	case FunctionsF9ToF11:
		return "F9-F11"
	case FunctionsF12F20F28:
		return "F12/F20/F28"
	case FunctionsF13ToF19:
		return "F13-F19"
	case FunctionsF21ToF27:
		return "F21-F27"
	}
	return fmt.Sprintf("group(0x%02X)", byte(g))
}

// bit returns the payload bit of function n in group g, or -1.
func (g FunctionGroup) bit(n int) int {
	switch g {
	case FunctionsF9ToF11:
		if n >= 9 && n <= 11 {
			return n - 5
		}
	case FunctionsF12F20F28:
		switch n {
		case 12:
			return 4
		case 20:
			return 5
		case 28:
			return 6
		}
	case FunctionsF13ToF19:
		if n >= 13 && n <= 19 {
			return n - 13
		}
	case FunctionsF21ToF27:
		if n >= 21 && n <= 27 {
			return n - 21
		}
	}

	return -1
}

// Functions is a function group together with the states of its functions.
type Functions struct {
	group FunctionGroup
	bits  byte
}

// NewFunctions returns the group g with the listed functions switched on.
// Function numbers outside g are ignored. It fails with ErrUnmapped for an unknown group.
func NewFunctions(g FunctionGroup, on ...int) (Functions, error) {
	if g.Functions() == nil {
		return Functions{}, unmappedError("function group", byte(g))
	}

	f := Functions{group: g}
	for _, n := range on {
		f = f.With(n, true)
	}

	return f, nil
}

// ParseFunctions decodes the group and function bytes.
func ParseFunctions(group, bits byte) (Functions, error) {
	g := FunctionGroup(group & 0x7F)
	if g.Functions() == nil {
		return Functions{}, unmappedError("function group", group)
	}

	return Functions{group: g, bits: bits & 0x7F}, nil
}

// Group returns the function group.
func (f Functions) Group() FunctionGroup { return f.group }

// F reports whether function n is on. Functions outside the group report false.
func (f Functions) F(n int) bool {
	b := f.group.bit(n)
	return b >= 0 && f.bits&(1<<b) != 0
}

// With returns a copy of f with function n set to on.
func (f Functions) With(n int, on bool) Functions {
	b := f.group.bit(n)
	if b < 0 {
		return f
	}
	if on {
		f.bits |= 1 << b
	} else {
		f.bits &^= 1 << b
	}

	return f
}

// Wire returns the group and function bytes.
func (f Functions) Wire() (byte, byte) { return byte(f.group) & 0x7F, f.bits & 0x7F }

func (f Functions) String() string {
	s := "functions(" + f.group.String()
	for _, n := range f.group.Functions() {
		s += fmt.Sprintf(" f%d=%t", n, f.F(n))
	}

	return s + ")"
}
