package types

// OwnedValue is implemented by value kinds that may alias externally mutable
// storage, such as strings backed by a reusable byte buffer. ToOwned returns
// an equivalent value with private storage. Copy routines deep-copy exactly
// the values that declare this capability and shallow-copy everything else.
type OwnedValue interface {
	ToOwned() any
}

// RawString is a string value backed by a byte buffer that the producer may
// recycle between rows. Holders that retain a RawString across row
// boundaries must take an owned copy first.
type RawString []byte

// String returns the string contents at the time of the call.
func (s RawString) String() string { return string(s) }

// ToOwned copies the backing bytes into a fresh buffer.
func (s RawString) ToOwned() any {
	owned := make(RawString, len(s))
	copy(owned, s)
	return owned
}
