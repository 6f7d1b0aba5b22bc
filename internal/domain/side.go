package domain

// Side es uno de los dos lados de un claim.
type Side uint8

const (
	// SideSupport respalda el claim.
	SideSupport Side = iota
	// SideOppose lo rechaza.
	SideOppose
)

// String devuelve el nombre legible del lado.
func (s Side) String() string {
	if s == SideSupport {
		return "support"
	}
	return "oppose"
}

// Opposite devuelve el lado contrario.
func (s Side) Opposite() Side {
	if s == SideSupport {
		return SideOppose
	}
	return SideSupport
}
