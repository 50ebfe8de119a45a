package extform

import (
	"github.com/pkg/errors"
	"github.com/timpalpant/go-cfr"
)

// InfoSet identifies a player's state of knowledge in the
// sequentialized game. Players observe nothing before acting, so the
// player index alone is the complete information set.
type InfoSet struct {
	Player int
}

// Verify that we implement the interface.
var _ cfr.InfoSet = &InfoSet{}

// Key implements cfr.InfoSet.
func (is *InfoSet) Key() string {
	buf, _ := is.MarshalBinary()
	return string(buf)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (is *InfoSet) MarshalBinary() ([]byte, error) {
	return []byte{byte(is.Player)}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (is *InfoSet) UnmarshalBinary(buf []byte) error {
	if len(buf) != 1 {
		return errors.Errorf("info set buffer has %d bytes, want 1", len(buf))
	}

	is.Player = int(buf[0])
	return nil
}
