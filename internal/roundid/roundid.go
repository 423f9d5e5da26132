// Package roundid generates sortable identifiers for blackjack rounds.
//
// An ID is a UUIDv7 (48-bit millisecond timestamp, version and variant bits,
// random tail) written as 26 characters of Crockford base32, so IDs sort in
// the order rounds were started.
package roundid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"
)

// Crockford base32, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded ID
const Length = 26

// RandSource supplies the random tail of an ID. *math/rand/v2.Rand
// satisfies it.
type RandSource interface {
	IntN(n int) int
}

// Generator produces round IDs from a clock and a source of randomness
type Generator struct {
	clock quartz.Clock
	rand  RandSource
}

// NewGenerator creates a generator. A nil clock uses the real clock and a
// nil RandSource uses crypto/rand.
func NewGenerator(clock quartz.Clock, src RandSource) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, rand: src}
}

// Generate returns a new ID stamped with the generator's clock
func (g *Generator) Generate() string {
	return encode(g.uuid())
}

func (g *Generator) uuid() [16]byte {
	var id [16]byte

	ms := g.clock.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rand != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rand.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("roundid: reading random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}

// encode writes the 128 bits as 26 five-bit groups, most significant first,
// with two zero bits of padding in front.
func encode(id [16]byte) string {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
		lo = lo<<8 | uint64(id[i+8])
	}

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

func decode(s string) ([16]byte, error) {
	var id [16]byte
	if err := Validate(s); err != nil {
		return id, err
	}

	var hi, lo uint64
	for i := 0; i < Length; i++ {
		v := uint64(strings.IndexByte(alphabet, s[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}
	for i := 7; i >= 0; i-- {
		id[i] = byte(hi)
		id[i+8] = byte(lo)
		hi >>= 8
		lo >>= 8
	}
	return id, nil
}

// Timestamp returns the time encoded in an ID, to the millisecond
func Timestamp(s string) (time.Time, error) {
	id, err := decode(s)
	if err != nil {
		return time.Time{}, err
	}
	var ms int64
	for i := 0; i < 6; i++ {
		ms = ms<<8 | int64(id[i])
	}
	return time.UnixMilli(ms), nil
}

// Validate checks that s is a well-formed round ID
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("round ID must be %d characters, got %d", Length, len(s))
	}
	if s[0] > '7' {
		return fmt.Errorf("round ID first character must be 0-7, got %c", s[0])
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return fmt.Errorf("invalid character %q at position %d", s[i], i)
		}
	}
	return nil
}
