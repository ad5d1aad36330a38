package court

import (
	"errors"
	"fmt"
	"strings"
)

// Court identifies one of the 27 state courts a participant can be registered at
// or want to move to. Courts are compared as exact, case-sensitive strings.
type Court string

const (
	TJAC  Court = "TJAC"
	TJAL  Court = "TJAL"
	TJAP  Court = "TJAP"
	TJAM  Court = "TJAM"
	TJBA  Court = "TJBA"
	TJCE  Court = "TJCE"
	TJDFT Court = "TJDFT"
	TJES  Court = "TJES"
	TJGO  Court = "TJGO"
	TJMA  Court = "TJMA"
	TJMT  Court = "TJMT"
	TJMS  Court = "TJMS"
	TJMG  Court = "TJMG"
	TJPA  Court = "TJPA"
	TJPB  Court = "TJPB"
	TJPR  Court = "TJPR"
	TJPE  Court = "TJPE"
	TJPI  Court = "TJPI"
	TJRJ  Court = "TJRJ"
	TJRN  Court = "TJRN"
	TJRS  Court = "TJRS"
	TJRO  Court = "TJRO"
	TJRR  Court = "TJRR"
	TJSC  Court = "TJSC"
	TJSE  Court = "TJSE"
	TJSP  Court = "TJSP"
	TJTO  Court = "TJTO"
)

var all = []Court{
	TJAC, TJAL, TJAP, TJAM, TJBA, TJCE, TJDFT, TJES,
	TJGO, TJMA, TJMT, TJMS, TJMG, TJPA, TJPB, TJPR,
	TJPE, TJPI, TJRJ, TJRN, TJRS, TJRO, TJRR, TJSC,
	TJSE, TJSP, TJTO,
}

var known = func() map[Court]struct{} {
	m := make(map[Court]struct{}, len(all))
	for _, c := range all {
		m[c] = struct{}{}
	}
	return m
}()

// ErrInvalidSelection is returned when an origin/destination pair can not be searched.
var ErrInvalidSelection = errors.New("invalid court selection")

// All returns the fixed court list in its canonical order.
func All() []Court {
	out := make([]Court, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c is one of the known courts.
func (c Court) Valid() bool {
	_, ok := known[c]
	return ok
}

func (c Court) String() string {
	return string(c)
}

// Domain is the institutional email domain of the court, e.g. "tjsp.jus.br".
func (c Court) Domain() string {
	return strings.ToLower(string(c)) + ".jus.br"
}

// Parse converts s into a Court. Surrounding whitespace is ignored but the
// comparison itself is case-sensitive.
func Parse(s string) (Court, error) {
	c := Court(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("unknown court %q", s)
	}
	return c, nil
}

// ValidateSelection checks an origin/destination pair before a search is run.
func ValidateSelection(origin, destination Court) error {
	if origin == "" || destination == "" {
		return fmt.Errorf("%w: both origin and destination are required", ErrInvalidSelection)
	}
	if !origin.Valid() {
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidSelection, origin)
	}
	if !destination.Valid() {
		return fmt.Errorf("%w: unknown destination %q", ErrInvalidSelection, destination)
	}
	if origin == destination {
		return fmt.Errorf("%w: origin and destination must differ", ErrInvalidSelection)
	}
	return nil
}

// IsInstitutionalEmail reports whether the address belongs to one of the court domains.
func IsInstitutionalEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, c := range all {
		if c.Domain() == domain {
			return true
		}
	}
	return false
}
