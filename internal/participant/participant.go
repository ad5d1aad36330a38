package participant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mauv0809/permutatum/internal/court"
)

var (
	ErrInvalid        = errors.New("invalid participant")
	ErrNotFound       = errors.New("participant not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether email looks like a deliverable address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail trims and lower-cases an address for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Destinations returns the non-empty ranked destinations in rank order.
func (p Participant) Destinations() []Destination {
	out := make([]Destination, 0, 3)
	for i, c := range []court.Court{p.Rank1, p.Rank2, p.Rank3} {
		if c == "" {
			continue
		}
		out = append(out, Destination{Court: c, Rank: i + 1})
	}
	return out
}

// RankOf returns the rank (1..3) at which c appears in the wish list, or 0.
func (p Participant) RankOf(c court.Court) int {
	if c == "" {
		return 0
	}
	switch c {
	case p.Rank1:
		return 1
	case p.Rank2:
		return 2
	case p.Rank3:
		return 3
	}
	return 0
}

// Active reports whether the participant takes part in matching.
func (p Participant) Active() bool {
	return p.Status == StatusActive
}

// VisiblePhone returns the phone number only when the participant opted in.
func (p Participant) VisiblePhone() string {
	if !p.PhoneVisible {
		return ""
	}
	return p.Phone
}

// Normalize trims free-text fields and lower-cases the email.
func (p *Participant) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Status == "" {
		p.Status = StatusActive
	}
}

// Validate checks the registration rules. All problems are reported at once,
// wrapped in ErrInvalid.
func (p Participant) Validate() error {
	var problems []error

	if p.Name == "" {
		problems = append(problems, errors.New("name is required"))
	}
	if p.Email == "" {
		problems = append(problems, errors.New("email is required"))
	} else if !ValidEmail(p.Email) {
		problems = append(problems, errors.New("email is invalid"))
	}
	if p.Phone == "" {
		problems = append(problems, errors.New("phone is required"))
	}
	if p.Grade != "" && !validGrade(p.Grade) {
		problems = append(problems, fmt.Errorf("unknown grade %q", p.Grade))
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		problems = append(problems, fmt.Errorf("unknown status %q", p.Status))
	}

	switch {
	case p.Origin == "":
		problems = append(problems, errors.New("origin court is required"))
	case !p.Origin.Valid():
		problems = append(problems, fmt.Errorf("unknown origin court %q", p.Origin))
	}
	switch {
	case p.Rank1 == "":
		problems = append(problems, errors.New("first destination is required"))
	case !p.Rank1.Valid():
		problems = append(problems, fmt.Errorf("unknown first destination %q", p.Rank1))
	case p.Rank1 == p.Origin:
		problems = append(problems, errors.New("first destination must differ from origin"))
	}
	if p.Rank2 != "" {
		switch {
		case !p.Rank2.Valid():
			problems = append(problems, fmt.Errorf("unknown second destination %q", p.Rank2))
		case p.Rank2 == p.Origin:
			problems = append(problems, errors.New("second destination must differ from origin"))
		case p.Rank2 == p.Rank1:
			problems = append(problems, errors.New("second destination must differ from the first"))
		}
	}
	if p.Rank3 != "" {
		switch {
		case !p.Rank3.Valid():
			problems = append(problems, fmt.Errorf("unknown third destination %q", p.Rank3))
		case p.Rank3 == p.Origin:
			problems = append(problems, errors.New("third destination must differ from origin"))
		case p.Rank3 == p.Rank1 || p.Rank3 == p.Rank2:
			problems = append(problems, errors.New("third destination must differ from the previous ones"))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}

func validGrade(g Grade) bool {
	switch g {
	case GradeSubstitute, GradeInitial, GradeIntermediate, GradeFinal, GradeSingle, GradeSecondDegree:
		return true
	}
	return false
}
