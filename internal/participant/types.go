package participant

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/permutatum/internal/court"
)

// Status of a participant record. Only active participants take part in matching.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Grade is the career level a judge holds at the origin court.
type Grade string

const (
	GradeSubstitute   Grade = "substitute"
	GradeInitial      Grade = "initial"
	GradeIntermediate Grade = "intermediate"
	GradeFinal        Grade = "final"
	GradeSingle       Grade = "single"
	GradeSecondDegree Grade = "second_degree"
)

// Participant is a judge registered at one court who wants to move to up to
// three other courts, ranked by preference.
type Participant struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Grade        Grade       `json:"grade,omitempty" yaml:"grade,omitempty"`
	Origin       court.Court `json:"origin" yaml:"origin"`
	Rank1        court.Court `json:"rank1" yaml:"rank1"`
	Rank2        court.Court `json:"rank2,omitempty" yaml:"rank2,omitempty"`
	Rank3        court.Court `json:"rank3,omitempty" yaml:"rank3,omitempty"`
	Email        string      `json:"email" yaml:"email"`
	Phone        string      `json:"phone,omitempty" yaml:"phone,omitempty"`
	PhoneVisible bool        `json:"phone_visible" yaml:"phone_visible"`
	Status       Status      `json:"status" yaml:"status"`
	CreatedAt    time.Time   `json:"created_at" yaml:"created_at,omitempty"`
}

// Destination is one ranked entry of a participant's wish list.
type Destination struct {
	Court court.Court `json:"court"`
	Rank  int         `json:"rank"`
}

// store handles all database operations for participants.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
