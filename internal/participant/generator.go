package participant

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/mauv0809/permutatum/internal/court"
)

var grades = []Grade{GradeSubstitute, GradeInitial, GradeIntermediate, GradeFinal, GradeSingle, GradeSecondDegree}

// Generator produces random participants that satisfy Validate. A fixed seed
// gives the same sequence every time.
type Generator struct {
	faker  *gofakeit.Faker
	seed   int64
	courts []court.Court
}

// NewGenerator creates a generator drawing from courts (all 27 when empty).
// Fewer courts make denser graphs with more cycles.
func NewGenerator(seed int64, courts ...court.Court) *Generator {
	if len(courts) < 2 {
		courts = court.All()
	}
	return &Generator{
		faker:  gofakeit.New(uint64(seed)),
		seed:   seed,
		courts: courts,
	}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Participant returns one random active participant. n keeps names and emails
// unique within a batch.
func (g *Generator) Participant(n int) Participant {
	picks := make([]court.Court, len(g.courts))
	copy(picks, g.courts)
	g.faker.ShuffleAnySlice(picks)

	first, last := g.faker.FirstName(), g.faker.LastName()
	p := Participant{
		ID:           g.faker.UUID(),
		Name:         fmt.Sprintf("%s %s %d", first, last, n),
		Grade:        grades[g.faker.Number(0, len(grades)-1)],
		Origin:       picks[0],
		Rank1:        picks[1],
		Email:        fmt.Sprintf("%s.%s.%d@%s", slug(first), slug(last), n, picks[0].Domain()),
		Phone:        g.faker.Numerify("+55 ## 9####-####"),
		PhoneVisible: g.faker.Bool(),
		Status:       StatusActive,
		CreatedAt:    time.Now().UTC().Add(-time.Duration(g.faker.Number(0, 24*120)) * time.Hour).Truncate(time.Second),
	}
	ranks := g.faker.Number(1, 3)
	if ranks >= 2 && len(picks) > 2 {
		p.Rank2 = picks[2]
	}
	if ranks == 3 && len(picks) > 3 {
		p.Rank3 = picks[3]
	}
	return p
}

// Participants returns count random participants.
func (g *Generator) Participants(count int) []Participant {
	out := make([]Participant, count)
	for i := range out {
		out[i] = g.Participant(i)
	}
	return out
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
