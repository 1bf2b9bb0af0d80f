package common

import (
	"context"
	"sync"
	"time"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// phoneLayout is ddMMHHmmss.
const phoneLayout = "0201150405"

// Generator derives unique-enough test data from the wall clock.
// The last phone number is remembered so an email generated afterwards
// shares the same digits.
type Generator struct {
	mu   sync.Mutex
	last string
	now  func() time.Time
}

// NewGenerator returns a Generator reading the local clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// PhoneNumber returns a ten-digit number built from the current time.
func (g *Generator) PhoneNumber() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phoneLocked()
}

func (g *Generator) phoneLocked() string {
	now := time.Now
	if g.now != nil {
		now = g.now
	}
	g.last = now().Format(phoneLayout)
	logging.Info(context.Background(), "Generated Phone Number: "+g.last)
	return g.last
}

// Email returns prefix + number + "@" + domain + ".com", reusing the last
// phone number when one exists.
func (g *Generator) Email(prefix, domain string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	number := g.last
	if number == "" {
		number = g.phoneLocked()
	}
	return prefix + number + At + domain + DotCom
}

var defaultGenerator = NewGenerator()

// PhoneNumber calls PhoneNumber on the package-level Generator.
func PhoneNumber() string { return defaultGenerator.PhoneNumber() }

// Email calls Email on the package-level Generator.
func Email(prefix, domain string) string { return defaultGenerator.Email(prefix, domain) }
