package circles

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Namer produces circle names. Formation takes one as a dependency so runs
// are reproducible in tests.
type Namer interface {
	CircleName(now time.Time) string
}

// circleNamePrefixes are the rotating name stems for newly formed circles.
var circleNamePrefixes = []string{
	"Forge", "Craft", "Build", "Shape", "Form", "Create", "Design",
}

// randomNamer picks a prefix with an injected random source and appends a
// short timestamp suffix.
type randomNamer struct {
	rnd *rand.Rand
}

// NewRandomNamer creates a Namer driven by the given random source.
func NewRandomNamer(rnd *rand.Rand) Namer {
	return &randomNamer{rnd: rnd}
}

func (n *randomNamer) CircleName(now time.Time) string {
	prefix := circleNamePrefixes[n.rnd.Intn(len(circleNamePrefixes))]
	suffix := strings.ToUpper(timestampBase36(now))
	return fmt.Sprintf("%s Circle %s", prefix, suffix)
}

// counterNamer cycles through the prefixes in order. Used by tests and batch
// runs that need fully deterministic names.
type counterNamer struct {
	count int
}

// NewCounterNamer creates a deterministic Namer that cycles prefixes in order.
func NewCounterNamer() Namer {
	return &counterNamer{}
}

func (n *counterNamer) CircleName(now time.Time) string {
	prefix := circleNamePrefixes[n.count%len(circleNamePrefixes)]
	n.count++
	suffix := strings.ToUpper(timestampBase36(now))
	return fmt.Sprintf("%s Circle %s", prefix, suffix)
}

// timestampBase36 returns the last four base-36 digits of the unix
// millisecond timestamp.
func timestampBase36(now time.Time) string {
	s := strconv.FormatInt(now.UnixMilli(), 36)
	if len(s) > 4 {
		s = s[len(s)-4:]
	}
	return s
}
