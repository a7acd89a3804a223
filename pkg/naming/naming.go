// Package naming generates release names.
package naming

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/deliveryman/pkg/errors"
)

// Auto is the release name callers replace with a generated one
const Auto = "auto"

// IsAuto reports whether name asks for a generated release name
func IsAuto(name string) bool {
	return strings.EqualFold(name, Auto)
}

// Generator produces fresh release names and orders existing ones.
type Generator interface {
	// Generate returns a name not present in existing. Collisions are
	// reported, never retried.
	Generate(existing []string) (string, error)
	// Compare orders names the way they sort on disk.
	Compare(a, b string) int
}

// Timestamp names releases after the current unix time in seconds.
type Timestamp struct {
	Now func() time.Time
}

// NewTimestamp returns a generator on the wall clock
func NewTimestamp() Timestamp {
	return Timestamp{Now: time.Now}
}

// Generate implements Generator
func (g Timestamp) Generate(existing []string) (string, error) {
	now := g.Now
	if now == nil {
		now = time.Now
	}
	name := strconv.FormatInt(now().Unix(), 10)
	for _, e := range existing {
		if e == name {
			return "", errors.Newf(errors.ErrNameCollision, "release %s already exists, try again", name).
				WithDetail("release", name)
		}
	}
	return name, nil
}

// Compare implements Generator. Ordering is lexical, not numeric.
func (g Timestamp) Compare(a, b string) int {
	return strings.Compare(a, b)
}

// Sort orders names in place, oldest first
func Sort(names []string, gen Generator) {
	sort.SliceStable(names, func(i, j int) bool {
		return gen.Compare(names[i], names[j]) < 0
	})
}
