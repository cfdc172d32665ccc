// Package idx generates the ULID references the SDK attaches to outbound
// identity-service requests and out-of-band flow handles. ULIDs sort by
// creation time, which makes correlating a polling loop's requests in logs
// trivial.
package idx

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Ref is a flow or request reference in canonical ULID form.
type Ref string

// Zero is the zero value Ref, only useful as a placeholder.
const Zero Ref = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	globalOnce sync.Once
	global     *generator
)

// generator produces ULIDs safely from concurrent goroutines using a shared
// monotonic entropy source.
type generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

func initGlobal() {
	global = &generator{entropy: ulid.DefaultEntropy()}
}

func (g *generator) newAt(t time.Time) Ref {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Ref(ulid.MustNew(ulid.Timestamp(t), g.entropy).String())
}

// New generates a Ref for the current time.
func New() Ref {
	globalOnce.Do(initGlobal)
	return global.newAt(time.Now().UTC())
}

// NewAt generates a Ref at the provided time, useful for tests.
func NewAt(t time.Time) Ref {
	globalOnce.Do(initGlobal)
	return global.newAt(t)
}

// Parse validates s and returns it as a Ref.
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return Ref(s), nil
}

// IsZero reports whether r is the zero value.
func (r Ref) IsZero() bool { return r == Zero }

// String returns the canonical string form.
func (r Ref) String() string { return string(r) }

// Time extracts the embedded UTC timestamp, or the zero time for invalid
// refs.
func (r Ref) Time() time.Time {
	u, err := ulid.ParseStrict(r.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}
