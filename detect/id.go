package detect

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"mapchat.dev/geo"
)

// IDGenerator builds detection IDs from the detection kind, a content hash,
// an embedded coordinate fingerprint when available, message-scoped index,
// wall clock and a random suffix. The clock and random source are injectable
// so tests can produce fixed IDs. Uniqueness is only guaranteed within one
// detection run; the per-run counter is reset by the detector per call.
type IDGenerator struct {
	Now  func() time.Time
	Rand *rand.Rand

	counter int
}

func newIDGenerator() *IDGenerator {
	return &IDGenerator{
		Now:  time.Now,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *IDGenerator) reset() {
	g.counter = 0
}

func (g *IDGenerator) next(kind Kind, content string, coords *geo.LatLng, messageID string, index int) string {
	g.counter++

	coordHash := ""
	if coords != nil {
		coordHash = fmt.Sprintf("%.6f-%.6f", coords.Lat, coords.Lng)
	}

	context := fmt.Sprintf("-idx%d", g.counter)
	if messageID != "" {
		if index < 0 {
			index = g.counter
		}
		context = fmt.Sprintf("-msg%s-idx%d", messageID, index)
	}

	return fmt.Sprintf("%s-%s-%s%s-%d-%s",
		kind, contentHash(content), coordHash, context,
		g.Now().UnixMilli(), g.randomSuffix())
}

// contentHash is the leading content normalized into an ID-safe token.
func contentHash(content string) string {
	if r := []rune(content); len(r) > 20 {
		content = string(r[:20])
	}
	return strings.ToLower(strings.Join(strings.Fields(content), "-"))
}

// randomSuffix is a short base36 token, 7 characters.
func (g *IDGenerator) randomSuffix() string {
	s := strconv.FormatUint(uint64(g.Rand.Int63()), 36)
	if len(s) > 7 {
		s = s[:7]
	}
	return s
}
