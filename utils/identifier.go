package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeGenerator issues human-readable record codes of the form
// PREFIX + 6-digit time suffix + 4 random uppercase alphanumerics.
// Codes issued within the same millisecond are deduplicated so that no
// two calls in the same process return the same code.
type codeGenerator struct {
	prefix string

	mu     sync.Mutex
	stamp  int64
	issued map[string]struct{}
}

var (
	fulfillmentCodes = &codeGenerator{prefix: "FL"}
	orderCodes       = &codeGenerator{prefix: "MO"}
)

// GenerateFulfillmentID returns a new fulfillment code, e.g. "FL123456A7BC"
func GenerateFulfillmentID() string {
	return fulfillmentCodes.next()
}

// GenerateOrderNumber returns a new order number, e.g. "MO123456A7BC"
func GenerateOrderNumber() string {
	return orderCodes.next()
}

func (g *codeGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now != g.stamp {
		g.stamp = now
		g.issued = make(map[string]struct{})
	}

	// Last six digits of the millisecond timestamp
	timeSuffix := fmt.Sprintf("%06d", now%1000000)

	for {
		suffix := randomSuffix(4)
		if _, taken := g.issued[suffix]; taken {
			continue
		}
		g.issued[suffix] = struct{}{}
		return g.prefix + timeSuffix + suffix
	}
}

func randomSuffix(n int) string {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("failed to read random bytes: %v", err))
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b)
}
