// Package entropy provides the random sources a game session draws from.
// Seeded sources are reproducible; the crypto and random.org sources are
// for live play where nobody needs to replay a run.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"net/http"
	"sync"
	"time"
)

// Source is the single random stream a session uses for every outcome.
type Source interface {
	Float64() float64 // uniform in [0, 1)
	IntN(n int) int   // uniform in [0, n); panics if n <= 0
}

// Seeded is a deterministic PCG stream.
type Seeded struct {
	rng  *mrand.Rand
	seed int64
}

// NewSeeded returns a reproducible source for seed.
func NewSeeded(seed int64) *Seeded {
	// #nosec G404 -- deterministic replay is the point.
	return &Seeded{
		rng:  mrand.New(mrand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b"))),
		seed: seed,
	}
}

func (s *Seeded) Float64() float64 { return s.rng.Float64() }
func (s *Seeded) IntN(n int) int   { return s.rng.IntN(n) }

// Seed returns the seed the stream was created with.
func (s *Seeded) Seed() int64 { return s.seed }

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Crypto draws from crypto/rand.
type Crypto struct{}

func (Crypto) Float64() float64 { return cryptoRandFloat() }
func (Crypto) IntN(n int) int   { return intFromFloat(cryptoRandFloat(), n) }

// Client provides true random numbers from random.org with a local pool.
type Client struct {
	apiKey string
	client *http.Client

	mu   sync.Mutex
	pool []float64
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Float64 returns a random float64 in [0, 1). Uses the pool, refilling from
// random.org when low. Falls back to crypto/rand on API failure.
func (c *Client) Float64() float64 {
	if c == nil {
		return cryptoRandFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < 10 {
		c.refill()
	}

	if len(c.pool) == 0 {
		return cryptoRandFloat()
	}

	val := c.pool[0]
	c.pool = c.pool[1:]
	return val
}

// IntN maps a pooled fraction onto [0, n).
func (c *Client) IntN(n int) int {
	return intFromFloat(c.Float64(), n)
}

func (c *Client) refill() {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        c.apiKey,
			"n":             100,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return
	}

	resp, err := c.client.Post("https://api.random.org/json-rpc/4/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return
	}

	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return
	}

	c.pool = append(c.pool, result.Result.Random.Data...)
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// ForSession picks the source for a new session. An explicit seed always
// wins so the run can be replayed; otherwise random.org is used when
// configured, then crypto/rand.
func ForSession(seed *int64, c *Client) Source {
	if seed != nil {
		return NewSeeded(*seed)
	}
	if c.Enabled() {
		return c
	}
	return Crypto{}
}

// ResumeSeed offsets a saved seed by the game time reached, so a reloaded
// game draws a fresh stream instead of replaying the one it already used.
// A nil seed stays nil.
func ResumeSeed(seed *int64, gameTime uint64) *int64 {
	if seed == nil {
		return nil
	}
	offset := *seed + int64(gameTime)
	return &offset
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return 0.5
	}
	// 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

func intFromFloat(f float64, n int) int {
	if n <= 0 {
		panic("entropy: IntN with non-positive n")
	}
	i := int(f * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
