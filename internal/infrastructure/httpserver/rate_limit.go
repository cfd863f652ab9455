package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	valueobjects "walletprogram/internal/domain/value_objects"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/time/rate"
)

const (
	headerWalletSigner    = "X-Wallet-Signer"
	headerWalletSignature = "X-Wallet-Signature"

	// Bodies past this size are not read for signer verification; the
	// controller rejects them anyway.
	maxSignedBodyBytes = 16 << 10

	clientIdleTTL = 10 * time.Minute
)

// RateLimit bounds mutating requests per client. A client is the signer when
// its signature checks out, otherwise the remote host.
type RateLimit struct {
	Enabled          bool
	PerMinute        int
	Burst            int
	VerifySignatures bool
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	every     rate.Limit
	burst     int
	verify    bool
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(config RateLimit) *rateLimiter {
	burst := config.Burst
	if burst <= 0 {
		burst = config.PerMinute
	}
	return &rateLimiter{
		clients: map[string]*clientLimiter{},
		every:   rate.Every(time.Minute / time.Duration(config.PerMinute)),
		burst:   burst,
		verify:  config.VerifySignatures,
		now:     time.Now,
	}
}

// reserve takes one token for the client and returns how long it must wait
// when none is available.
func (l *rateLimiter) reserve(clientKey string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > clientIdleTTL {
		for key, client := range l.clients {
			if now.Sub(client.lastSeen) > clientIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	client, exists := l.clients[clientKey]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[clientKey] = client
	}
	client.lastSeen = now

	reservation := client.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return time.Minute
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
	}
	return delay
}

func (l *rateLimiter) clientKey(r *http.Request) string {
	if signer, ok := l.signer(r); ok {
		return "signer:" + signer.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// signer returns the claimed signer when it can be trusted as a key. With
// signatures enforced that means the signature verifies over the request;
// the body is restored for the handler either way.
func (l *rateLimiter) signer(r *http.Request) (solana.PublicKey, bool) {
	raw := strings.TrimSpace(r.Header.Get(headerWalletSigner))
	if raw == "" {
		return solana.PublicKey{}, false
	}
	signer, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, false
	}
	if !l.verify {
		return signer, true
	}

	var body []byte
	if r.Body != nil {
		body, err = io.ReadAll(io.LimitReader(r.Body, maxSignedBodyBytes+1))
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(body), r.Body), r.Body}
		if err != nil || len(body) > maxSignedBodyBytes {
			return solana.PublicKey{}, false
		}
	}

	message := valueobjects.SignedRequestMessage(r.Method, r.URL.Path, body)
	if appErr := valueobjects.VerifySignerSignature(signer, r.Header.Get(headerWalletSignature), message); appErr != nil {
		return solana.PublicKey{}, false
	}
	return signer, true
}

// withRateLimit answers 429 with Retry-After once a client spends its budget
// of mutating requests. Reads are never limited.
func withRateLimit(next http.Handler, config RateLimit, logger *log.Logger) http.Handler {
	if !config.Enabled || config.PerMinute <= 0 {
		return next
	}
	limiter := newRateLimiter(config)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		clientKey := limiter.clientKey(r)
		delay := limiter.reserve(clientKey)
		if delay <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := int(math.Ceil(delay.Seconds()))
		if logger != nil {
			logger.Printf(
				"rate limit exceeded client=%s method=%s path=%s retry_after_s=%d",
				clientKey,
				r.Method,
				r.URL.Path,
				retryAfter,
			)
		}

		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    "rate_limited",
				"message": "too many requests, retry later",
				"details": map[string]any{"retry_after_seconds": retryAfter},
			},
		})
	})
}
