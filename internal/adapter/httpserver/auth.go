package httpserver

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw callback body.
const SignatureHeader = "X-Signature"

// Argon2Params defines parameters for Argon2id token hashing
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultArgon2Params are used when hashing a new operator token.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// HashToken creates an Argon2id hash suitable for OPERATOR_TOKEN_HASH.
func HashToken(token string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(token), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen)

	// Format: argon2id$iterations$memory$parallelism$salt$hash (base64 encoded)
	return fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		params.Iterations,
		params.Memory,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyToken verifies a bearer token against its Argon2id hash.
func VerifyToken(token, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false
	}
	iters, err1 := parseUint32(parts[1])
	mem, err2 := parseUint32(parts[2])
	par64, err3 := parseUint32(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}
	var par uint8 = math.MaxUint8
	if par64 < math.MaxUint8 {
		par = uint8(par64)
	}
	actual := argon2.IDKey([]byte(token), salt, iters, mem, par, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// parseUint32 parses a decimal string into uint32; returns error on failure
func parseUint32(s string) (uint32, error) {
	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse")
	}
	return uint32(x), nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// verifySignature checks header against HMAC-SHA256(secret, body). The
// header may carry a "sha256=" prefix.
func verifySignature(secret string, body []byte, header string) bool {
	header = strings.TrimSpace(header)
	header = strings.TrimPrefix(header, "sha256=")
	got, err := hex.DecodeString(header)
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// OperatorAuth guards the operator endpoints with the hashed bearer token.
// With no hash configured every request is refused.
func (s *Server) OperatorAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if !s.Cfg.OperatorEnabled() || tok == "" || !VerifyToken(tok, s.Cfg.OperatorTokenHash) {
			s.unauthorized(w, r, usecase.SourceOperator, "invalid operator token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SweepAuth guards the sweep trigger with SWEEP_SECRET. An empty secret is
// only tolerated in dev.
func (s *Server) SweepAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Cfg.SweepSecret == "" {
			if s.Cfg.IsDev() {
				LoggerFrom(r).Warn("sweep secret not configured; accepting unauthenticated sweep")
				next.ServeHTTP(w, r)
				return
			}
			s.unauthorized(w, r, usecase.SourceSweep, "sweep secret not configured")
			return
		}
		tok := bearerToken(r)
		if subtle.ConstantTimeCompare([]byte(tok), []byte(s.Cfg.SweepSecret)) != 1 {
			s.unauthorized(w, r, usecase.SourceSweep, "invalid sweep token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, source, msg string) {
	err := fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	LoggerFrom(r).Warn("request unauthorized", slog.String("source", source), slog.String("path", r.URL.Path))
	s.record(r.Context(), usecase.NewErrorEntry(source, err, ""))
	writeError(w, r, err, nil)
}
