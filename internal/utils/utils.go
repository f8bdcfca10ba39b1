package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/kaimonolist/linkd/internal/config"

	"github.com/gin-gonic/gin"
)

// Link code alphabet, visually ambiguous characters excluded (0/O, 1/I).
const LinkCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateLinkCode draws length characters from the unambiguous alphabet.
func GenerateLinkCode(length int) (string, error) {
	var builder strings.Builder

	for range length {
		index, err := rand.Int(rand.Reader, big.NewInt(int64(len(LinkCodeAlphabet))))
		if err != nil {
			return "", err
		}
		builder.WriteByte(LinkCodeAlphabet[index.Int64()])
	}

	return builder.String(), nil
}

// GenerateToken returns byteLength random bytes hex encoded.
func GenerateToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

// HashRecoveryKey returns the sha256 hex digest used to key recovery
// records. The plaintext secret is never stored.
func HashRecoveryKey(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}

// Reads a file and returns the contents
func ReadFile(file string) (string, error) {
	if _, err := os.Stat(file); err != nil {
		return "", err
	}

	data, err := os.ReadFile(file)

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Get the secret from the config or file
func GetSecret(conf string, file string) string {
	if conf != "" {
		return conf
	}

	if file == "" {
		return ""
	}

	contents, err := ReadFile(file)

	if err != nil {
		return ""
	}

	return ParseSecretFile(contents)
}

// ParseSecretFile returns the first non-empty line of a secret file.
func ParseSecretFile(contents string) string {
	for _, line := range strings.Split(contents, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}

	return ""
}

// GetContext returns the user context set by the context middleware.
func GetContext(c *gin.Context) (config.UserContext, error) {
	userContextValue, exists := c.Get("context")

	if !exists {
		return config.UserContext{}, errors.New("no user context in request")
	}

	userContext, ok := userContextValue.(*config.UserContext)

	if !ok {
		return config.UserContext{}, errors.New("invalid user context in request")
	}

	return *userContext, nil
}
