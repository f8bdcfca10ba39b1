package utils_test

import (
	"strings"
	"testing"

	"github.com/kaimonolist/linkd/internal/utils"

	"gotest.tools/v3/assert"
)

func TestGenerateLinkCode(t *testing.T) {
	seen := map[string]bool{}

	for range 50 {
		code, err := utils.GenerateLinkCode(6)

		assert.NilError(t, err)
		assert.Equal(t, 6, len(code))

		for _, char := range code {
			assert.Assert(t, strings.ContainsRune(utils.LinkCodeAlphabet, char), "unexpected character %q", char)
		}

		seen[code] = true
	}

	// 50 draws from a 32^6 space should never collide.
	assert.Equal(t, 50, len(seen))
}

func TestGenerateToken(t *testing.T) {
	token, err := utils.GenerateToken(32)

	assert.NilError(t, err)
	assert.Equal(t, 64, len(token))

	other, err := utils.GenerateToken(32)

	assert.NilError(t, err)
	assert.Assert(t, token != other)
}

func TestHashRecoveryKey(t *testing.T) {
	hash := utils.HashRecoveryKey("secret")

	assert.Equal(t, 64, len(hash))
	assert.Equal(t, hash, utils.HashRecoveryKey("secret"))
	assert.Assert(t, hash != utils.HashRecoveryKey("other"))
}

func TestParseSecretFile(t *testing.T) {
	assert.Equal(t, "secret", utils.ParseSecretFile("secret"))
	assert.Equal(t, "secret", utils.ParseSecretFile("\n\n  secret  \n"))
	assert.Equal(t, "", utils.ParseSecretFile("\n \n"))
}

func TestGetSecret(t *testing.T) {
	assert.Equal(t, "inline", utils.GetSecret("inline", "/nonexistent"))
	assert.Equal(t, "", utils.GetSecret("", ""))
	assert.Equal(t, "", utils.GetSecret("", "/nonexistent"))
}
