package builtins

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2b"

	sha512crypt "github.com/sergeymakinen/go-crypt/sha512"

	"ore/heap"
	"ore/types"
)

// ============================================================================
// HASHING BUILTINS
// ============================================================================

// builtinSha256 returns the hex SHA-256 digest of a string
// sha256(str) -> str
func builtinSha256(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	s, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	sum := sha256.Sum256([]byte(s))
	return types.Ok(ip.Heap().NewString(hex.EncodeToString(sum[:])).Ref())
}

// builtinBlake2b returns the hex BLAKE2b-256 digest of a string
// blake2b(str) -> str
func builtinBlake2b(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	s, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	sum := blake2b.Sum256([]byte(s))
	return types.Ok(ip.Heap().NewString(hex.EncodeToString(sum[:])).Ref())
}

// builtinArgon2 derives a hex Argon2id key from a password and salt
// argon2(password, salt) -> str
func builtinArgon2(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	password, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	salt, r := stringArg(ip, args, 1)
	if !r.IsNormal() {
		return r
	}
	key := argon2.IDKey([]byte(password), []byte(salt), 1, 64*1024, 4, 32)
	return types.Ok(ip.Heap().NewString(hex.EncodeToString(key)).Ref())
}

// builtinCryptCheck verifies a password against a SHA-512-crypt ($6$)
// hash, the scheme unix password files use
// crypt_check(hash, password) -> bool
func builtinCryptCheck(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	hash, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	password, r := stringArg(ip, args, 1)
	if !r.IsNormal() {
		return r
	}
	err := sha512crypt.Check(hash, password)
	return types.Ok(types.NewBool(err == nil))
}
