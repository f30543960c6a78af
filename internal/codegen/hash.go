package codegen

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashGrammar returns a short content fingerprint of grammar source bytes,
// embedded in the emitted file's header comment so a consumer can tell a
// generated file is stale against the grammar it came from (§10.9 of the
// expanded spec). blake2b is used purely as a fast, well-distributed digest
// here, not for any cryptographic guarantee.
func HashGrammar(src []byte) string {
	sum := blake2b.Sum256(src)
	return hex.EncodeToString(sum[:8])
}
