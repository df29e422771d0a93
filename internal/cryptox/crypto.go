// Package cryptox holds the client-side cryptography of the relay client.
//
// The relay itself never looks at keys or message bodies. Clients publish
// an X25519 public key (NUL padded into the 160-byte key field of the wire
// protocol) and seal text messages to the recipient's key with an
// anonymous NaCl box. The local profile can keep its private key under a
// passphrase: the passphrase is stretched with Argon2id and the key is
// stored AES-GCM encrypted.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/protocol"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/box"
)

// KeySize is the length of an X25519 key.
const KeySize = 32

var (
	ErrNotX25519Key = errors.New("public key field does not hold an X25519 key")
	ErrOpenFailed   = errors.New("message could not be opened with this key")
)

// GenerateKeyPair creates a fresh X25519 key pair.
func GenerateKeyPair() (publicKey, privateKey *[KeySize]byte, err error) {
	return box.GenerateKey(rand.Reader)
}

// PackPublicKey places pub at the start of the wire key field. The rest of
// the field stays zero.
func PackPublicKey(pub *[KeySize]byte) protocol.PublicKey {
	var field protocol.PublicKey
	copy(field[:], pub[:])
	return field
}

// UnpackPublicKey extracts an X25519 key from the wire key field. Keys
// published by other clients may use the field differently; those are
// rejected rather than misread.
func UnpackPublicKey(field protocol.PublicKey) (*[KeySize]byte, error) {
	for _, b := range field[KeySize:] {
		if b != 0 {
			return nil, ErrNotX25519Key
		}
	}
	var pub [KeySize]byte
	copy(pub[:], field[:KeySize])
	if pub == [KeySize]byte{} {
		return nil, ErrNotX25519Key
	}
	return &pub, nil
}

// SealMessage encrypts plaintext for the holder of recipient's private key.
// The sender stays anonymous to the relay.
func SealMessage(plaintext []byte, recipient *[KeySize]byte) ([]byte, error) {
	return box.SealAnonymous(nil, plaintext, recipient, rand.Reader)
}

// OpenMessage decrypts a message produced by SealMessage.
func OpenMessage(sealed []byte, publicKey, privateKey *[KeySize]byte) ([]byte, error) {
	plaintext, ok := box.OpenAnonymous(nil, sealed, publicKey, privateKey)
	if !ok {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

// DeriveMasterKey stretches a passphrase into a 32-byte AES key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	x := argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
	return x
}

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("random bytes: %w", err)
	}
	return b, nil
}

// EncryptBytes encrypts plaintext using AES-GCM with a fresh random nonce.
//
// The key must be a valid AES key length (16, 24, or 32 bytes). The
// ciphertext and nonce are returned separately.
func EncryptBytes(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = RandomBytes(aesgcm.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// DecryptBytes reverses EncryptBytes. A wrong key or nonce, or tampered
// ciphertext, yields an error.
func DecryptBytes(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", aesgcm.NonceSize(), len(nonce))
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Wipe overwrites b with zeros. Use it on passphrases and key material once
// they are no longer needed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
