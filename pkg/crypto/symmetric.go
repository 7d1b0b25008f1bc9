package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the length in bytes of a generated data key.
	KeySize = 32

	// ivSize is the AES-GCM nonce length in bytes.
	ivSize = 12

	// versionMagic prefixes every packed value so the stored format can be
	// recognised and evolved without rewriting existing rows.
	versionMagic = 'G'
)

// tagSize is the GCM authentication tag length in bytes.
var tagSize = aes.BlockSize

// SymmetricCipher encrypts and decrypts byte payloads under the server
// data key. Encrypt packs the nonce alongside the ciphertext, so the
// output is a single self-contained value suitable for storage. The aad
// parameter binds a ciphertext to its context; decryption fails when the
// context differs.
type SymmetricCipher interface {
	Decrypt(aad []byte, packedCiphertext []byte) ([]byte, error)
	Encrypt(aad []byte, plaintext []byte) ([]byte, error)
}

type symmetric struct {
	aesgcm cipher.AEAD
}

// NewSymmetric returns a SymmetricCipher backed by AES-GCM. The key must
// be a valid AES key length; data keys generated by the CLI are KeySize
// bytes, selecting AES-256.
func NewSymmetric(key []byte) (SymmetricCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, err
	}

	return &symmetric{aesgcm: aesgcm}, nil
}

func (s *symmetric) Decrypt(aad []byte, packedCiphertext []byte) ([]byte, error) {
	cipherText, iv, err := unpackCipherData(packedCiphertext)
	if err != nil {
		return nil, err
	}

	return s.aesgcm.Open(nil, iv, cipherText, aad)
}

func (s *symmetric) Encrypt(aad []byte, plaintext []byte) ([]byte, error) {
	iv, err := RandomBytes(ivSize)
	if err != nil {
		return nil, err
	}

	return packCipherData(s.aesgcm.Seal(nil, iv, plaintext, aad), iv), nil
}

// packCipherData lays a stored value out as versionMagic | iv | ciphertext.
// The GCM tag stays appended to the ciphertext the way the standard
// library produces it.
func packCipherData(ciphertext []byte, iv []byte) []byte {
	packed := make([]byte, 0, 1+len(iv)+len(ciphertext))
	packed = append(packed, versionMagic)
	packed = append(packed, iv...)
	packed = append(packed, ciphertext...)
	return packed
}

func unpackCipherData(data []byte) (ciphertext []byte, iv []byte, err error) {
	if len(data) < 1+ivSize+tagSize {
		return nil, nil, errors.New("encrypted value too short")
	}
	if data[0] != versionMagic {
		return nil, nil, fmt.Errorf("unrecognized encrypted value version %q", data[0])
	}
	return data[1+ivSize:], data[1 : 1+ivSize], nil
}

// RandomBytes returns n cryptographically secure random bytes. It is used
// for nonces and for generating fresh data keys.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
