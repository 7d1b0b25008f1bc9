package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// CryptoKey marks a JSON object as an encrypted property wrapper.
	CryptoKey = "$crypto"

	// TypeSimpleEncryption is the wrapper type for values encrypted with
	// the server data key.
	TypeSimpleEncryption = "x-simple-encryption"

	// DefaultKeyAlias names the data key recorded in wrappers when no
	// alias is configured.
	DefaultKeyAlias = "idm-data-key"

	cipherAlgorithm = "AES/GCM/NoPadding"
)

// ErrNotEncrypted is returned by DecryptField when the value carries no
// recognisable crypto wrapper.
var ErrNotEncrypted = errors.New("value is not an encrypted property")

// Service encrypts and decrypts individual object properties. Encrypted
// properties are stored as $crypto wrapper objects, so they can live in
// the same JSON document as plaintext properties and be detected on read.
type Service struct {
	cipher   SymmetricCipher
	keyAlias string
}

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithKeyAlias overrides the key alias recorded in produced wrappers and
// used as the authentication context for new ciphertexts.
func WithKeyAlias(alias string) ServiceOption {
	return func(s *Service) {
		s.keyAlias = alias
	}
}

// NewService builds a property encryption service around the given data key.
func NewService(dataKey []byte, opts ...ServiceOption) (*Service, error) {
	symmetricCipher, err := NewSymmetric(dataKey)
	if err != nil {
		return nil, err
	}

	s := &Service{cipher: symmetricCipher, keyAlias: DefaultKeyAlias}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsEncrypted reports whether value is a crypto wrapper produced by
// EncryptField.
func (s *Service) IsEncrypted(value interface{}) bool {
	_, ok := unwrap(value)
	return ok
}

// DecryptField unwraps and decrypts an encrypted property value.
func (s *Service) DecryptField(value interface{}) (string, error) {
	wrapper, ok := unwrap(value)
	if !ok {
		return "", ErrNotEncrypted
	}

	data, _ := wrapper["data"].(string)
	if data == "" {
		return "", errors.New("crypto wrapper carries no data")
	}

	packed, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("crypto wrapper data is not valid base64: %w", err)
	}

	alias, _ := wrapper["key"].(string)
	if alias == "" {
		alias = s.keyAlias
	}

	plaintext, err := s.cipher.Decrypt([]byte(alias), packed)
	if err != nil {
		return "", fmt.Errorf("decrypt property: %w", err)
	}

	return string(plaintext), nil
}

// EncryptField encrypts a property value into a $crypto wrapper ready to
// be stored inside a managed object.
func (s *Service) EncryptField(plaintext string) (map[string]interface{}, error) {
	packed, err := s.cipher.Encrypt([]byte(s.keyAlias), []byte(plaintext))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		CryptoKey: map[string]interface{}{
			"type": TypeSimpleEncryption,
			"value": map[string]interface{}{
				"cipher": cipherAlgorithm,
				"key":    s.keyAlias,
				"data":   base64.StdEncoding.EncodeToString(packed),
			},
		},
	}, nil
}

// unwrap extracts the inner value map from a $crypto wrapper. It accepts
// the map shape produced by encoding/json so values read straight from a
// stored document can be tested without conversion.
func unwrap(value interface{}) (map[string]interface{}, bool) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, false
	}

	wrapper, ok := obj[CryptoKey].(map[string]interface{})
	if !ok {
		return nil, false
	}

	if wrapperType, _ := wrapper["type"].(string); wrapperType != TypeSimpleEncryption {
		return nil, false
	}

	inner, ok := wrapper["value"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	return inner, true
}
