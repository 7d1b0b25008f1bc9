// Package crypto protects stored object properties with the server data key.
//
// Credential properties of managed and internal users may be persisted
// encrypted rather than hashed when the deployment needs to recover the
// original value. This package implements the cipher and the JSON wrapper
// format those properties use.
//
// # Symmetric encryption
//
// The SymmetricCipher interface provides AES-256-GCM encryption:
//
//	cipher, err := crypto.NewSymmetric(dataKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encrypt with associated data for authentication
//	ciphertext, err := cipher.Encrypt([]byte("idm-data-key"), []byte("secret"))
//
//	// Decrypt
//	plaintext, err := cipher.Decrypt([]byte("idm-data-key"), ciphertext)
//
// Each packed ciphertext carries a version byte and the nonce, so a stored
// value is self-contained and the format can evolve.
//
// # Encrypted properties
//
// Service wraps the cipher for property-level use. An encrypted property
// is represented in a stored JSON document as a $crypto object:
//
//	{
//	    "$crypto": {
//	        "type": "x-simple-encryption",
//	        "value": {
//	            "cipher": "AES/GCM/NoPadding",
//	            "key": "idm-data-key",
//	            "data": "<base64 ciphertext>"
//	        }
//	    }
//	}
//
// IsEncrypted detects the wrapper shape and DecryptField recovers the
// plaintext, which lets authentication modules compare a submitted
// credential against either encrypted, hashed, or plaintext stored values.
package crypto
