package crypto

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// randReader is the random source used for key generation, encapsulation
// and nonces. It defaults to nil (which uses crypto/rand) but can be
// overridden for testing.
var randReader io.Reader

func randSource() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// Keypair represents an ML-KEM-768 keypair. The recipient of a sealed
// export holds the keypair; the exporter only needs the public key.
type Keypair struct {
	// PublicKey is the raw ML-KEM-768 public key bytes.
	PublicKey []byte
	// SecretKey is the raw ML-KEM-768 secret key bytes.
	SecretKey []byte
	// PublicKeyB64 is the public key encoded as URL-safe base64.
	PublicKeyB64 string
}

// GenerateKeypair creates a new ML-KEM-768 keypair.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := mlkem768.GenerateKeyPair(randReader)
	if err != nil {
		return nil, err
	}

	// MarshalBinary never fails for valid keys from GenerateKeyPair
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()

	return &Keypair{
		PublicKey:    pubBytes,
		SecretKey:    privBytes,
		PublicKeyB64: ToBase64URL(pubBytes),
	}, nil
}

// KeypairFromSecretKey reconstructs a keypair from the secret key.
// The public key is embedded in the secret key at offset 1152.
func KeypairFromSecretKey(secretKey []byte) (*Keypair, error) {
	if len(secretKey) != MLKEMSecretKeySize {
		return nil, ErrInvalidSecretKeySize
	}

	publicKey := make([]byte, MLKEMPublicKeySize)
	copy(publicKey, secretKey[PublicKeyOffset:PublicKeyOffset+MLKEMPublicKeySize])

	return &Keypair{
		PublicKey:    publicKey,
		SecretKey:    secretKey,
		PublicKeyB64: ToBase64URL(publicKey),
	}, nil
}

// ValidateKeypair reports whether a keypair has the expected sizes and a
// public key encoding that matches its raw bytes.
func ValidateKeypair(keypair *Keypair) bool {
	if keypair == nil {
		return false
	}
	if len(keypair.PublicKey) != MLKEMPublicKeySize || len(keypair.SecretKey) != MLKEMSecretKeySize {
		return false
	}

	decoded, err := FromBase64URL(keypair.PublicKeyB64)
	if err != nil {
		return false
	}
	return bytes.Equal(decoded, keypair.PublicKey)
}

// Encapsulate creates a fresh shared secret for the holder of publicKey.
// It returns the KEM ciphertext to send along and the shared secret.
func Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	if len(publicKey) != MLKEMPublicKeySize {
		return nil, nil, ErrInvalidPublicKeySize
	}

	var pub mlkem768.PublicKey
	if err := pub.Unpack(publicKey); err != nil {
		return nil, nil, fmt.Errorf("unpack public key: %w", err)
	}

	// A nil seed makes circl draw from crypto/rand.
	var seed []byte
	if randReader != nil {
		seed = make([]byte, mlkem768.EncapsulationSeedSize)
		if _, err := io.ReadFull(randReader, seed); err != nil {
			return nil, nil, fmt.Errorf("read encapsulation seed: %w", err)
		}
	}

	ciphertext = make([]byte, MLKEMCiphertextSize)
	sharedSecret = make([]byte, MLKEMSharedKeySize)
	pub.EncapsulateTo(ciphertext, sharedSecret, seed)

	return ciphertext, sharedSecret, nil
}

// Decapsulate recovers the shared secret from a KEM ciphertext.
func (k *Keypair) Decapsulate(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != MLKEMCiphertextSize {
		return nil, ErrInvalidCiphertextSize
	}

	var priv mlkem768.PrivateKey
	if err := priv.Unpack(k.SecretKey); err != nil {
		return nil, fmt.Errorf("unpack secret key: %w", err)
	}

	sharedSecret := make([]byte, MLKEMSharedKeySize)
	priv.DecapsulateTo(sharedSecret, ciphertext)

	return sharedSecret, nil
}
