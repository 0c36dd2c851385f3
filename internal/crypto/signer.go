package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// Signer holds an ML-DSA-65 signing key. The exporting side signs every
// envelope; importers pin [Signer.PublicKey].
type Signer struct {
	// PublicKey is the raw ML-DSA-65 public key bytes.
	PublicKey []byte

	key *mldsa65.PrivateKey
}

// GenerateSigner creates a new ML-DSA-65 signing key.
func GenerateSigner() (*Signer, error) {
	pub, priv, err := mldsa65.GenerateKey(randReader)
	if err != nil {
		return nil, err
	}

	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	return &Signer{PublicKey: pubBytes, key: priv}, nil
}

// SignerFromPrivateKey restores a signer from [Signer.PrivateKey] output.
func SignerFromPrivateKey(privateKey []byte) (*Signer, error) {
	if len(privateKey) != mldsa65.PrivateKeySize {
		return nil, ErrInvalidSecretKeySize
	}

	priv := &mldsa65.PrivateKey{}
	if err := priv.UnmarshalBinary(privateKey); err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	pub, ok := priv.Public().(*mldsa65.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected public key type %T", priv.Public())
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	return &Signer{PublicKey: pubBytes, key: priv}, nil
}

// PrivateKey returns the packed private key. Keep it out of logs and
// version control.
func (s *Signer) PrivateKey() []byte {
	return s.key.Bytes()
}

// Sign returns a deterministic ML-DSA-65 signature over message.
func (s *Signer) Sign(message []byte) ([]byte, error) {
	sig := make([]byte, MLDSASignatureSize)
	if err := mldsa65.SignTo(s.key, message, nil, false, sig); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig, nil
}

// Verify verifies an ML-DSA-65 signature (low-level function).
func Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != MLDSAPublicKeySize {
		return ErrInvalidPublicKeySize
	}

	pk := &mldsa65.PublicKey{}
	if err := pk.UnmarshalBinary(publicKey); err != nil {
		return fmt.Errorf("failed to parse public key: %w", err)
	}

	if !mldsa65.Verify(pk, message, nil, signature) {
		return ErrSignatureVerificationFailed
	}

	return nil
}
