package md5vault

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaultsandbox/md5vault/internal/crypto"
)

// sealedExportAAD binds sealed exports to this format.
var sealedExportAAD = []byte("md5vault:store-export:v1")

// Keypair is an ML-KEM-768 keypair. The recipient of a sealed export
// holds it; the exporter only needs Keypair.PublicKey.
type Keypair = crypto.Keypair

// Signer is an ML-DSA-65 signing key used to sign sealed exports.
type Signer = crypto.Signer

// SealedExport is an encrypted, signed [ExportedStore]. It marshals to
// JSON with base64url fields.
type SealedExport = crypto.Envelope

// GenerateKeypair creates a new recipient keypair.
func GenerateKeypair() (*Keypair, error) {
	return crypto.GenerateKeypair()
}

// KeypairFromSecretKey rebuilds a recipient keypair from its secret key.
func KeypairFromSecretKey(secretKey []byte) (*Keypair, error) {
	return crypto.KeypairFromSecretKey(secretKey)
}

// GenerateSigner creates a new export signing key.
func GenerateSigner() (*Signer, error) {
	return crypto.GenerateSigner()
}

// SignerFromPrivateKey restores a signer from Signer.PrivateKey output.
func SignerFromPrivateKey(privateKey []byte) (*Signer, error) {
	return crypto.SignerFromPrivateKey(privateKey)
}

// ExportSealed exports the store, encrypts it to recipientPublicKey and
// signs it with signer.
func (s *Store) ExportSealed(recipientPublicKey []byte, signer *Signer) (*SealedExport, error) {
	exported, err := s.Export()
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(exported)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	env, err := crypto.Seal(plaintext, sealedExportAAD, recipientPublicKey, signer)
	if err != nil {
		return nil, fmt.Errorf("seal export: %w", err)
	}

	s.logger.Info("store exported sealed", zap.Int("accounts", len(exported.Accounts)))
	return env, nil
}

// ImportSealed verifies, decrypts and imports a sealed export. The
// envelope must be signed by trustedSignerKey; nothing is decrypted until
// the signature has been checked.
func (s *Store) ImportSealed(env *SealedExport, kp *Keypair, trustedSignerKey []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if env == nil {
		return fmt.Errorf("%w: no sealed export", ErrInvalidImportData)
	}
	if kp == nil || !crypto.ValidateKeypair(kp) {
		return fmt.Errorf("%w: invalid recipient keypair", ErrInvalidImportData)
	}

	signerPk, err := crypto.FromBase64URL(env.SignerPk)
	if err != nil {
		return fmt.Errorf("%w: invalid signer_pk encoding", ErrInvalidImportData)
	}
	if !bytes.Equal(signerPk, trustedSignerKey) {
		s.logger.Warn("sealed export from untrusted signer")
		return ErrSignerMismatch
	}

	plaintext, err := crypto.Open(env, kp)
	if err != nil {
		s.logger.Warn("sealed export rejected", zap.Error(err))
		return wrapCryptoError(err)
	}

	var exported ExportedStore
	if err := json.Unmarshal(plaintext, &exported); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImportData, err)
	}

	return s.Import(&exported)
}
