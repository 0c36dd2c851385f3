package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Envelope is a sealed, signed document.
type Envelope struct {
	// V is the envelope version number.
	V int `json:"v"`
	// Algs specifies the cryptographic algorithm suite used.
	Algs AlgorithmSuite `json:"algs"`
	// CtKem is the ML-KEM-768 ciphertext (base64url-encoded).
	CtKem string `json:"ct_kem"`
	// Nonce is the AES-GCM nonce (base64url-encoded).
	Nonce string `json:"nonce"`
	// AAD is the additional authenticated data (base64url-encoded).
	AAD string `json:"aad"`
	// Ciphertext is the AES-GCM encrypted content (base64url-encoded).
	Ciphertext string `json:"ciphertext"`
	// Sig is the ML-DSA-65 signature over the transcript (base64url-encoded).
	Sig string `json:"sig"`
	// SignerPk is the signer's ML-DSA-65 public key (base64url-encoded).
	SignerPk string `json:"signer_pk"`
}

// AlgorithmSuite represents the cryptographic algorithm suite.
type AlgorithmSuite struct {
	// KEM is the key encapsulation mechanism (e.g., "ML-KEM-768").
	KEM string `json:"kem"`
	// Sig is the signature algorithm (e.g., "ML-DSA-65").
	Sig string `json:"sig"`
	// AEAD is the authenticated encryption algorithm (e.g., "AES-256-GCM").
	AEAD string `json:"aead"`
	// KDF is the key derivation function (e.g., "HKDF-SHA-512").
	KDF string `json:"kdf"`
}

func (a AlgorithmSuite) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", a.KEM, a.Sig, a.AEAD, a.KDF)
}

// envelopeParts holds the decoded binary fields of an envelope.
type envelopeParts struct {
	ctKem, nonce, aad, ciphertext, sig, signerPk []byte
}

// Seal encrypts plaintext to the holder of recipientPublicKey and signs the
// result with signer.
//
// The sealing process:
//  1. ML-KEM-768 encapsulation to the recipient's public key
//  2. HKDF-SHA-512 key derivation from the shared secret, AAD and KEM ciphertext
//  3. AES-256-GCM encryption under a fresh nonce
//  4. ML-DSA-65 signature over the transcript
func Seal(plaintext, aad, recipientPublicKey []byte, signer *Signer) (*Envelope, error) {
	if signer == nil {
		return nil, ErrMissingSigner
	}

	ctKem, sharedSecret, err := Encapsulate(recipientPublicKey)
	if err != nil {
		return nil, fmt.Errorf("encapsulate: %w", err)
	}

	aesKey, err := deriveKey(sharedSecret, aad, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}

	ciphertext, err := encryptAESGCM(aesKey, nonce, aad, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	transcript := buildTranscript(EnvelopeVersion, Suite, ctKem, nonce, aad, ciphertext, signer.PublicKey)
	sig, err := signer.Sign(transcript)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		V:          EnvelopeVersion,
		Algs:       Suite,
		CtKem:      ToBase64URL(ctKem),
		Nonce:      ToBase64URL(nonce),
		AAD:        ToBase64URL(aad),
		Ciphertext: ToBase64URL(ciphertext),
		Sig:        ToBase64URL(sig),
		SignerPk:   ToBase64URL(signer.PublicKey),
	}, nil
}

// VerifyEnvelope verifies the ML-DSA-65 signature on the envelope against
// the signer key the envelope carries. Callers that trust a particular
// exporter must compare SignerPk with the pinned key as well.
func VerifyEnvelope(env *Envelope) error {
	parts, err := decodeEnvelope(env)
	if err != nil {
		return err
	}
	return verifyParts(env, parts)
}

func verifyParts(env *Envelope, p *envelopeParts) error {
	transcript := buildTranscript(env.V, env.Algs, p.ctKem, p.nonce, p.aad, p.ciphertext, p.signerPk)
	return Verify(p.signerPk, transcript, p.sig)
}

// Open verifies and then decrypts an envelope with the recipient keypair.
// Nothing is decrypted unless the signature checks out.
func Open(env *Envelope, keypair *Keypair) ([]byte, error) {
	parts, err := decodeEnvelope(env)
	if err != nil {
		return nil, err
	}

	if err := verifyParts(env, parts); err != nil {
		return nil, err
	}

	// 1. KEM Decapsulation
	sharedSecret, err := keypair.Decapsulate(parts.ctKem)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}

	// 2. Key Derivation (HKDF-SHA-512)
	aesKey, err := deriveKey(sharedSecret, parts.aad, parts.ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	// 3. AES-256-GCM Decryption
	plaintext, err := decryptAESGCM(aesKey, parts.nonce, parts.aad, parts.ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}

	return plaintext, nil
}

// decodeEnvelope checks the version and suite and decodes every field.
func decodeEnvelope(env *Envelope) (*envelopeParts, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil envelope", ErrInvalidEnvelope)
	}
	if env.V != EnvelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidAlgorithm, env.V)
	}
	if env.Algs != Suite {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAlgorithm, env.Algs)
	}

	p := &envelopeParts{}
	fields := []struct {
		name string
		in   string
		out  *[]byte
	}{
		{"ct_kem", env.CtKem, &p.ctKem},
		{"nonce", env.Nonce, &p.nonce},
		{"aad", env.AAD, &p.aad},
		{"ciphertext", env.Ciphertext, &p.ciphertext},
		{"sig", env.Sig, &p.sig},
		{"signer_pk", env.SignerPk, &p.signerPk},
	}
	for _, f := range fields {
		decoded, err := FromBase64URL(f.in)
		if err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidEnvelope, f.name, err)
		}
		*f.out = decoded
	}

	if len(p.ctKem) != MLKEMCiphertextSize {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, ErrInvalidCiphertextSize)
	}
	if len(p.signerPk) != MLDSAPublicKeySize {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, ErrInvalidPublicKeySize)
	}

	return p, nil
}

// deriveKey performs HKDF-SHA-512 key derivation for the envelope.
//
// The key derivation uses:
//   - IKM (input key material): the KEM shared secret
//   - Salt: SHA-256 hash of the KEM ciphertext
//   - Info: context string || AAD length (4 bytes BE) || AAD
//
// This produces a 256-bit key suitable for AES-256-GCM.
func deriveKey(sharedSecret, aad, ctKem []byte) ([]byte, error) {
	saltHash := sha256.Sum256(ctKem)

	contextBytes := []byte(HKDFContext)
	info := make([]byte, 0, len(contextBytes)+4+len(aad))
	info = append(info, contextBytes...)
	info = binary.BigEndian.AppendUint32(info, uint32(len(aad)))
	info = append(info, aad...)

	reader := hkdf.New(sha512.New, sharedSecret, saltHash[:], info)
	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}

	return key, nil
}

// buildTranscript constructs the byte string the signature covers.
func buildTranscript(version int, algs AlgorithmSuite, ctKem, nonce, aad, ciphertext, signerPk []byte) []byte {
	// version (1 byte)
	transcript := []byte{byte(version)}

	transcript = append(transcript, algs.String()...)
	transcript = append(transcript, HKDFContext...)

	transcript = append(transcript, ctKem...)
	transcript = append(transcript, nonce...)
	transcript = append(transcript, aad...)
	transcript = append(transcript, ciphertext...)
	transcript = append(transcript, signerPk...)

	return transcript
}
