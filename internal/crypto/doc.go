// Package crypto seals credential exports so they can travel between hosts.
//
// # Algorithm Suite
//
//   - ML-KEM-768 (NIST FIPS 203): key encapsulation to the recipient's
//     public key. Each sealed export uses a fresh encapsulation.
//
//   - HKDF-SHA-512 (RFC 5869): derives the AES key from the KEM shared
//     secret, bound to the AAD and the KEM ciphertext.
//
//   - AES-256-GCM: authenticated encryption of the export document.
//
//   - ML-DSA-65 (NIST FIPS 204): signature by the exporting side over the
//     whole envelope transcript.
//
// # Opening an Envelope
//
// Signature verification MUST happen before decryption. [Open] calls
// [VerifyEnvelope] itself; callers that pin the exporter's key compare it
// with [Envelope.SignerPk] first:
//
//	if err := crypto.VerifyEnvelope(env); err != nil {
//	    return nil, fmt.Errorf("verify envelope: %w", err)
//	}
//	plaintext, err := crypto.Open(env, keypair)
//
// All binary envelope fields are URL-safe base64 without padding.
package crypto
