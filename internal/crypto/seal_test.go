package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func sealFixture(t *testing.T, plaintext, aad []byte) (*Envelope, *Keypair, *Signer) {
	t.Helper()

	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	signer, err := GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner() error = %v", err)
	}

	env, err := Seal(plaintext, aad, kp.PublicKey, signer)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	return env, kp, signer
}

func TestSeal_Open_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"empty", []byte{}, nil},
		{"export document", []byte(`{"version":1,"accounts":[{"username":"guest","digest":"0cc175b9c0f1b6a831c399e269772661"}]}`), []byte("md5vault-export")},
		{"binary", bytes.Repeat([]byte{0x00, 0xff}, 4096), []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, kp, signer := sealFixture(t, tt.plaintext, tt.aad)

			if env.V != EnvelopeVersion {
				t.Errorf("V = %d, want %d", env.V, EnvelopeVersion)
			}
			if env.Algs != Suite {
				t.Errorf("Algs = %v, want %v", env.Algs, Suite)
			}
			if env.SignerPk != ToBase64URL(signer.PublicKey) {
				t.Error("SignerPk does not carry the signer public key")
			}

			got, err := Open(env, kp)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, tt.plaintext) {
				t.Errorf("Open() = %q, want %q", got, tt.plaintext)
			}
		})
	}
}

func TestSeal_SurvivesJSON(t *testing.T) {
	t.Parallel()

	env, kp, _ := sealFixture(t, []byte("payload"), []byte("aad"))

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, key := range []string{`"v"`, `"algs"`, `"ct_kem"`, `"nonce"`, `"aad"`, `"ciphertext"`, `"sig"`, `"signer_pk"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("encoded envelope missing %s", key)
		}
	}

	var decoded Envelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	got, err := Open(&decoded, kp)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Open() = %q, want %q", got, "payload")
	}
}

func TestSeal_FreshRandomnessPerCall(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	signer, err := GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner() error = %v", err)
	}

	a, err := Seal([]byte("same"), nil, kp.PublicKey, signer)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	b, err := Seal([]byte("same"), nil, kp.PublicKey, signer)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if a.CtKem == b.CtKem || a.Nonce == b.Nonce || a.Ciphertext == b.Ciphertext {
		t.Error("two seals of the same plaintext share KEM ciphertext, nonce or ciphertext")
	}
}

func TestSeal_Errors(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	signer, err := GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner() error = %v", err)
	}

	if _, err := Seal([]byte("x"), nil, kp.PublicKey, nil); !errors.Is(err, ErrMissingSigner) {
		t.Errorf("Seal() without signer error = %v, want ErrMissingSigner", err)
	}
	if _, err := Seal([]byte("x"), nil, kp.PublicKey[:100], signer); !errors.Is(err, ErrInvalidPublicKeySize) {
		t.Errorf("Seal() with short key error = %v, want ErrInvalidPublicKeySize", err)
	}
}

// flipField decodes a base64url field, flips one bit and re-encodes it.
func flipField(t *testing.T, field string) string {
	t.Helper()
	raw, err := FromBase64URL(field)
	if err != nil {
		t.Fatalf("FromBase64URL() error = %v", err)
	}
	if len(raw) == 0 {
		return ToBase64URL([]byte{0x01})
	}
	raw[len(raw)/2] ^= 0x01
	return ToBase64URL(raw)
}

func TestOpen_TamperedFieldsFailVerification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, env *Envelope)
	}{
		{"ct_kem", func(t *testing.T, env *Envelope) { env.CtKem = flipField(t, env.CtKem) }},
		{"nonce", func(t *testing.T, env *Envelope) { env.Nonce = flipField(t, env.Nonce) }},
		{"aad", func(t *testing.T, env *Envelope) { env.AAD = flipField(t, env.AAD) }},
		{"ciphertext", func(t *testing.T, env *Envelope) { env.Ciphertext = flipField(t, env.Ciphertext) }},
		{"sig", func(t *testing.T, env *Envelope) { env.Sig = flipField(t, env.Sig) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, kp, _ := sealFixture(t, []byte("digest table"), []byte("aad"))
			tt.mutate(t, env)

			if err := VerifyEnvelope(env); !errors.Is(err, ErrSignatureVerificationFailed) {
				t.Errorf("VerifyEnvelope() error = %v, want ErrSignatureVerificationFailed", err)
			}
			if _, err := Open(env, kp); !errors.Is(err, ErrSignatureVerificationFailed) {
				t.Errorf("Open() error = %v, want ErrSignatureVerificationFailed", err)
			}
		})
	}
}

func TestOpen_WrongRecipient(t *testing.T) {
	t.Parallel()

	env, _, _ := sealFixture(t, []byte("digest table"), nil)

	other, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	if err := VerifyEnvelope(env); err != nil {
		t.Fatalf("VerifyEnvelope() error = %v", err)
	}
	if _, err := Open(env, other); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Open() error = %v, want ErrDecryptionFailed", err)
	}
}

func TestOpen_MalformedEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(env *Envelope)
		wantErr error
	}{
		{"unknown version", func(env *Envelope) { env.V = 2 }, ErrInvalidAlgorithm},
		{"zero version", func(env *Envelope) { env.V = 0 }, ErrInvalidAlgorithm},
		{"wrong kem", func(env *Envelope) { env.Algs.KEM = "ML-KEM-512" }, ErrInvalidAlgorithm},
		{"wrong kdf", func(env *Envelope) { env.Algs.KDF = "HKDF-SHA-256" }, ErrInvalidAlgorithm},
		{"bad base64 nonce", func(env *Envelope) { env.Nonce = "not base64!" }, ErrInvalidEnvelope},
		{"padded sig", func(env *Envelope) { env.Sig += "==" }, ErrInvalidEnvelope},
		{"short ct_kem", func(env *Envelope) { env.CtKem = ToBase64URL(make([]byte, 10)) }, ErrInvalidCiphertextSize},
		{"short signer_pk", func(env *Envelope) { env.SignerPk = ToBase64URL(make([]byte, 10)) }, ErrInvalidPublicKeySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, kp, _ := sealFixture(t, []byte("x"), nil)
			tt.mutate(env)

			if _, err := Open(env, kp); !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_NilEnvelope(t *testing.T) {
	t.Parallel()

	if _, err := Open(nil, nil); !errors.Is(err, ErrInvalidEnvelope) {
		t.Errorf("Open(nil) error = %v, want ErrInvalidEnvelope", err)
	}
}

func TestVerifyEnvelope_ResignedByAnotherSigner(t *testing.T) {
	t.Parallel()

	env, _, original := sealFixture(t, []byte("x"), nil)

	impostor, err := GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner() error = %v", err)
	}

	// Swapping in a different key without re-signing must fail.
	env.SignerPk = ToBase64URL(impostor.PublicKey)
	if err := VerifyEnvelope(env); !errors.Is(err, ErrSignatureVerificationFailed) {
		t.Errorf("VerifyEnvelope() error = %v, want ErrSignatureVerificationFailed", err)
	}

	if env.SignerPk == ToBase64URL(original.PublicKey) {
		t.Error("SignerPk should no longer match the original signer")
	}
}

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	secret := bytes.Repeat([]byte{0x11}, MLKEMSharedKeySize)
	ctKem := bytes.Repeat([]byte{0x22}, MLKEMCiphertextSize)

	k1, err := deriveKey(secret, []byte("aad"), ctKem)
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	if len(k1) != AESKeySize {
		t.Errorf("key length = %d, want %d", len(k1), AESKeySize)
	}

	k2, err := deriveKey(secret, []byte("aad"), ctKem)
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("deriveKey() is not deterministic")
	}

	variants := []struct {
		name   string
		secret []byte
		aad    []byte
		ctKem  []byte
	}{
		{"different secret", bytes.Repeat([]byte{0x12}, MLKEMSharedKeySize), []byte("aad"), ctKem},
		{"different aad", secret, []byte("aae"), ctKem},
		{"empty aad", secret, nil, ctKem},
		{"different ct_kem", secret, []byte("aad"), bytes.Repeat([]byte{0x23}, MLKEMCiphertextSize)},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			k, err := deriveKey(v.secret, v.aad, v.ctKem)
			if err != nil {
				t.Fatalf("deriveKey() error = %v", err)
			}
			if bytes.Equal(k, k1) {
				t.Error("deriveKey() produced the same key for different inputs")
			}
		})
	}
}

func TestBuildTranscript(t *testing.T) {
	t.Parallel()

	transcript := buildTranscript(1, Suite, []byte("K"), []byte("N"), []byte("A"), []byte("C"), []byte("P"))

	want := append([]byte{1}, Suite.String()...)
	want = append(want, HKDFContext...)
	want = append(want, "KNACP"...)

	if !bytes.Equal(transcript, want) {
		t.Errorf("buildTranscript() = %q, want %q", transcript, want)
	}
}

func TestAlgorithmSuite_String(t *testing.T) {
	t.Parallel()

	want := "ML-KEM-768:ML-DSA-65:AES-256-GCM:HKDF-SHA-512"
	if got := Suite.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
