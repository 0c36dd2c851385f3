package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestEncryptAESGCM_DecryptAESGCM_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"empty", []byte{}, nil},
		{"simple", []byte("hello world"), nil},
		{"json with aad", []byte(`{"version":1,"accounts":[]}`), []byte("md5vault")},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}, []byte{1}},
		{"large", make([]byte, 10000), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, AESKeySize)
			if _, err := rand.Read(key); err != nil {
				t.Fatal(err)
			}
			nonce, err := newNonce()
			if err != nil {
				t.Fatal(err)
			}

			ciphertext, err := encryptAESGCM(key, nonce, tt.aad, tt.plaintext)
			if err != nil {
				t.Fatalf("encryptAESGCM() error = %v", err)
			}
			if want := len(tt.plaintext) + AESTagSize; len(ciphertext) != want {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), want)
			}

			decrypted, err := decryptAESGCM(key, nonce, tt.aad, ciphertext)
			if err != nil {
				t.Fatalf("decryptAESGCM() error = %v", err)
			}
			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %v, want %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDecryptAESGCM_Tampering(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, AESKeySize)
	nonce := bytes.Repeat([]byte{0x24}, AESNonceSize)
	aad := []byte("aad")

	ciphertext, err := encryptAESGCM(key, nonce, aad, []byte("secret digest table"))
	if err != nil {
		t.Fatalf("encryptAESGCM() error = %v", err)
	}

	flipped := bytes.Clone(ciphertext)
	flipped[0] ^= 0x01
	otherKey := bytes.Clone(key)
	otherKey[0] ^= 0x01

	tests := []struct {
		name       string
		key        []byte
		aad        []byte
		ciphertext []byte
	}{
		{"flipped ciphertext bit", key, aad, flipped},
		{"wrong key", otherKey, aad, ciphertext},
		{"wrong aad", key, []byte("other"), ciphertext},
		{"truncated", key, aad, ciphertext[:len(ciphertext)-1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decryptAESGCM(tt.key, nonce, tt.aad, tt.ciphertext)
			if !errors.Is(err, ErrDecryptionFailed) {
				t.Errorf("decryptAESGCM() error = %v, want ErrDecryptionFailed", err)
			}
		})
	}
}

func TestEncryptAESGCM_InvalidSizes(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		nonce   []byte
		wantErr error
	}{
		{"short key", make([]byte, 16), make([]byte, AESNonceSize), ErrInvalidKeySize},
		{"long key", make([]byte, 64), make([]byte, AESNonceSize), ErrInvalidKeySize},
		{"short nonce", make([]byte, AESKeySize), make([]byte, 8), ErrInvalidNonceSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := encryptAESGCM(tt.key, tt.nonce, nil, []byte("x")); !errors.Is(err, tt.wantErr) {
				t.Errorf("encryptAESGCM() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := decryptAESGCM(tt.key, tt.nonce, nil, make([]byte, 32)); !errors.Is(err, tt.wantErr) {
				t.Errorf("decryptAESGCM() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewNonce_UsesRandReader(t *testing.T) {
	restore := SetRandReaderForTesting(bytes.NewReader(bytes.Repeat([]byte{9}, AESNonceSize)))
	defer restore()

	nonce, err := newNonce()
	if err != nil {
		t.Fatalf("newNonce() error = %v", err)
	}
	if !bytes.Equal(nonce, bytes.Repeat([]byte{9}, AESNonceSize)) {
		t.Errorf("newNonce() = %x, want reader bytes", nonce)
	}

	if _, err := newNonce(); err == nil {
		t.Error("newNonce() with exhausted reader should return error")
	}
}
