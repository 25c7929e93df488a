package secretnet

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/miscreant/miscreant.go"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	nonceSize = 32
	keySize   = curve25519.ScalarSize
)

// hkdfSalt is the fixed salt the Secret Network enclave uses when deriving
// transaction encryption keys.
var hkdfSalt, _ = hex.DecodeString("000000000000000000024bead8df69990852c202db0e0097c1a12ea637d7e96d")

// encryptor seals contract queries for the enclave and opens its replies.
type encryptor struct {
	priv   []byte
	pub    []byte
	random io.Reader // nonce source
}

func newEncryptor(random io.Reader) (*encryptor, error) {
	priv := make([]byte, keySize)
	if _, err := io.ReadFull(random, priv); err != nil {
		return nil, fmt.Errorf("generate encryption seed: %w", err)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive encryption public key: %w", err)
	}
	return &encryptor{priv: priv, pub: pub, random: random}, nil
}

// txKey derives the symmetric key shared with the holder of peerPub for one
// message identified by nonce. Both sides compute the same value.
func txKey(priv, peerPub, nonce []byte) ([]byte, error) {
	shared, err := curve25519.X25519(priv, peerPub)
	if err != nil {
		return nil, fmt.Errorf("x25519: %w", err)
	}

	ikm := make([]byte, 0, len(shared)+len(nonce))
	ikm = append(ikm, shared...)
	ikm = append(ikm, nonce...)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, hkdfSalt, nil), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

func sivSeal(key, plaintext []byte) ([]byte, error) {
	c, err := miscreant.NewAESCMACSIV(key)
	if err != nil {
		return nil, err
	}
	return c.Seal(nil, plaintext, []byte{})
}

func sivOpen(key, ciphertext []byte) ([]byte, error) {
	c, err := miscreant.NewAESCMACSIV(key)
	if err != nil {
		return nil, err
	}
	return c.Open(nil, ciphertext, []byte{})
}

// encrypt seals codeHash+msg and returns nonce ‖ pubkey ‖ ciphertext.
func (e *encryptor) encrypt(consensusPub []byte, codeHash string, msg []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(e.random, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	key, err := txKey(e.priv, consensusPub, nonce)
	if err != nil {
		return nil, err
	}

	plaintext := append([]byte(codeHash), msg...)
	ciphertext, err := sivSeal(key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("seal query: %w", err)
	}

	out := make([]byte, 0, nonceSize+len(e.pub)+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, e.pub...)
	return append(out, ciphertext...), nil
}

func (e *encryptor) decrypt(consensusPub, nonce, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, errors.New("empty ciphertext")
	}
	key, err := txKey(e.priv, consensusPub, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := sivOpen(key, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("open response: %w", err)
	}
	return plaintext, nil
}
