// Package wallet derives Secret Network account keys from BIP-39 mnemonics.
// Everything here is local computation; nothing touches the network.
package wallet

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cosmos/btcutil/bech32"
	bip39 "github.com/cosmos/go-bip39"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

const (
	// CoinType is the SLIP-44 coin type registered for Secret Network.
	CoinType = 529

	// AddressPrefix is the bech32 human readable part of account addresses.
	AddressPrefix = "secret"

	hardened   = 0x80000000
	masterSalt = "Bitcoin seed"
)

// ErrInvalidMnemonic is returned when a phrase fails BIP-39 validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// DefaultPath is m/44'/529'/0'/0/0.
var DefaultPath = []uint32{44 | hardened, CoinType | hardened, 0 | hardened, 0, 0}

// Key is a derived secp256k1 key pair.
type Key struct {
	priv *secp256k1.PrivateKey
}

// FromMnemonic validates mnemonic and derives the key at DefaultPath with
// an empty BIP-39 passphrase.
func FromMnemonic(mnemonic string) (*Key, error) {
	return Derive(mnemonic, "", DefaultPath)
}

// Derive validates mnemonic and walks path from the BIP-32 master key.
func Derive(mnemonic, passphrase string, path []uint32) (*Key, error) {
	// NewSeedWithErrorChecking verifies the checksum; IsMnemonicValid
	// only checks word count and the wordlist.
	seed, err := bip39.NewSeedWithErrorChecking(normalize(mnemonic), passphrase)
	if err != nil {
		return nil, ErrInvalidMnemonic
	}

	key, chainCode, err := master(seed)
	if err != nil {
		return nil, err
	}
	for _, index := range path {
		key, chainCode, err = child(key, chainCode, index)
		if err != nil {
			return nil, err
		}
	}

	return &Key{priv: secp256k1.NewPrivateKey(key)}, nil
}

// PrivateKeyHex returns the 32-byte private key as lowercase hex.
func (k *Key) PrivateKeyHex() string {
	return hex.EncodeToString(k.priv.Serialize())
}

// PublicKey returns the 33-byte compressed public key.
func (k *Key) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// Address returns the bech32 account address, e.g. secret1....
func (k *Key) Address() (string, error) {
	sum := sha256.Sum256(k.PublicKey())
	h := ripemd160.New()
	h.Write(sum[:])

	conv, err := bech32.ConvertBits(h.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address bits: %w", err)
	}
	return bech32.Encode(AddressPrefix, conv)
}

func master(seed []byte) (*secp256k1.ModNScalar, []byte, error) {
	mac := hmac.New(sha512.New, []byte(masterSalt))
	mac.Write(seed)
	sum := mac.Sum(nil)

	var key secp256k1.ModNScalar
	if overflow := key.SetByteSlice(sum[:32]); overflow || key.IsZero() {
		return nil, nil, errors.New("derived master key is invalid")
	}
	return &key, sum[32:], nil
}

// child implements BIP-32 CKDpriv.
func child(parent *secp256k1.ModNScalar, chainCode []byte, index uint32) (*secp256k1.ModNScalar, []byte, error) {
	data := make([]byte, 0, 37)
	if index >= hardened {
		keyBytes := parent.Bytes()
		data = append(data, 0x00)
		data = append(data, keyBytes[:]...)
	} else {
		data = append(data, secp256k1.NewPrivateKey(parent).PubKey().SerializeCompressed()...)
	}
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)

	var tweak secp256k1.ModNScalar
	if overflow := tweak.SetByteSlice(sum[:32]); overflow {
		return nil, nil, fmt.Errorf("derived key at index %d is invalid", index)
	}

	var key secp256k1.ModNScalar
	key.Set(parent).Add(&tweak)
	if key.IsZero() {
		return nil, nil, fmt.Errorf("derived key at index %d is invalid", index)
	}
	return &key, sum[32:], nil
}

func normalize(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}
