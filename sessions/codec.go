package sessions

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-jose/go-jose/v4"

	"github.com/blogem/sso-demo/models"
)

// Codec turns token state into an opaque session carrier and back. The
// carrier is a compact JWE (direct AES-256-GCM), so the client can neither
// read nor forge it: any bit flip fails authentication on decode.
type Codec struct {
	key []byte
}

// carrierPayload is the serialized form inside the JWE.
type carrierPayload struct {
	Tokens   models.TokenBundle    `json:"tokens"`
	Identity models.IdentityClaims `json:"identity"`
	IssuedAt time.Time             `json:"issued_at"`
}

// NewCodec derives the carrier encryption key from the configured secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	key := sha256.Sum256([]byte(secret))
	return &Codec{key: key[:]}, nil
}

// Encode serializes and encrypts the token bundle and identity claims into
// the carrier string stored on the client.
func (c *Codec) Encode(bundle models.TokenBundle, claims models.IdentityClaims) (string, error) {
	payload, err := json.Marshal(carrierPayload{
		Tokens:   bundle,
		Identity: claims,
		IssuedAt: time.Now(),
	})
	if err != nil {
		return "", err
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.key},
		nil,
	)
	if err != nil {
		return "", err
	}

	object, err := encrypter.Encrypt(payload)
	if err != nil {
		return "", err
	}

	return object.CompactSerialize()
}

// Decode verifies and decrypts a carrier. It reports ok=false for any
// malformed, tampered or wrongly keyed input: a bad carrier is
// indistinguishable from no carrier, so nothing about the failure leaks to
// the client.
func (c *Codec) Decode(carrier string) (models.TokenBundle, models.IdentityClaims, bool) {
	object, err := jose.ParseEncrypted(carrier,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return models.TokenBundle{}, models.IdentityClaims{}, false
	}

	payload, err := object.Decrypt(c.key)
	if err != nil {
		return models.TokenBundle{}, models.IdentityClaims{}, false
	}

	var decoded carrierPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return models.TokenBundle{}, models.IdentityClaims{}, false
	}

	return decoded.Tokens, decoded.Identity, true
}
