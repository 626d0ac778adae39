package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/ports"
)

const (
	envelopeNodeID   = "__encrypted__"
	envelopeNodeType = "encrypted"
	envelopeDataKey  = "ciphertext"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.FlowStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that stores each flow as an
// AES-GCM sealed envelope: a single opaque node holding the ciphertext.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.FlowStore) ports.FlowStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, agentID string, flow domain.Flow) error {
	plainText, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt flow: %w", err)
	}

	envelope := domain.Flow{
		Nodes: []domain.Node{{
			ID:   envelopeNodeID,
			Type: envelopeNodeType,
			Data: map[string]any{envelopeDataKey: base64.StdEncoding.EncodeToString(ciphertext)},
		}},
		Edges: []domain.Edge{},
	}
	return m.next.Save(ctx, agentID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, agentID string) (domain.Flow, error) {
	envelope, err := m.next.Load(ctx, agentID)
	if err != nil {
		return domain.Flow{}, err
	}

	// Plain flows are rejected; enabling encryption on an existing store requires a migration.
	if len(envelope.Nodes) != 1 || envelope.Nodes[0].ID != envelopeNodeID {
		return domain.Flow{}, errors.New("flow is missing encrypted data envelope")
	}
	encoded, ok := envelope.Nodes[0].Data[envelopeDataKey].(string)
	if !ok {
		return domain.Flow{}, errors.New("flow is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Flow{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Flow{}, fmt.Errorf("failed to decrypt flow: %w", err)
	}

	var flow domain.Flow
	if err := json.Unmarshal(plainText, &flow); err != nil {
		return domain.Flow{}, fmt.Errorf("failed to unmarshal decrypted flow: %w", err)
	}
	return flow, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, agentID string) error {
	return m.next.Delete(ctx, agentID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
