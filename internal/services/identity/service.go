package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
)

// Service manages the dapp key pair using a backing store.
type Service struct {
	store   domain.IdentityStore
	rand    io.Reader
	newHash func() hash.Hash

	startOnce sync.Once
	ready     chan struct{}

	mu        sync.RWMutex
	kp        domain.KeyPair
	ephemeral bool
	initErr   error
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the random source used for key generation.
func WithRand(r io.Reader) Option { return func(s *Service) { s.rand = r } }

// WithHash sets the hash used for public-key fingerprints.
func WithHash(h func() hash.Hash) Option { return func(s *Service) { s.newHash = h } }

// New returns an identity service backed by the given store.
func New(store domain.IdentityStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		rand:    rand.Reader,
		newHash: sha256.New,
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins initialization in the background. It is safe to call more
// than once, and optional: KeyPair initializes on demand.
func (s *Service) Start() {
	s.startOnce.Do(func() { go s.initialize() })
}

// Ready is closed once initialization has finished, successfully or not.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// LoadOrCreate returns the persisted key pair, creating it on first use.
// Repeated calls return the identical pair until Reset.
func (s *Service) LoadOrCreate(ctx context.Context) (domain.KeyPair, error) {
	return s.KeyPair(ctx)
}

// KeyPair waits for initialization and returns the key pair.
func (s *Service) KeyPair(ctx context.Context) (domain.KeyPair, error) {
	s.Start()

	select {
	case <-s.ready:
	case <-ctx.Done():
		return domain.KeyPair{}, ctx.Err()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.initErr != nil {
		return domain.KeyPair{}, s.initErr
	}
	return s.kp, nil
}

// Ephemeral reports whether the key pair lives only in memory because
// storage failed.
func (s *Service) Ephemeral() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ephemeral
}

// Fingerprint returns a short fingerprint of the current public key.
func (s *Service) Fingerprint(ctx context.Context) (domain.Fingerprint, error) {
	kp, err := s.KeyPair(ctx)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(crypto.Fingerprint(s.newHash, kp.Public.Slice())), nil
}

// Reset generates a fresh key pair and overwrites the persisted one.
//
// Any session negotiated with the old pair can no longer be decrypted; the
// caller is responsible for discarding it.
func (s *Service) Reset(ctx context.Context) (domain.KeyPair, error) {
	if _, err := s.KeyPair(ctx); err != nil && !errors.Is(err, domain.ErrInitialization) {
		return domain.KeyPair{}, err
	}

	kp, err := crypto.GenerateX25519(s.rand)
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("%w: %w", domain.ErrInitialization, err)
	}

	ephemeral := false
	if err := s.store.DeleteKeyPair(); err != nil {
		log.Warn().Err(err).Msg("Failed to delete previous dapp key pair")
	}
	if err := s.store.SaveKeyPair(kp); err != nil {
		ephemeral = true
		log.Warn().Err(err).Msg("Failed to persist reset dapp key pair; using it for this run only")
	}

	s.mu.Lock()
	s.kp = kp
	s.ephemeral = ephemeral
	s.initErr = nil
	s.mu.Unlock()

	log.Info().
		Str("fingerprint", crypto.Fingerprint(s.newHash, kp.Public.Slice())).
		Bool("ephemeral", ephemeral).
		Msg("Generated new dapp key pair")
	return kp, nil
}

func (s *Service) initialize() {
	defer close(s.ready)

	kp, ephemeral, err := s.loadOrGenerate()

	s.mu.Lock()
	s.kp, s.ephemeral, s.initErr = kp, ephemeral, err
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("Could not initialize dapp key pair")
		return
	}
	log.Debug().
		Str("fingerprint", crypto.Fingerprint(s.newHash, kp.Public.Slice())).
		Bool("ephemeral", ephemeral).
		Msg("Dapp key pair ready")
}

// loadOrGenerate reads the stored pair or creates one. Storage failures
// degrade to an in-memory pair; only a failing random source is an error.
func (s *Service) loadOrGenerate() (domain.KeyPair, bool, error) {
	stored, ok, err := s.store.LoadKeyPair()
	if err != nil {
		log.Warn().Err(fmt.Errorf("%w: %w", domain.ErrInitialization, err)).
			Msg("Failed to load dapp key pair; falling back to an ephemeral pair")
		kp, genErr := crypto.GenerateX25519(s.rand)
		if genErr != nil {
			return domain.KeyPair{}, false, fmt.Errorf("%w: %w", domain.ErrInitialization, genErr)
		}
		return kp, true, nil
	}
	if ok && crypto.ValidKeyPair(stored) {
		log.Debug().Msg("Loaded existing dapp key pair")
		return stored, false, nil
	}
	if ok {
		log.Warn().Msg("Stored dapp key pair is malformed; generating a new one")
	}

	kp, err := crypto.GenerateX25519(s.rand)
	if err != nil {
		return domain.KeyPair{}, false, fmt.Errorf("%w: %w", domain.ErrInitialization, err)
	}
	if err := s.store.SaveKeyPair(kp); err != nil {
		log.Warn().Err(err).Msg("Failed to persist dapp key pair; reconnecting after restart will need re-pairing")
		return kp, true, nil
	}
	log.Info().Msg("Generated and stored new dapp key pair")
	return kp, false, nil
}

// Compile-time assertion that Service implements domain.IdentityProvider.
var _ domain.IdentityProvider = (*Service)(nil)
