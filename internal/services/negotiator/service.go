package negotiator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/util/memzero"
)

// State is the handshake state.
type State int

const (
	StateIdle State = iota
	StateAwaiting
	StateEstablished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	case StateEstablished:
		return "established"
	default:
		return "unknown"
	}
}

// Config holds the connect request parameters.
type Config struct {
	Cluster string
	AppURL  string
	// HandshakeTimeout lets a new connect replace an attempt that has been
	// awaiting the wallet for longer than this. Zero never expires.
	HandshakeTimeout time.Duration
}

// Negotiator runs the connect handshake.
type Negotiator struct {
	ids      domain.IdentityProvider
	sessions domain.SessionStore
	channel  *crypto.Channel
	links    *deeplink.Builder
	opener   domain.LinkOpener
	cfg      Config
	now      func() time.Time

	mu            sync.Mutex
	state         State
	awaitingSince time.Time
	session       *domain.Session
}

// New constructs a Negotiator.
func New(
	ids domain.IdentityProvider,
	sessions domain.SessionStore,
	channel *crypto.Channel,
	links *deeplink.Builder,
	opener domain.LinkOpener,
	cfg Config,
) *Negotiator {
	return &Negotiator{
		ids:      ids,
		sessions: sessions,
		channel:  channel,
		links:    links,
		opener:   opener,
		cfg:      cfg,
		now:      time.Now,
	}
}

// State returns the current state.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Current returns the established session, if any. A session stays usable
// while a replacement handshake is awaiting the wallet.
func (n *Negotiator) Current() (domain.Session, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.session == nil {
		return domain.Session{}, false
	}
	return *n.session, true
}

// InitiateConnect builds the connect link, opens it and moves to Awaiting.
//
// Steps:
//  1. Refuse while a previous connect is still awaiting the wallet.
//  2. Wait for the dapp key pair.
//  3. Build the link (public key, cluster, app URL, redirect) and hand it to
//     the opener. Only then is the handshake considered in flight.
func (n *Negotiator) InitiateConnect(ctx context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateAwaiting {
		if n.cfg.HandshakeTimeout <= 0 || n.now().Sub(n.awaitingSince) <= n.cfg.HandshakeTimeout {
			return "", domain.ErrHandshakeInProgress
		}
		log.Warn().Msg("Abandoning stale connect attempt")
	}

	kp, err := n.ids.KeyPair(ctx)
	if err != nil {
		return "", err
	}

	link := n.links.Connect(kp.Public, n.cfg.Cluster, n.cfg.AppURL)
	if err := n.opener.Open(ctx, link); err != nil {
		n.settle()
		return "", fmt.Errorf("open connect link: %w", err)
	}

	// Any held session is kept until the new handshake succeeds.
	n.state = StateAwaiting
	n.awaitingSince = n.now()
	log.Info().Str("cluster", n.cfg.Cluster).Msg("Connect request sent to wallet")
	return link, nil
}

// HandleCallback completes the handshake from the wallet's connect callback.
//
// Steps:
//  1. An explicit wallet error fails the handshake verbatim.
//  2. Derive the shared secret from our secret key and the wallet's key.
//  3. Decrypt the payload and extract the session token and wallet address.
//  4. Persist the session record; failure only degrades persistence.
//  5. Move to Established.
func (n *Negotiator) HandleCallback(ctx context.Context, cb deeplink.Callback) (domain.Session, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateIdle {
		log.Debug().Msg("Connect callback arrived without a pending handshake; completing it anyway")
	}

	sess, err := n.complete(ctx, cb)
	if err != nil {
		// A failed callback never costs the session already held.
		n.settle()
		log.Warn().Err(err).Str("state", n.state.String()).Msg("Connect handshake failed")
		return domain.Session{}, err
	}

	if err := n.sessions.SaveSession(domain.SessionRecord{
		Token:                 sess.Token,
		CounterpartyPublicKey: crypto.EncodeBase58(sess.CounterpartyPublicKey.Slice()),
		WalletPublicKey:       sess.WalletPublicKey,
	}); err != nil {
		log.Warn().Err(err).Msg("Session will not survive a restart")
	}

	n.wipeSession()
	n.session = &sess
	n.state = StateEstablished
	log.Info().Str("wallet", sess.WalletPublicKey).Msg("Wallet connected")
	return sess, nil
}

func (n *Negotiator) complete(ctx context.Context, cb deeplink.Callback) (domain.Session, error) {
	if rerr := cb.RemoteError(); rerr != nil {
		return domain.Session{}, rerr
	}

	walletPub, err := cb.CounterpartyPublicKey()
	if err != nil {
		return domain.Session{}, err
	}
	env, err := cb.Envelope()
	if err != nil {
		return domain.Session{}, err
	}

	kp, err := n.ids.KeyPair(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	secret, err := crypto.DeriveSharedSecret(kp.Secret, walletPub)
	if err != nil {
		return domain.Session{}, err
	}

	var payload domain.ConnectPayload
	if err := n.channel.DecryptJSON(env, secret, &payload); err != nil {
		return domain.Session{}, err
	}
	if payload.Session == "" || payload.PublicKey == "" {
		return domain.Session{}, fmt.Errorf("%w: decrypted payload lacks session or public_key", domain.ErrMissingCallbackFields)
	}

	return domain.Session{
		Token:                 payload.Session,
		WalletPublicKey:       payload.PublicKey,
		CounterpartyPublicKey: walletPub,
		SharedSecret:          secret,
	}, nil
}

// Resume re-establishes a persisted session without a handshake. It reports
// false when there is nothing resumable.
func (n *Negotiator) Resume(ctx context.Context) (domain.Session, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	rec, ok, err := n.sessions.LoadSession()
	if err != nil {
		return domain.Session{}, false, err
	}
	if !ok {
		return domain.Session{}, false, nil
	}
	if !rec.Resumable() {
		log.Info().Msg("Stored session cannot be resumed; reconnect required")
		return domain.Session{}, false, nil
	}

	walletPub, err := crypto.DecodePublicKey(rec.CounterpartyPublicKey)
	if err != nil {
		return domain.Session{}, false, err
	}
	kp, err := n.ids.KeyPair(ctx)
	if err != nil {
		return domain.Session{}, false, err
	}
	secret, err := crypto.DeriveSharedSecret(kp.Secret, walletPub)
	if err != nil {
		return domain.Session{}, false, err
	}

	sess := domain.Session{
		Token:                 rec.Token,
		WalletPublicKey:       rec.WalletPublicKey,
		CounterpartyPublicKey: walletPub,
		SharedSecret:          secret,
	}
	n.wipeSession()
	n.session = &sess
	n.state = StateEstablished
	log.Info().Str("wallet", sess.WalletPublicKey).Msg("Resumed stored wallet session")
	return sess, true, nil
}

// Reset drops any held session and returns to Idle. With forget, the
// persisted record is removed too.
func (n *Negotiator) Reset(forget bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.toIdle()
	if !forget {
		return nil
	}
	if err := n.sessions.ClearSession(); err != nil {
		return err
	}
	return nil
}

// toIdle must be called with n.mu held.
func (n *Negotiator) toIdle() {
	n.wipeSession()
	n.state = StateIdle
	n.awaitingSince = time.Time{}
}

// settle ends a handshake attempt without a new session: back to the held
// session if there is one, otherwise Idle. Must be called with n.mu held.
func (n *Negotiator) settle() {
	n.awaitingSince = time.Time{}
	if n.session != nil {
		n.state = StateEstablished
		return
	}
	n.state = StateIdle
}

// wipeSession must be called with n.mu held.
func (n *Negotiator) wipeSession() {
	if n.session != nil {
		memzero.Key((*[32]byte)(&n.session.SharedSecret))
		n.session = nil
	}
}

var _ domain.SessionSource = (*Negotiator)(nil)
