package wallet

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/services/dispatch"
	"lockfit/internal/services/identity"
	"lockfit/internal/services/negotiator"
	"lockfit/internal/services/pending"
	"lockfit/internal/services/router"
)

// Config holds the protocol parameters for a Service.
type Config struct {
	// WalletBase is deeplink.SchemeWalletBase or deeplink.UniversalWalletBase.
	WalletBase string
	// RedirectBase prefixes callback paths, e.g. "lockfit://".
	RedirectBase     string
	Cluster          string
	AppURL           string
	HandshakeTimeout time.Duration
	PendingTimeout   time.Duration
	// Rand is the nonce source; defaults to crypto/rand.
	Rand io.Reader
}

// Service is the dapp's wallet session.
type Service struct {
	ids     *identity.Service
	neg     *negotiator.Negotiator
	disp    *dispatch.Dispatcher
	router  *router.Router
	pending *pending.Registry
}

// New wires a Service. ids supplies the dapp key pair; sessions persists
// the session record; opener hands outbound links to the wallet.
func New(ids *identity.Service, sessions domain.SessionStore, opener domain.LinkOpener, cfg Config) *Service {
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	if cfg.WalletBase == "" {
		cfg.WalletBase = deeplink.SchemeWalletBase
	}

	channel := crypto.NewChannel(cfg.Rand)
	links := deeplink.NewBuilder(cfg.WalletBase, cfg.RedirectBase)
	reg := pending.NewRegistry(cfg.PendingTimeout)

	neg := negotiator.New(ids, sessions, channel, links, opener, negotiator.Config{
		Cluster:          cfg.Cluster,
		AppURL:           cfg.AppURL,
		HandshakeTimeout: cfg.HandshakeTimeout,
	})

	return &Service{
		ids:     ids,
		neg:     neg,
		disp:    dispatch.New(ids, neg, channel, links, opener, reg, neg),
		router:  router.New(neg, neg, channel, reg),
		pending: reg,
	}
}

// Start begins identity initialization and resumes a persisted session
// when one is available. It reports whether a session was resumed.
func (s *Service) Start(ctx context.Context) (bool, error) {
	s.ids.Start()
	_, ok, err := s.neg.Resume(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		log.Warn().Err(err).Msg("Stored session could not be resumed")
		return false, nil
	}
	return ok, nil
}

// Current returns the established session, if any.
func (s *Service) Current() (domain.Session, bool) { return s.neg.Current() }

// Connect opens a connect link. The returned ticket resolves when the
// connect callback is handled in this process.
func (s *Service) Connect(ctx context.Context) (string, *pending.Ticket, error) {
	link, err := s.neg.InitiateConnect(ctx)
	if err != nil {
		return "", nil, err
	}
	// A previous attempt's waiter is superseded by this one.
	s.pending.Resolve(domain.KindConnect, domain.Response{Err: domain.ErrRequestExpired})
	t, err := s.pending.Begin(domain.KindConnect)
	if err != nil {
		return "", nil, err
	}
	return link, t, nil
}

// HandleURL routes an inbound callback URL.
func (s *Service) HandleURL(ctx context.Context, raw string) (router.Result, error) {
	return s.router.Route(ctx, raw)
}

// Disconnect asks the wallet to end the session. The local session is
// dropped immediately.
func (s *Service) Disconnect(ctx context.Context) (*pending.Ticket, error) {
	return s.disp.Disconnect(ctx)
}

// SignTransaction asks the wallet to sign a serialized transaction.
func (s *Service) SignTransaction(ctx context.Context, tx []byte) (*pending.Ticket, error) {
	return s.disp.SignTransaction(ctx, tx)
}

// SignAllTransactions asks the wallet to sign several transactions.
func (s *Service) SignAllTransactions(ctx context.Context, txs [][]byte) (*pending.Ticket, error) {
	return s.disp.SignAllTransactions(ctx, txs)
}

// SignAndSendTransaction asks the wallet to sign and submit a transaction.
func (s *Service) SignAndSendTransaction(ctx context.Context, tx []byte, opts *domain.SendOptions) (*pending.Ticket, error) {
	return s.disp.SignAndSendTransaction(ctx, tx, opts)
}

// SignMessage asks the wallet to sign msg.
func (s *Service) SignMessage(ctx context.Context, msg []byte, display string) (*pending.Ticket, error) {
	return s.disp.SignMessage(ctx, msg, display)
}

// Logout forgets the session but keeps the identity key pair.
func (s *Service) Logout() error {
	s.pending.CancelAll(domain.ErrNotConnected)
	return s.neg.Reset(true)
}

// Reset forgets the session and replaces the identity key pair.
func (s *Service) Reset(ctx context.Context) error {
	s.pending.CancelAll(domain.ErrNotConnected)
	sessErr := s.neg.Reset(true)
	_, idErr := s.ids.Reset(ctx)
	return errors.Join(sessErr, idErr)
}

// Status is a snapshot of the session for display.
type Status struct {
	State         string
	WalletAddress string
	Fingerprint   domain.Fingerprint
	// EphemeralIdentity is set when the key pair could not be persisted.
	EphemeralIdentity bool
	Pending           []domain.Kind
}

// Connected reports whether the snapshot has an established session.
func (st Status) Connected() bool { return st.WalletAddress != "" }

// Status returns a snapshot. It waits for identity initialization.
func (s *Service) Status(ctx context.Context) (Status, error) {
	fp, err := s.ids.Fingerprint(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		State:             s.neg.State().String(),
		Fingerprint:       fp,
		EphemeralIdentity: s.ids.Ephemeral(),
	}
	if sess, ok := s.neg.Current(); ok {
		st.WalletAddress = sess.WalletPublicKey
	}
	for _, k := range domain.Kinds {
		if s.pending.Pending(k) {
			st.Pending = append(st.Pending, k)
		}
	}
	return st, nil
}

var _ domain.SessionSource = (*Service)(nil)
