package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/services/pending"
)

// Disconnector drops the local session.
type Disconnector interface {
	Reset(forget bool) error
}

// Dispatcher builds and opens encrypted request links.
type Dispatcher struct {
	ids      domain.IdentityProvider
	sessions domain.SessionSource
	channel  *crypto.Channel
	links    *deeplink.Builder
	opener   domain.LinkOpener
	pending  *pending.Registry
	local    Disconnector
}

// New constructs a Dispatcher. local is told to forget the session when a
// disconnect is sent.
func New(
	ids domain.IdentityProvider,
	sessions domain.SessionSource,
	channel *crypto.Channel,
	links *deeplink.Builder,
	opener domain.LinkOpener,
	reg *pending.Registry,
	local Disconnector,
) *Dispatcher {
	return &Dispatcher{
		ids:      ids,
		sessions: sessions,
		channel:  channel,
		links:    links,
		opener:   opener,
		pending:  reg,
		local:    local,
	}
}

// Disconnect asks the wallet to end the session and forgets it locally.
func (d *Dispatcher) Disconnect(ctx context.Context) (*pending.Ticket, error) {
	t, err := d.send(ctx, domain.KindDisconnect, func(token string) any {
		return sessionPayload{Session: token}
	})
	if err != nil {
		return nil, err
	}
	if err := d.local.Reset(true); err != nil {
		log.Warn().Err(err).Msg("Stored session could not be cleared")
	}
	return t, nil
}

// SignTransaction asks the wallet to sign a serialized transaction.
func (d *Dispatcher) SignTransaction(ctx context.Context, tx []byte) (*pending.Ticket, error) {
	if len(tx) == 0 {
		return nil, errors.New("dispatch: empty transaction")
	}
	return d.send(ctx, domain.KindSignTransaction, func(token string) any {
		return transactionPayload{Session: token, Transaction: crypto.EncodeBase58(tx)}
	})
}

// SignAllTransactions asks the wallet to sign several transactions at once.
func (d *Dispatcher) SignAllTransactions(ctx context.Context, txs [][]byte) (*pending.Ticket, error) {
	if len(txs) == 0 {
		return nil, errors.New("dispatch: no transactions")
	}
	encoded := make([]string, len(txs))
	for i, tx := range txs {
		if len(tx) == 0 {
			return nil, fmt.Errorf("dispatch: transaction %d is empty", i)
		}
		encoded[i] = crypto.EncodeBase58(tx)
	}
	return d.send(ctx, domain.KindSignAllTransactions, func(token string) any {
		return transactionsPayload{Session: token, Transactions: encoded}
	})
}

// SignAndSendTransaction asks the wallet to sign and submit a transaction.
// opts may be nil.
func (d *Dispatcher) SignAndSendTransaction(ctx context.Context, tx []byte, opts *domain.SendOptions) (*pending.Ticket, error) {
	if len(tx) == 0 {
		return nil, errors.New("dispatch: empty transaction")
	}
	return d.send(ctx, domain.KindSignAndSendTransaction, func(token string) any {
		return transactionPayload{Session: token, Transaction: crypto.EncodeBase58(tx), SendOptions: opts}
	})
}

// SignMessage asks the wallet to sign msg. display is DisplayUTF8,
// DisplayHex or empty.
func (d *Dispatcher) SignMessage(ctx context.Context, msg []byte, display string) (*pending.Ticket, error) {
	switch display {
	case "", DisplayUTF8, DisplayHex:
	default:
		return nil, fmt.Errorf("dispatch: unsupported display %q", display)
	}
	return d.send(ctx, domain.KindSignMessage, func(token string) any {
		return messagePayload{Session: token, Message: crypto.EncodeBase58(msg), Display: display}
	})
}

// send runs the shared request path.
//
// Steps:
//  1. Require an established session.
//  2. Claim the kind's pending slot.
//  3. Seal the payload under the session secret with a fresh nonce.
//  4. Build the link and hand it to the opener.
//
// Any failure after step 2 releases the slot.
func (d *Dispatcher) send(ctx context.Context, kind domain.Kind, body func(token string) any) (*pending.Ticket, error) {
	sess, ok := d.sessions.Current()
	if !ok || !sess.Established() {
		return nil, domain.ErrNotConnected
	}

	t, err := d.pending.Begin(kind)
	if err != nil {
		return nil, err
	}

	link, err := d.build(ctx, kind, sess, body(sess.Token))
	if err == nil {
		err = d.opener.Open(ctx, link)
	}
	if err != nil {
		d.pending.Cancel(t, err)
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	log.Debug().Str("kind", kind.String()).Str("ticket", t.ID).Msg("Request sent to wallet")
	return t, nil
}

func (d *Dispatcher) build(ctx context.Context, kind domain.Kind, sess domain.Session, body any) (string, error) {
	kp, err := d.ids.KeyPair(ctx)
	if err != nil {
		return "", err
	}
	env, err := d.channel.Encrypt(body, sess.SharedSecret)
	if err != nil {
		return "", err
	}
	return d.links.Request(kind, kp.Public, env), nil
}
