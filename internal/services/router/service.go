package router

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/services/pending"
)

// Handshaker completes connect callbacks.
type Handshaker interface {
	HandleCallback(ctx context.Context, cb deeplink.Callback) (domain.Session, error)
}

// Result describes what a routed callback did.
type Result struct {
	Kind domain.Kind
	// Session is set for a completed connect.
	Session *domain.Session
	// Response is the value delivered to the waiting request.
	Response domain.Response
	// Dropped is true when no request of Kind was waiting.
	Dropped bool
}

// Router routes callbacks to the negotiator or to pending requests.
type Router struct {
	handshake Handshaker
	sessions  domain.SessionSource
	channel   *crypto.Channel
	pending   *pending.Registry
}

// New constructs a Router.
func New(h Handshaker, sessions domain.SessionSource, channel *crypto.Channel, reg *pending.Registry) *Router {
	return &Router{handshake: h, sessions: sessions, channel: channel, pending: reg}
}

// Route parses raw and delivers it.
func (r *Router) Route(ctx context.Context, raw string) (Result, error) {
	cb, err := deeplink.ParseCallback(raw)
	if err != nil {
		return Result{}, err
	}
	if cb.Kind == domain.KindConnect {
		return r.routeConnect(ctx, cb)
	}

	if !r.pending.Pending(cb.Kind) {
		log.Warn().Str("kind", cb.Kind.String()).Msg("Dropping callback with no pending request")
		return Result{Kind: cb.Kind, Dropped: true}, nil
	}

	resp := r.decode(cb)
	if _, ok := r.pending.Resolve(cb.Kind, resp); !ok {
		// Abandoned between the check and delivery.
		return Result{Kind: cb.Kind, Dropped: true}, nil
	}
	resp.Kind = cb.Kind
	return Result{Kind: cb.Kind, Response: resp}, nil
}

func (r *Router) routeConnect(ctx context.Context, cb deeplink.Callback) (Result, error) {
	sess, err := r.handshake.HandleCallback(ctx, cb)
	resp := domain.Response{Kind: domain.KindConnect, Err: err}
	r.pending.Resolve(domain.KindConnect, resp)
	if err != nil {
		return Result{Kind: domain.KindConnect, Response: resp}, err
	}
	return Result{Kind: domain.KindConnect, Session: &sess, Response: resp}, nil
}

// decode turns a callback into the response for its kind. Failures are
// carried in Response.Err.
func (r *Router) decode(cb deeplink.Callback) domain.Response {
	if rerr := cb.RemoteError(); rerr != nil {
		return domain.Response{Err: rerr}
	}

	if cb.Kind == domain.KindDisconnect {
		// The wallet acknowledges with a bare redirect.
		return domain.Response{}
	}

	if !cb.HasData() {
		return domain.Response{Err: fmt.Errorf("%w: data", domain.ErrMissingCallbackFields)}
	}

	sess, ok := r.sessions.Current()
	if !ok || !sess.Established() {
		return domain.Response{Err: domain.ErrNotConnected}
	}
	env, err := cb.Envelope()
	if err != nil {
		return domain.Response{Err: err}
	}
	raw, err := r.channel.Decrypt(env, sess.SharedSecret)
	if err != nil {
		return domain.Response{Err: err}
	}

	resp, err := decodeBody(cb.Kind, raw)
	if err != nil {
		log.Warn().Err(err).Str("kind", cb.Kind.String()).Msg("Malformed wallet response")
		return domain.Response{Err: err}
	}
	return resp
}

func decodeBody(kind domain.Kind, raw []byte) (domain.Response, error) {
	switch kind {
	case domain.KindSignTransaction:
		var body transactionBody
		if err := unmarshal(raw, &body); err != nil {
			return domain.Response{}, err
		}
		tx, err := decodeField("transaction", body.Transaction)
		if err != nil {
			return domain.Response{}, err
		}
		return domain.Response{Transaction: tx}, nil

	case domain.KindSignAllTransactions:
		var body transactionsBody
		if err := unmarshal(raw, &body); err != nil {
			return domain.Response{}, err
		}
		if len(body.Transactions) == 0 {
			return domain.Response{}, fmt.Errorf("%w: transactions", domain.ErrMissingCallbackFields)
		}
		txs := make([][]byte, len(body.Transactions))
		for i, s := range body.Transactions {
			tx, err := decodeField(fmt.Sprintf("transactions[%d]", i), s)
			if err != nil {
				return domain.Response{}, err
			}
			txs[i] = tx
		}
		return domain.Response{Transactions: txs}, nil

	case domain.KindSignAndSendTransaction, domain.KindSignMessage:
		var body signatureBody
		if err := unmarshal(raw, &body); err != nil {
			return domain.Response{}, err
		}
		if body.Signature == "" {
			return domain.Response{}, fmt.Errorf("%w: signature", domain.ErrMissingCallbackFields)
		}
		return domain.Response{Signature: body.Signature}, nil

	default:
		return domain.Response{}, fmt.Errorf("%w: %s", domain.ErrUnknownCallback, kind)
	}
}

func decodeField(name, v string) ([]byte, error) {
	if v == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingCallbackFields, name)
	}
	b, err := crypto.DecodeBase58(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDecryption, name, err)
	}
	return b, nil
}
