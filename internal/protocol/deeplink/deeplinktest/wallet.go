// Package deeplinktest plays the wallet side of the deep-link protocol for
// tests: it answers connect requests and opens encrypted dapp requests.
package deeplinktest

import (
	"context"
	"crypto/rand"
	"net/url"
	"strings"
	"sync"
	"testing"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
)

// Wallet is a fixture counterparty with its own encryption key pair.
type Wallet struct {
	t       testing.TB
	Keys    domain.KeyPair
	channel *crypto.Channel
}

// NewWallet returns a Wallet with a fresh key pair.
func NewWallet(t testing.TB) *Wallet {
	t.Helper()
	kp, err := crypto.GenerateX25519(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	return &Wallet{t: t, Keys: kp, channel: crypto.NewChannel(rand.Reader)}
}

// Request is a dapp request as the wallet sees it.
type Request struct {
	Kind          domain.Kind
	DappPublicKey domain.X25519Public
	RedirectLink  string
	Query         url.Values
}

// ParseRequest splits an outbound link into its kind and parameters.
func (w *Wallet) ParseRequest(link string) Request {
	w.t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		w.t.Fatalf("parse request %q: %v", link, err)
	}
	path := strings.Trim(u.Host+u.Path, "/")
	op := path[strings.LastIndex(path, "/")+1:]
	pub, err := crypto.DecodePublicKey(u.Query().Get(deeplink.ParamDappPublicKey))
	if err != nil {
		w.t.Fatalf("dapp public key: %v", err)
	}
	return Request{
		Kind:          domain.Kind(op),
		DappPublicKey: pub,
		RedirectLink:  u.Query().Get(deeplink.ParamRedirectLink),
		Query:         u.Query(),
	}
}

// Secret derives the wallet's view of the shared secret with dapp.
func (w *Wallet) Secret(dapp domain.X25519Public) domain.SharedSecret {
	w.t.Helper()
	s, err := crypto.DeriveSharedSecret(w.Keys.Secret, dapp)
	if err != nil {
		w.t.Fatalf("DeriveSharedSecret: %v", err)
	}
	return s
}

// ApproveConnect answers a connect request with the given session and address.
func (w *Wallet) ApproveConnect(link, session, address string) string {
	w.t.Helper()
	req := w.ParseRequest(link)
	env := w.seal(domain.ConnectPayload{PublicKey: address, Session: session}, w.Secret(req.DappPublicKey))

	q := url.Values{}
	q.Set(deeplink.ParamWalletPublicKey, crypto.EncodeBase58(w.Keys.Public.Slice()))
	q.Set(deeplink.ParamData, crypto.EncodeBase58(env.Ciphertext))
	q.Set(deeplink.ParamNonce, crypto.EncodeBase58(env.Nonce[:]))
	return req.RedirectLink + "?" + q.Encode()
}

// Reject answers any request with an explicit error.
func (w *Wallet) Reject(link, code, message string) string {
	w.t.Helper()
	req := w.ParseRequest(link)
	q := url.Values{}
	q.Set(deeplink.ParamErrorCode, code)
	q.Set(deeplink.ParamErrorMessage, message)
	return req.RedirectLink + "?" + q.Encode()
}

// OpenPayload decrypts the payload of an encrypted request into out.
func (w *Wallet) OpenPayload(link string, out any) Request {
	w.t.Helper()
	req := w.ParseRequest(link)
	ct, err := crypto.DecodeBase58(req.Query.Get(deeplink.ParamPayload))
	if err != nil {
		w.t.Fatalf("payload: %v", err)
	}
	nonce, err := crypto.DecodeNonce(req.Query.Get(deeplink.ParamNonce))
	if err != nil {
		w.t.Fatalf("nonce: %v", err)
	}
	env := domain.Envelope{Nonce: nonce, Ciphertext: ct}
	if err := w.channel.DecryptJSON(env, w.Secret(req.DappPublicKey), out); err != nil {
		w.t.Fatalf("open payload: %v", err)
	}
	return req
}

// Respond answers an encrypted request with body sealed under the session secret.
func (w *Wallet) Respond(link string, body any) string {
	w.t.Helper()
	req := w.ParseRequest(link)
	q := url.Values{}
	if body != nil {
		env := w.seal(body, w.Secret(req.DappPublicKey))
		q.Set(deeplink.ParamData, crypto.EncodeBase58(env.Ciphertext))
		q.Set(deeplink.ParamNonce, crypto.EncodeBase58(env.Nonce[:]))
	}
	if len(q) == 0 {
		return req.RedirectLink
	}
	return req.RedirectLink + "?" + q.Encode()
}

func (w *Wallet) seal(body any, secret domain.SharedSecret) domain.Envelope {
	w.t.Helper()
	env, err := w.channel.Encrypt(body, secret)
	if err != nil {
		w.t.Fatalf("seal: %v", err)
	}
	return env
}

// Recorder is a LinkOpener that remembers every link it was asked to open.
type Recorder struct {
	mu    sync.Mutex
	links []string
	Err   error
}

// Open records link, or fails with r.Err when set.
func (r *Recorder) Open(_ context.Context, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.links = append(r.links, link)
	return nil
}

// Links returns every recorded link in order.
func (r *Recorder) Links() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.links...)
}

// Last returns the most recently opened link, or "" if none.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.links) == 0 {
		return ""
	}
	return r.links[len(r.links)-1]
}

var _ domain.LinkOpener = (*Recorder)(nil)
