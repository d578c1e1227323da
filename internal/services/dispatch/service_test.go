package dispatch_test

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/protocol/deeplink/deeplinktest"
	"lockfit/internal/services/dispatch"
	"lockfit/internal/services/identity"
	"lockfit/internal/services/pending"
	"lockfit/internal/store"
)

type staticSession struct {
	sess *domain.Session
}

func (s *staticSession) Current() (domain.Session, bool) {
	if s.sess == nil {
		return domain.Session{}, false
	}
	return *s.sess, true
}

func (s *staticSession) Reset(bool) error {
	s.sess = nil
	return nil
}

type fixture struct {
	d       *dispatch.Dispatcher
	reg     *pending.Registry
	opener  *deeplinktest.Recorder
	wallet  *deeplinktest.Wallet
	session *staticSession
}

func newFixture(t *testing.T, connected bool) *fixture {
	t.Helper()
	ctx := context.Background()
	ids := identity.New(store.NewIdentityStore(store.NewMemoryStore()))
	kp, err := ids.KeyPair(ctx)
	if err != nil {
		t.Fatalf("KeyPair: %v", err)
	}

	f := &fixture{
		reg:     pending.NewRegistry(0),
		opener:  &deeplinktest.Recorder{},
		wallet:  deeplinktest.NewWallet(t),
		session: &staticSession{},
	}
	if connected {
		f.session.sess = &domain.Session{
			Token:                 "sess-1",
			WalletPublicKey:       "Abc123",
			CounterpartyPublicKey: f.wallet.Keys.Public,
			SharedSecret:          f.wallet.Secret(kp.Public),
		}
	}
	f.d = dispatch.New(
		ids,
		f.session,
		crypto.NewChannel(rand.Reader),
		deeplink.NewBuilder(deeplink.SchemeWalletBase, "lockfit://"),
		f.opener,
		f.reg,
		f.session,
	)
	return f
}

func TestSignMessage_Payload(t *testing.T) {
	f := newFixture(t, true)

	tk, err := f.d.SignMessage(context.Background(), []byte("hello"), dispatch.DisplayUTF8)
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	if tk.Kind != domain.KindSignMessage || tk.ID == "" {
		t.Fatalf("ticket = %+v", tk)
	}

	var body struct {
		Session string `json:"session"`
		Message string `json:"message"`
		Display string `json:"display"`
	}
	req := f.wallet.OpenPayload(f.opener.Last(), &body)
	if req.Kind != domain.KindSignMessage {
		t.Fatalf("kind = %q", req.Kind)
	}
	if req.RedirectLink != "lockfit://onSignMessage" {
		t.Fatalf("redirect = %q", req.RedirectLink)
	}
	if body.Session != "sess-1" || body.Message != crypto.EncodeBase58([]byte("hello")) || body.Display != "utf8" {
		t.Fatalf("payload = %+v", body)
	}
}

func TestSignTransactions_Payloads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	tx := []byte{1, 2, 3, 4}

	if _, err := f.d.SignTransaction(ctx, tx); err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}
	var one struct {
		Session     string `json:"session"`
		Transaction string `json:"transaction"`
	}
	f.wallet.OpenPayload(f.opener.Last(), &one)
	if one.Session != "sess-1" || one.Transaction != crypto.EncodeBase58(tx) {
		t.Fatalf("signTransaction payload = %+v", one)
	}

	if _, err := f.d.SignAllTransactions(ctx, [][]byte{tx, {9}}); err != nil {
		t.Fatalf("SignAllTransactions: %v", err)
	}
	var all struct {
		Transactions []string `json:"transactions"`
	}
	f.wallet.OpenPayload(f.opener.Last(), &all)
	if len(all.Transactions) != 2 || all.Transactions[1] != crypto.EncodeBase58([]byte{9}) {
		t.Fatalf("signAllTransactions payload = %+v", all)
	}

	retries := 3
	if _, err := f.d.SignAndSendTransaction(ctx, tx, &domain.SendOptions{MaxRetries: &retries}); err != nil {
		t.Fatalf("SignAndSendTransaction: %v", err)
	}
	var send struct {
		SendOptions struct {
			MaxRetries int `json:"maxRetries"`
		} `json:"sendOptions"`
	}
	req := f.wallet.OpenPayload(f.opener.Last(), &send)
	if req.Kind != domain.KindSignAndSendTransaction || send.SendOptions.MaxRetries != 3 {
		t.Fatalf("signAndSendTransaction kind=%q payload=%+v", req.Kind, send)
	}
}

func TestRequests_RequireSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	if _, err := f.d.SignMessage(ctx, []byte("x"), ""); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("SignMessage: got %v, want ErrNotConnected", err)
	}
	if _, err := f.d.Disconnect(ctx); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("Disconnect: got %v, want ErrNotConnected", err)
	}
	if len(f.opener.Links()) != 0 {
		t.Fatal("no link should be opened without a session")
	}
	if f.reg.Pending(domain.KindSignMessage) {
		t.Fatal("no request should be pending")
	}
}

func TestRequests_OneInFlightPerKind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	if _, err := f.d.SignMessage(ctx, []byte("a"), ""); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.d.SignMessage(ctx, []byte("b"), ""); !errors.Is(err, domain.ErrRequestInFlight) {
		t.Fatalf("second: got %v, want ErrRequestInFlight", err)
	}
	if _, err := f.d.SignTransaction(ctx, []byte{1}); err != nil {
		t.Fatalf("other kind should not be blocked: %v", err)
	}
}

func TestRequests_OpenerFailureReleasesSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.opener.Err = errors.New("no handler")

	if _, err := f.d.SignMessage(ctx, []byte("a"), ""); err == nil {
		t.Fatal("expected opener error")
	}
	if f.reg.Pending(domain.KindSignMessage) {
		t.Fatal("slot should be released")
	}
	f.opener.Err = nil
	if _, err := f.d.SignMessage(ctx, []byte("a"), ""); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestDisconnect_ForgetsSessionImmediately(t *testing.T) {
	f := newFixture(t, true)

	tk, err := f.d.Disconnect(context.Background())
	if err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if _, ok := f.session.Current(); ok {
		t.Fatal("session should be dropped")
	}
	var body struct {
		Session string `json:"session"`
	}
	f.wallet.OpenPayload(f.opener.Last(), &body)
	if body.Session != "sess-1" {
		t.Fatalf("payload = %+v", body)
	}
	if !f.reg.Pending(domain.KindDisconnect) || tk.Kind != domain.KindDisconnect {
		t.Fatal("disconnect should stay pending until acknowledged")
	}
}

func TestSignMessage_RejectsUnknownDisplay(t *testing.T) {
	f := newFixture(t, true)
	if _, err := f.d.SignMessage(context.Background(), []byte("x"), "base64"); err == nil {
		t.Fatal("expected error")
	}
}
