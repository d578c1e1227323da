package wallet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/protocol/deeplink/deeplinktest"
	"lockfit/internal/services/identity"
	"lockfit/internal/services/wallet"
	"lockfit/internal/store"
)

func newService(t *testing.T, kv domain.SecureStore, opener domain.LinkOpener) *wallet.Service {
	t.Helper()
	return wallet.New(
		identity.New(store.NewIdentityStore(kv)),
		store.NewSessionStore(kv),
		opener,
		wallet.Config{
			WalletBase:     deeplink.SchemeWalletBase,
			RedirectBase:   "lockfit://",
			Cluster:        "mainnet-beta",
			AppURL:         "https://lockfit.xyz",
			PendingTimeout: time.Minute,
		},
	)
}

func connect(t *testing.T, svc *wallet.Service, opener *deeplinktest.Recorder, w *deeplinktest.Wallet) {
	t.Helper()
	ctx := context.Background()
	link, tk, err := svc.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if link != opener.Last() {
		t.Fatal("connect link was not opened")
	}
	if _, err := svc.HandleURL(ctx, w.ApproveConnect(link, "sess-1", "Abc123")); err != nil {
		t.Fatalf("HandleURL: %v", err)
	}
	if _, err := tk.Wait(ctx); err != nil {
		t.Fatalf("connect ticket: %v", err)
	}
}

func TestEndToEnd_ConnectThenSignMessage(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	opener := &deeplinktest.Recorder{}
	w := deeplinktest.NewWallet(t)
	svc := newService(t, kv, opener)

	if resumed, err := svc.Start(ctx); err != nil || resumed {
		t.Fatalf("Start on fresh install: resumed=%v err=%v", resumed, err)
	}

	link, _, err := svc.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	// Fresh install generated K1 and the link carries its public key.
	k1, ok, err := store.NewIdentityStore(kv).LoadKeyPair()
	if err != nil || !ok {
		t.Fatalf("identity not persisted: ok=%v err=%v", ok, err)
	}
	if w.ParseRequest(link).DappPublicKey != k1.Public {
		t.Fatal("connect link does not carry K1")
	}

	if _, err := svc.HandleURL(ctx, w.ApproveConnect(link, "sess-1", "Abc123")); err != nil {
		t.Fatalf("HandleURL: %v", err)
	}
	sess, ok := svc.Current()
	if !ok || sess.Token != "sess-1" || sess.WalletPublicKey != "Abc123" {
		t.Fatalf("session = %+v ok=%v", sess, ok)
	}

	if _, err := svc.SignMessage(ctx, []byte("hello"), ""); err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	var body struct {
		Session string `json:"session"`
		Message string `json:"message"`
	}
	w.OpenPayload(opener.Last(), &body)
	if body.Session != "sess-1" || body.Message != crypto.EncodeBase58([]byte("hello")) {
		t.Fatalf("payload = %+v", body)
	}
}

func TestSignMessage_ResolvedByCallback(t *testing.T) {
	ctx := context.Background()
	opener := &deeplinktest.Recorder{}
	w := deeplinktest.NewWallet(t)
	svc := newService(t, store.NewMemoryStore(), opener)
	connect(t, svc, opener, w)

	tk, err := svc.SignMessage(ctx, []byte("hello"), "utf8")
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	go func() {
		_, _ = svc.HandleURL(ctx, w.Respond(opener.Last(), map[string]string{"signature": "sig58"}))
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := tk.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if resp.Signature != "sig58" {
		t.Fatalf("signature = %q", resp.Signature)
	}
}

func TestStart_ResumesAfterRestart(t *testing.T) {
	ctx := context.Background()
	kv := store.NewFileSecureStore(t.TempDir(), "pass", store.WithScrypt(1<<10, 8, 1))
	opener := &deeplinktest.Recorder{}
	w := deeplinktest.NewWallet(t)

	first := newService(t, kv, opener)
	if _, err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	connect(t, first, opener, w)

	second := newService(t, kv, opener)
	resumed, err := second.Start(ctx)
	if err != nil || !resumed {
		t.Fatalf("Start after restart: resumed=%v err=%v", resumed, err)
	}
	if _, err := second.SignMessage(ctx, []byte("again"), ""); err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	var body struct {
		Session string `json:"session"`
	}
	w.OpenPayload(opener.Last(), &body)
	if body.Session != "sess-1" {
		t.Fatalf("payload = %+v", body)
	}
}

func TestLogout_KeepsIdentity(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	opener := &deeplinktest.Recorder{}
	svc := newService(t, kv, opener)
	connect(t, svc, opener, deeplinktest.NewWallet(t))

	tk, err := svc.SignTransaction(ctx, []byte{1})
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}
	before, _ := svc.Status(ctx)
	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := tk.Wait(ctx); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("pending request: got %v, want ErrNotConnected", err)
	}
	after, _ := svc.Status(ctx)
	if after.Connected() || after.Fingerprint != before.Fingerprint {
		t.Fatalf("status before=%+v after=%+v", before, after)
	}
	if _, err := svc.SignMessage(ctx, []byte("x"), ""); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}
}

func TestReset_ReplacesIdentity(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	opener := &deeplinktest.Recorder{}
	svc := newService(t, kv, opener)
	connect(t, svc, opener, deeplinktest.NewWallet(t))

	before, _ := svc.Status(ctx)
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	after, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if after.Fingerprint == before.Fingerprint {
		t.Fatal("identity unchanged after reset")
	}
	if after.Connected() || after.State != "idle" {
		t.Fatalf("status = %+v", after)
	}
	if _, ok, _ := store.NewSessionStore(kv).LoadSession(); ok {
		t.Fatal("session record survived reset")
	}
}

func TestStatus_ReportsPending(t *testing.T) {
	ctx := context.Background()
	opener := &deeplinktest.Recorder{}
	svc := newService(t, store.NewMemoryStore(), opener)
	connect(t, svc, opener, deeplinktest.NewWallet(t))

	if _, err := svc.SignMessage(ctx, []byte("x"), ""); err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	st, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Connected() || st.WalletAddress != "Abc123" || st.State != "established" {
		t.Fatalf("status = %+v", st)
	}
	if len(st.Pending) != 1 || st.Pending[0] != domain.KindSignMessage {
		t.Fatalf("pending = %v", st.Pending)
	}
}

func TestHandleURL_StrayConnectCallbackKeepsSession(t *testing.T) {
	ctx := context.Background()
	opener := &deeplinktest.Recorder{}
	svc := newService(t, store.NewMemoryStore(), opener)
	connect(t, svc, opener, deeplinktest.NewWallet(t))

	if _, err := svc.HandleURL(ctx, "lockfit://onConnect"); !errors.Is(err, domain.ErrMissingCallbackFields) {
		t.Fatalf("got %v, want ErrMissingCallbackFields", err)
	}
	st, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Connected() || st.State != "established" {
		t.Fatalf("status = %+v", st)
	}
	if _, err := svc.SignMessage(ctx, []byte("hello"), ""); err != nil {
		t.Fatalf("SignMessage after stray callback: %v", err)
	}
}
