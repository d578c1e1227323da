package deeplinktest_test

import (
	"crypto/rand"
	"testing"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/protocol/deeplink/deeplinktest"
)

func TestWallet_ApproveConnectDecryptsForDapp(t *testing.T) {
	dapp, err := crypto.GenerateX25519(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	w := deeplinktest.NewWallet(t)
	link := deeplink.NewBuilder(deeplink.SchemeWalletBase, "lockfit://").Connect(dapp.Public, "devnet", "https://lockfit.xyz")

	cb, err := deeplink.ParseCallback(w.ApproveConnect(link, "sess-1", "Abc123"))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	walletPub, err := cb.CounterpartyPublicKey()
	if err != nil {
		t.Fatalf("CounterpartyPublicKey: %v", err)
	}
	env, err := cb.Envelope()
	if err != nil {
		t.Fatalf("Envelope: %v", err)
	}
	secret, err := crypto.DeriveSharedSecret(dapp.Secret, walletPub)
	if err != nil {
		t.Fatalf("DeriveSharedSecret: %v", err)
	}
	var got domain.ConnectPayload
	if err := crypto.NewChannel(rand.Reader).DecryptJSON(env, secret, &got); err != nil {
		t.Fatalf("DecryptJSON: %v", err)
	}
	if got.Session != "sess-1" || got.PublicKey != "Abc123" {
		t.Fatalf("payload = %+v", got)
	}
}
