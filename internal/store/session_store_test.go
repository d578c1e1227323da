package store_test

import (
	"testing"

	"lockfit/internal/domain"
	"lockfit/internal/store"
)

func TestSessionStore_SaveLoadClear(t *testing.T) {
	ss := store.NewSessionStore(store.NewMemoryStore())

	if _, ok, err := ss.LoadSession(); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	rec := domain.SessionRecord{Token: "sess-1", CounterpartyPublicKey: "8QG3", WalletPublicKey: "Abc123"}
	if err := ss.SaveSession(rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := ss.LoadSession()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got != rec {
		t.Fatalf("got %+v, want %+v", got, rec)
	}
	if !got.Resumable() {
		t.Fatal("record with counterparty key should be resumable")
	}

	if err := ss.ClearSession(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := ss.LoadSession(); ok {
		t.Fatal("session present after clear")
	}
}

func TestSessionStore_BareTokenIsNotResumable(t *testing.T) {
	kv := store.NewMemoryStore()
	if err := kv.Set(store.SessionStorageKey, []byte("legacy-token")); err != nil {
		t.Fatalf("set: %v", err)
	}
	rec, ok, err := store.NewSessionStore(kv).LoadSession()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if rec.Token != "legacy-token" {
		t.Fatalf("token = %q", rec.Token)
	}
	if rec.Resumable() {
		t.Fatal("bare token must not be resumable")
	}
}
