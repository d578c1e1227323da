package identity_test

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"
	"time"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/services/identity"
	"lockfit/internal/store"
)

func TestLoadOrCreate_Idempotent(t *testing.T) {
	ctx := context.Background()
	ids := store.NewIdentityStore(store.NewMemoryStore())
	svc := identity.New(ids)

	first, err := svc.LoadOrCreate(ctx)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	second, err := svc.LoadOrCreate(ctx)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if first != second {
		t.Fatal("key pair changed between calls")
	}
	if !crypto.ValidKeyPair(first) {
		t.Fatal("generated pair is not a valid X25519 pair")
	}
	if svc.Ephemeral() {
		t.Fatal("pair should be persisted")
	}
}

func TestLoadOrCreate_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	kv := store.NewFileSecureStore(t.TempDir(), "pass", store.WithScrypt(1<<10, 8, 1))

	before, err := identity.New(store.NewIdentityStore(kv)).LoadOrCreate(ctx)
	if err != nil {
		t.Fatalf("first process: %v", err)
	}
	after, err := identity.New(store.NewIdentityStore(kv)).LoadOrCreate(ctx)
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	if before != after {
		t.Fatal("key pair not reloaded after restart")
	}
}

func TestLoadOrCreate_MismatchedStoredPairReplaced(t *testing.T) {
	ctx := context.Background()
	ids := store.NewIdentityStore(store.NewMemoryStore())
	bogus := domain.KeyPair{Public: domain.X25519Public{1}, Secret: domain.X25519Private{2}}
	if err := ids.SaveKeyPair(bogus); err != nil {
		t.Fatalf("save: %v", err)
	}

	kp, err := identity.New(ids).LoadOrCreate(ctx)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if kp == bogus {
		t.Fatal("malformed stored pair was used")
	}
	stored, ok, _ := ids.LoadKeyPair()
	if !ok || stored != kp {
		t.Fatal("replacement pair not persisted")
	}
}

type failingIdentityStore struct{}

func (failingIdentityStore) SaveKeyPair(domain.KeyPair) error { return domain.ErrStorage }
func (failingIdentityStore) LoadKeyPair() (domain.KeyPair, bool, error) {
	return domain.KeyPair{}, false, domain.ErrStorage
}
func (failingIdentityStore) DeleteKeyPair() error { return domain.ErrStorage }

func TestLoadOrCreate_StorageFailureFallsBackToEphemeral(t *testing.T) {
	svc := identity.New(failingIdentityStore{})
	kp, err := svc.LoadOrCreate(context.Background())
	if err != nil {
		t.Fatalf("storage failure must not be fatal: %v", err)
	}
	if !crypto.ValidKeyPair(kp) {
		t.Fatal("fallback pair invalid")
	}
	if !svc.Ephemeral() {
		t.Fatal("fallback pair should be reported as ephemeral")
	}
}

func TestLoadOrCreate_RandomFailureIsError(t *testing.T) {
	svc := identity.New(store.NewIdentityStore(store.NewMemoryStore()), identity.WithRand(io.LimitReader(rand.Reader, 0)))
	if _, err := svc.LoadOrCreate(context.Background()); !errors.Is(err, domain.ErrInitialization) {
		t.Fatalf("want ErrInitialization, got %v", err)
	}
}

// blockingIdentityStore holds LoadKeyPair until release is closed.
type blockingIdentityStore struct {
	domain.IdentityStore
	release chan struct{}
}

func (b blockingIdentityStore) LoadKeyPair() (domain.KeyPair, bool, error) {
	<-b.release
	return b.IdentityStore.LoadKeyPair()
}

func TestKeyPair_WaitsForReadiness(t *testing.T) {
	release := make(chan struct{})
	svc := identity.New(blockingIdentityStore{
		IdentityStore: store.NewIdentityStore(store.NewMemoryStore()),
		release:       release,
	})
	svc.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := svc.KeyPair(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline while initialization blocks, got %v", err)
	}
	select {
	case <-svc.Ready():
		t.Fatal("ready before initialization finished")
	default:
	}

	close(release)
	kp, err := svc.KeyPair(context.Background())
	if err != nil {
		t.Fatalf("KeyPair: %v", err)
	}
	if !crypto.ValidKeyPair(kp) {
		t.Fatal("invalid pair after readiness")
	}
}

func TestReset_ReplacesPersistedPair(t *testing.T) {
	ctx := context.Background()
	ids := store.NewIdentityStore(store.NewMemoryStore())
	svc := identity.New(ids)

	old, err := svc.LoadOrCreate(ctx)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	fresh, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if fresh == old {
		t.Fatal("reset returned the old pair")
	}
	again, _ := svc.LoadOrCreate(ctx)
	if again != fresh {
		t.Fatal("LoadOrCreate after reset returned a different pair")
	}
	stored, ok, _ := ids.LoadKeyPair()
	if !ok || stored != fresh {
		t.Fatal("reset pair not persisted")
	}
}

func TestFingerprint_Stable(t *testing.T) {
	svc := identity.New(store.NewIdentityStore(store.NewMemoryStore()))
	a, err := svc.Fingerprint(context.Background())
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, _ := svc.Fingerprint(context.Background())
	if a != b || len(a) != 20 {
		t.Fatalf("fingerprints %q / %q", a, b)
	}
}
