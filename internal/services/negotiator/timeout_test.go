package negotiator

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/protocol/deeplink/deeplinktest"
	"lockfit/internal/services/identity"
	"lockfit/internal/store"
)

func TestInitiateConnect_StaleAttemptAbandoned(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	opener := &deeplinktest.Recorder{}
	n := New(
		identity.New(store.NewIdentityStore(kv)),
		store.NewSessionStore(kv),
		crypto.NewChannel(rand.Reader),
		deeplink.NewBuilder(deeplink.SchemeWalletBase, "lockfit://"),
		opener,
		Config{Cluster: "devnet", HandshakeTimeout: time.Minute},
	)
	now := time.Now()
	n.now = func() time.Time { return now }

	if _, err := n.InitiateConnect(ctx); err != nil {
		t.Fatalf("first: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, err := n.InitiateConnect(ctx); !errors.Is(err, domain.ErrHandshakeInProgress) {
		t.Fatalf("within timeout: got %v, want ErrHandshakeInProgress", err)
	}

	now = now.Add(time.Minute)
	link, err := n.InitiateConnect(ctx)
	if err != nil {
		t.Fatalf("after timeout: %v", err)
	}
	if links := opener.Links(); len(links) != 2 || links[1] != link {
		t.Fatalf("opened %d links, want a second one for the new attempt", len(links))
	}
	if n.State() != StateAwaiting || !n.awaitingSince.Equal(now) {
		t.Fatalf("state = %v since %v", n.State(), n.awaitingSince)
	}
}
