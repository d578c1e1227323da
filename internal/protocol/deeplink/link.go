package deeplink

import (
	"net/url"
	"strings"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
)

// Query parameter names used by the wallet protocol.
const (
	ParamDappPublicKey   = "dapp_encryption_public_key"
	ParamCluster         = "cluster"
	ParamAppURL          = "app_url"
	ParamRedirectLink    = "redirect_link"
	ParamNonce           = "nonce"
	ParamPayload         = "payload"
	ParamWalletPublicKey = "phantom_encryption_public_key"
	ParamData            = "data"
	ParamErrorCode       = "errorCode"
	ParamErrorMessage    = "errorMessage"
)

// Wallet link bases.
const (
	SchemeWalletBase    = "phantom://"
	UniversalWalletBase = "https://phantom.app/ul/"
)

const protocolVersion = "v1"

var callbackPaths = map[domain.Kind]string{
	domain.KindConnect:                "onConnect",
	domain.KindDisconnect:             "onDisconnect",
	domain.KindSignTransaction:        "onSignTransaction",
	domain.KindSignAllTransactions:    "onSignAllTransactions",
	domain.KindSignAndSendTransaction: "onSignAndSendTransaction",
	domain.KindSignMessage:            "onSignMessage",
}

// CallbackPath returns the redirect path segment the wallet invokes for k.
func CallbackPath(k domain.Kind) string { return callbackPaths[k] }

// KindForPath maps a callback path segment back to its request kind.
func KindForPath(segment string) (domain.Kind, bool) {
	for k, p := range callbackPaths {
		if p == segment {
			return k, true
		}
	}
	return "", false
}

// Builder assembles outbound request links.
type Builder struct {
	walletBase   string
	redirectBase string
}

// NewBuilder returns a Builder. walletBase is SchemeWalletBase or
// UniversalWalletBase; redirectBase prefixes every callback path, e.g.
// "lockfit://" or "http://127.0.0.1:8976/".
func NewBuilder(walletBase, redirectBase string) *Builder {
	if !strings.HasSuffix(walletBase, "/") {
		walletBase += "/"
	}
	if !strings.HasSuffix(redirectBase, "/") {
		redirectBase += "/"
	}
	return &Builder{walletBase: walletBase, redirectBase: redirectBase}
}

// RedirectLink returns the callback URL for k.
func (b *Builder) RedirectLink(k domain.Kind) string {
	return b.redirectBase + CallbackPath(k)
}

// Connect builds the unencrypted connect request.
func (b *Builder) Connect(dappPublic domain.X25519Public, cluster, appURL string) string {
	q := url.Values{}
	q.Set(ParamDappPublicKey, crypto.EncodeBase58(dappPublic.Slice()))
	q.Set(ParamCluster, cluster)
	q.Set(ParamAppURL, appURL)
	q.Set(ParamRedirectLink, b.RedirectLink(domain.KindConnect))
	return b.url(domain.KindConnect, q)
}

// Request builds an encrypted request link for k.
func (b *Builder) Request(k domain.Kind, dappPublic domain.X25519Public, env domain.Envelope) string {
	q := url.Values{}
	q.Set(ParamDappPublicKey, crypto.EncodeBase58(dappPublic.Slice()))
	q.Set(ParamNonce, crypto.EncodeBase58(env.Nonce[:]))
	q.Set(ParamRedirectLink, b.RedirectLink(k))
	q.Set(ParamPayload, crypto.EncodeBase58(env.Ciphertext))
	return b.url(k, q)
}

func (b *Builder) url(k domain.Kind, q url.Values) string {
	return b.walletBase + protocolVersion + "/" + k.String() + "?" + q.Encode()
}
