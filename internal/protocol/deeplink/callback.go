package deeplink

import (
	"fmt"
	"net/url"
	"strings"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
)

// Callback is a parsed inbound deep link.
type Callback struct {
	Kind  domain.Kind
	Path  string
	Query url.Values
}

// ParseCallback parses raw and resolves its kind from the final path segment.
//
// It accepts custom-scheme links (lockfit://onConnect?...,
// lockfit:///onConnect?..., lockfit:onConnect?...), development links with a
// prefix (exp://host/--/onConnect?...) and loopback http links.
func ParseCallback(raw string) (Callback, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Callback{}, fmt.Errorf("parse callback: %w", err)
	}

	segment := lastSegment(u.Path)
	if segment == "" && u.Opaque != "" {
		segment = lastSegment(u.Opaque)
	}
	if segment == "" {
		segment = u.Host
	}

	kind, ok := KindForPath(segment)
	if !ok {
		return Callback{}, fmt.Errorf("%w: %q", domain.ErrUnknownCallback, segment)
	}
	return Callback{Kind: kind, Path: segment, Query: u.Query()}, nil
}

func lastSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// RemoteError returns the wallet's explicit error, or nil.
func (c Callback) RemoteError() *domain.RemoteError {
	code := c.Query.Get(ParamErrorCode)
	if code == "" {
		return nil
	}
	return &domain.RemoteError{Code: code, Message: c.Query.Get(ParamErrorMessage)}
}

// HasData reports whether the callback carries an encrypted payload.
func (c Callback) HasData() bool {
	return c.Query.Get(ParamData) != ""
}

// Envelope decodes the data and nonce parameters.
func (c Callback) Envelope() (domain.Envelope, error) {
	data, nonce := c.Query.Get(ParamData), c.Query.Get(ParamNonce)
	if data == "" || nonce == "" {
		return domain.Envelope{}, domain.ErrMissingCallbackFields
	}
	ct, err := crypto.DecodeBase58(data)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: data: %v", domain.ErrDecryption, err)
	}
	n, err := crypto.DecodeNonce(nonce)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: nonce: %v", domain.ErrDecryption, err)
	}
	return domain.Envelope{Nonce: n, Ciphertext: ct}, nil
}

// CounterpartyPublicKey decodes the wallet's encryption public key.
func (c Callback) CounterpartyPublicKey() (domain.X25519Public, error) {
	v := c.Query.Get(ParamWalletPublicKey)
	if v == "" {
		return domain.X25519Public{}, domain.ErrMissingCallbackFields
	}
	return crypto.DecodePublicKey(v)
}
