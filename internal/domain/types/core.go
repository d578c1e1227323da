package types

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Kind identifies a request type. The wallet threads no correlation id, so
// the kind is the only thing that pairs a callback with its request.
type Kind string

// Request kinds, named after the wallet's v1 operations.
const (
	KindConnect                Kind = "connect"
	KindDisconnect             Kind = "disconnect"
	KindSignTransaction        Kind = "signTransaction"
	KindSignAllTransactions    Kind = "signAllTransactions"
	KindSignAndSendTransaction Kind = "signAndSendTransaction"
	KindSignMessage            Kind = "signMessage"
)

// Kinds lists every request kind.
var Kinds = []Kind{
	KindConnect,
	KindDisconnect,
	KindSignTransaction,
	KindSignAllTransactions,
	KindSignAndSendTransaction,
	KindSignMessage,
}

// String returns the operation name.
func (k Kind) String() string { return string(k) }

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}
