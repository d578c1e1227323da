package callback

import (
	"lockfit/internal/crypto"
	"lockfit/internal/services/router"
)

// Reply is the JSON result of a forwarded callback.
type Reply struct {
	Kind         string   `json:"kind,omitempty"`
	Dropped      bool     `json:"dropped,omitempty"`
	Wallet       string   `json:"wallet,omitempty"`
	Signature    string   `json:"signature,omitempty"`
	Transaction  string   `json:"transaction,omitempty"`
	Transactions []string `json:"transactions,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type forwardRequest struct {
	URL string `json:"url"`
}

// NewReply summarises a routed callback. err, or else the response's own
// error, becomes Error.
func NewReply(res router.Result, err error) Reply {
	r := Reply{Kind: res.Kind.String(), Dropped: res.Dropped}
	if res.Session != nil {
		r.Wallet = res.Session.WalletPublicKey
	}
	r.Signature = res.Response.Signature
	if len(res.Response.Transaction) > 0 {
		r.Transaction = crypto.EncodeBase58(res.Response.Transaction)
	}
	for _, tx := range res.Response.Transactions {
		r.Transactions = append(r.Transactions, crypto.EncodeBase58(tx))
	}
	if err == nil {
		err = res.Response.Err
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
