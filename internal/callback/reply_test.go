package callback_test

import (
	"errors"
	"testing"

	"lockfit/internal/callback"
	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/services/router"
)

func TestNewReply_CarriesResponse(t *testing.T) {
	res := router.Result{
		Kind: domain.KindSignAllTransactions,
		Response: domain.Response{
			Transactions: [][]byte{{1, 2}, {3}},
		},
	}
	r := callback.NewReply(res, nil)
	if r.Kind != "signAllTransactions" || r.Error != "" {
		t.Fatalf("reply = %+v", r)
	}
	if len(r.Transactions) != 2 || r.Transactions[1] != crypto.EncodeBase58([]byte{3}) {
		t.Fatalf("transactions = %v", r.Transactions)
	}
}

func TestNewReply_ResponseError(t *testing.T) {
	rerr := &domain.RemoteError{Code: "4001", Message: "User rejected the request."}
	r := callback.NewReply(router.Result{
		Kind:     domain.KindSignMessage,
		Response: domain.Response{Err: rerr},
	}, nil)
	if r.Error != rerr.Error() {
		t.Fatalf("error = %q", r.Error)
	}

	r = callback.NewReply(router.Result{}, errors.New("parse failed"))
	if r.Error != "parse failed" {
		t.Fatalf("error = %q", r.Error)
	}
}
