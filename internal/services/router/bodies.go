package router

import (
	"encoding/json"
	"fmt"

	"lockfit/internal/domain"
)

type transactionBody struct {
	Transaction string `json:"transaction"`
}

type transactionsBody struct {
	Transactions []string `json:"transactions"`
}

type signatureBody struct {
	Signature string `json:"signature"`
}

func unmarshal(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: response body: %v", domain.ErrDecryption, err)
	}
	return nil
}
