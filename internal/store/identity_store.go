package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"lockfit/internal/domain"
)

// IdentityStorageKey is the fixed secure-store key of the dapp key pair.
const IdentityStorageKey = "phantom_dapp_keypair"

// IdentityStore persists the dapp encryption key pair in a SecureStore.
type IdentityStore struct {
	kv domain.SecureStore
}

// NewIdentityStore returns an IdentityStore backed by kv.
func NewIdentityStore(kv domain.SecureStore) *IdentityStore {
	return &IdentityStore{kv: kv}
}

// SaveKeyPair writes kp.
func (s *IdentityStore) SaveKeyPair(kp domain.KeyPair) error {
	raw, err := json.Marshal(kp)
	if err != nil {
		return err
	}
	if err := s.kv.Set(IdentityStorageKey, raw); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// LoadKeyPair returns the stored key pair and whether one was present and
// well-formed. A value that does not decode to two 32-byte keys is reported
// as absent, not as an error.
func (s *IdentityStore) LoadKeyPair() (domain.KeyPair, bool, error) {
	raw, ok, err := s.kv.Get(IdentityStorageKey)
	if err != nil {
		return domain.KeyPair{}, false, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if !ok {
		return domain.KeyPair{}, false, nil
	}

	var rec struct {
		Public byteArray `json:"publicKey"`
		Secret byteArray `json:"secretKey"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.KeyPair{}, false, nil
	}
	var kp domain.KeyPair
	if len(rec.Public) != len(kp.Public) || len(rec.Secret) != len(kp.Secret) {
		return domain.KeyPair{}, false, nil
	}
	copy(kp.Public[:], rec.Public)
	copy(kp.Secret[:], rec.Secret)
	return kp, true, nil
}

// DeleteKeyPair removes the stored key pair.
func (s *IdentityStore) DeleteKeyPair() error {
	if err := s.kv.Delete(IdentityStorageKey); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// byteArray decodes either a JSON array of numbers or an index-keyed object
// ({"0":12,"1":200,...}), the shape a serialised Uint8Array takes.
type byteArray []byte

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var list []byte
	var nums []int
	if err := json.Unmarshal(data, &nums); err == nil {
		for _, n := range nums {
			if n < 0 || n > 255 {
				return fmt.Errorf("byte value %d out of range", n)
			}
			list = append(list, byte(n))
		}
		*b = list
		return nil
	}

	var obj map[string]int
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	idx := make([]int, 0, len(obj))
	for k := range obj {
		i, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("non-index key %q", k)
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for want, i := range idx {
		if i != want {
			return fmt.Errorf("missing index %d", want)
		}
		v := obj[strconv.Itoa(i)]
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value %d out of range", v)
		}
		list = append(list, byte(v))
	}
	*b = list
	return nil
}

// Compile-time assertion that IdentityStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityStore)(nil)
