package transaction

import (
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/util"
)

// maxSubitems is the maximum number of AllowedContracts, AllowedGroups or
// Rules.
const maxSubitems = 16

// Signer implements a Transaction signer.
type Signer struct {
	Account          util.Uint160      `json:"account"`
	Scopes           WitnessScope      `json:"scopes"`
	AllowedContracts []util.Uint160    `json:"allowedcontracts,omitempty"`
	AllowedGroups    []*keys.PublicKey `json:"allowedgroups,omitempty"`
	Rules            []WitnessRule     `json:"rules,omitempty"`
}

// NewSigner returns a Signer with the given account and scope checking all
// the invariants: Global can't be combined with anything else, scoped lists
// must be present exactly when their scope bit is, be non-empty, have no
// more than 16 items and no duplicates.
func NewSigner(account util.Uint160, scopes WitnessScope, opts ...SignerOption) (*Signer, error) {
	s := &Signer{
		Account: account,
		Scopes:  scopes,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SignerOption configures optional scoped lists of a Signer.
type SignerOption func(*Signer) error

// WithAllowedContracts adds contract hashes for the CustomContracts scope.
func WithAllowedContracts(hashes ...util.Uint160) SignerOption {
	return func(s *Signer) error {
		for _, h := range hashes {
			for _, old := range s.AllowedContracts {
				if old.Equals(h) {
					return fmt.Errorf("%w: duplicate allowed contract %s", clienterr.ErrInvalidScope, h.StringLE())
				}
			}
			s.AllowedContracts = append(s.AllowedContracts, h)
		}
		return nil
	}
}

// WithAllowedGroups adds group keys for the CustomGroups scope.
func WithAllowedGroups(pubs ...*keys.PublicKey) SignerOption {
	return func(s *Signer) error {
		for _, pub := range pubs {
			for _, old := range s.AllowedGroups {
				if old.Equal(pub) {
					return fmt.Errorf("%w: duplicate allowed group %s", clienterr.ErrInvalidScope, pub.StringCompressed())
				}
			}
			s.AllowedGroups = append(s.AllowedGroups, pub)
		}
		return nil
	}
}

// WithRules adds rules for the Rules scope.
func WithRules(rules ...WitnessRule) SignerOption {
	return func(s *Signer) error {
		s.Rules = append(s.Rules, rules...)
		return nil
	}
}

// Validate checks the signer for consistency between the scope bits and the
// scoped lists.
func (s *Signer) Validate() error {
	if _, err := ScopesFromByte(byte(s.Scopes)); err != nil {
		return err
	}
	if s.Scopes&CustomContracts != 0 && len(s.AllowedContracts) == 0 {
		return fmt.Errorf("%w: CustomContracts scope with no allowed contracts", clienterr.ErrInvalidScope)
	}
	if s.Scopes&CustomContracts == 0 && len(s.AllowedContracts) != 0 {
		return fmt.Errorf("%w: allowed contracts without CustomContracts scope", clienterr.ErrInvalidScope)
	}
	if s.Scopes&CustomGroups != 0 && len(s.AllowedGroups) == 0 {
		return fmt.Errorf("%w: CustomGroups scope with no allowed groups", clienterr.ErrInvalidScope)
	}
	if s.Scopes&CustomGroups == 0 && len(s.AllowedGroups) != 0 {
		return fmt.Errorf("%w: allowed groups without CustomGroups scope", clienterr.ErrInvalidScope)
	}
	if s.Scopes&Rules != 0 && len(s.Rules) == 0 {
		return fmt.Errorf("%w: WitnessRules scope with no rules", clienterr.ErrInvalidScope)
	}
	if s.Scopes&Rules == 0 && len(s.Rules) != 0 {
		return fmt.Errorf("%w: rules without WitnessRules scope", clienterr.ErrInvalidScope)
	}
	if len(s.AllowedContracts) > maxSubitems || len(s.AllowedGroups) > maxSubitems || len(s.Rules) > maxSubitems {
		return fmt.Errorf("%w: more than %d scope subitems", clienterr.ErrInvalidScope, maxSubitems)
	}
	for i := range s.Rules {
		if err := s.Rules[i].Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// EncodeBinary implements the Serializable interface.
func (s *Signer) EncodeBinary(bw *io.BinWriter) {
	bw.WriteBytes(s.Account[:])
	bw.WriteB(byte(s.Scopes))
	if s.Scopes&CustomContracts != 0 {
		bw.WriteArray(s.AllowedContracts)
	}
	if s.Scopes&CustomGroups != 0 {
		bw.WriteArray(s.AllowedGroups)
	}
	if s.Scopes&Rules != 0 {
		bw.WriteArray(s.Rules)
	}
}

// DecodeBinary implements the Serializable interface.
func (s *Signer) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(s.Account[:])
	var err error
	s.Scopes, err = ScopesFromByte(br.ReadB())
	if br.Err == nil && err != nil {
		br.Err = err
	}
	if br.Err != nil {
		return
	}
	if s.Scopes&CustomContracts != 0 {
		br.ReadArray(&s.AllowedContracts, maxSubitems)
	}
	if s.Scopes&CustomGroups != 0 {
		br.ReadArray(&s.AllowedGroups, maxSubitems)
	}
	if s.Scopes&Rules != 0 {
		br.ReadArray(&s.Rules, maxSubitems)
	}
}

// Copy creates a deep copy of the Signer.
func (s *Signer) Copy() *Signer {
	if s == nil {
		return nil
	}
	cp := *s
	if s.AllowedContracts != nil {
		cp.AllowedContracts = make([]util.Uint160, len(s.AllowedContracts))
		copy(cp.AllowedContracts, s.AllowedContracts)
	}
	cp.AllowedGroups = keys.PublicKeys(s.AllowedGroups).Copy()
	if s.Rules != nil {
		cp.Rules = make([]WitnessRule, len(s.Rules))
		copy(cp.Rules, s.Rules)
	}
	return &cp
}
