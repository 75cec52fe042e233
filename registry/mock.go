package registry

// Mock is a test double for TokenRegistry. All function fields must be set
// before the corresponding method is called.
type Mock struct {
	MintFn     func(tokenID, owner, tokenURI string) error
	TransferFn func(tokenID, newOwner string) error
	BurnFn     func(tokenID string) error
	OwnerOfFn  func(tokenID string) (string, error)
	OwnedByFn  func(owner, startAfter string, limit int) ([]string, error)
	InfoFn     func() (Info, error)
}

func (m *Mock) Mint(tokenID, owner, tokenURI string) error {
	return m.MintFn(tokenID, owner, tokenURI)
}
func (m *Mock) Transfer(tokenID, newOwner string) error {
	return m.TransferFn(tokenID, newOwner)
}
func (m *Mock) Burn(tokenID string) error {
	return m.BurnFn(tokenID)
}
func (m *Mock) OwnerOf(tokenID string) (string, error) {
	return m.OwnerOfFn(tokenID)
}
func (m *Mock) OwnedBy(owner, startAfter string, limit int) ([]string, error) {
	return m.OwnedByFn(owner, startAfter, limit)
}
func (m *Mock) Info() (Info, error) {
	return m.InfoFn()
}
