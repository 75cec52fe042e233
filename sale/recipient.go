package sale

// RoutedMsg is an opaque message to deliver alongside routed funds. The
// path is resolved by the external routing collaborator, not here.
type RoutedMsg struct {
	Path    string
	Payload []byte
}

// Recipient is where sale proceeds are sent: either a direct address or a
// routed message through the external relay. Exactly one variant is active;
// settlement branches on Msg == nil only.
type Recipient struct {
	Address string
	Msg     *RoutedMsg
}

// NewDirectRecipient builds an address recipient.
func NewDirectRecipient(address string) Recipient {
	return Recipient{Address: address}
}

// NewRoutedRecipient builds a routed-message recipient.
func NewRoutedRecipient(path string, payload []byte) Recipient {
	return Recipient{Msg: &RoutedMsg{Path: path, Payload: payload}}
}

// PayoutInstruction resolves the recipient into a dispatchable payout of the
// given funds.
func (r Recipient) PayoutInstruction(funds []Coin) Instruction {
	if r.Msg == nil {
		return NewBankSend(r.Address, funds...)
	}
	return NewRoutedPayout(r.Msg.Path, r.Msg.Payload, funds)
}
