package sale

import "fmt"

// InstructionKind identifies the kind of effect an Instruction describes.
type InstructionKind int

const (
	// InstrBankSend sends native funds to an address.
	InstrBankSend InstructionKind = iota
	// InstrMintToken mints an item on the asset registry.
	InstrMintToken
	// InstrTransferToken transfers an item to a new owner.
	InstrTransferToken
	// InstrBurnToken burns an unsold item.
	InstrBurnToken
	// InstrRoutedPayout routes funds through the external relay to a
	// recipient path.
	InstrRoutedPayout
)

func (k InstructionKind) String() string {
	switch k {
	case InstrBankSend:
		return "bank_send"
	case InstrMintToken:
		return "mint_token"
	case InstrTransferToken:
		return "transfer_token"
	case InstrBurnToken:
		return "burn_token"
	case InstrRoutedPayout:
		return "routed_payout"
	default:
		return fmt.Sprintf("instruction(%d)", int(k))
	}
}

// Instruction is one side effect for the host environment to dispatch after
// a successful call. It is plain data; only the fields relevant to Kind are
// set.
type Instruction struct {
	Kind InstructionKind

	// To is the destination address for InstrBankSend.
	To string

	// Amount is the funds attached to InstrBankSend and InstrRoutedPayout.
	Amount []Coin

	// Registry is the asset registry address for the token instructions.
	Registry string

	// TokenID is the item for the token instructions.
	TokenID string

	// Owner and TokenURI apply to InstrMintToken.
	Owner    string
	TokenURI string

	// Recipient is the new owner for InstrTransferToken.
	Recipient string

	// Path and Payload apply to InstrRoutedPayout.
	Path    string
	Payload []byte
}

// NewBankSend builds a bank-send instruction.
func NewBankSend(to string, amount ...Coin) Instruction {
	return Instruction{Kind: InstrBankSend, To: to, Amount: amount}
}

// NewMintToken builds a registry mint instruction.
func NewMintToken(registry, tokenID, owner, tokenURI string) Instruction {
	return Instruction{Kind: InstrMintToken, Registry: registry, TokenID: tokenID, Owner: owner, TokenURI: tokenURI}
}

// NewTransferToken builds a registry transfer instruction.
func NewTransferToken(registry, tokenID, recipient string) Instruction {
	return Instruction{Kind: InstrTransferToken, Registry: registry, TokenID: tokenID, Recipient: recipient}
}

// NewBurnToken builds a registry burn instruction.
func NewBurnToken(registry, tokenID string) Instruction {
	return Instruction{Kind: InstrBurnToken, Registry: registry, TokenID: tokenID}
}

// NewRoutedPayout builds a routed payout instruction.
func NewRoutedPayout(path string, payload []byte, funds []Coin) Instruction {
	return Instruction{Kind: InstrRoutedPayout, Path: path, Payload: payload, Amount: funds}
}
