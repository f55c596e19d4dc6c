package wallet

// DecodedTransaction is the readable form of an encoded transaction.
// Integers are decimal strings; byte fields are uppercase hex without 0x.
type DecodedTransaction struct {
	Nonce      string `json:"nonce"`
	GasPrice   string `json:"gasPrice"`
	GasLimit   string `json:"gasLimit"`
	ToAddress  string `json:"toAddress,omitempty"`
	Value      string `json:"value"`
	ValueEther string `json:"valueEther"`
	Data       string `json:"data,omitempty"`
	Signed     bool   `json:"signed"`

	// only set for signed transactions
	V    string `json:"v,omitempty"`
	R    string `json:"r,omitempty"`
	S    string `json:"s,omitempty"`
	From string `json:"from,omitempty"`
	Hash string `json:"hash,omitempty"`
}
