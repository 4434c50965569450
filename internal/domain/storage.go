package domain

// StorageBalance is a NEP-145 storage_balance_of result. A nil balance means
// the account is not registered on the token.
type StorageBalance struct {
	Total     string `json:"total"`
	Available string `json:"available"`
}
