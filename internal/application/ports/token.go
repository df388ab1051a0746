package ports

// TokenGenerator mints share tokens. It does not guarantee uniqueness; the
// file registry rejects duplicates.
type TokenGenerator interface {
	Mint() (string, error)
}
