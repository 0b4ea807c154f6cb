package crypto

var (
	SignWithK     = signWithK
	PedersenCache = pedersenCache
)
