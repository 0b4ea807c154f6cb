package account

// SetMaxCalldataLen lowers the multicall bound so overflow paths can be hit
// with small inputs. It returns a function restoring the previous bound.
func SetMaxCalldataLen(n uint64) (restore func()) {
	prev := maxCalldataLen
	maxCalldataLen = n
	return func() { maxCalldataLen = prev }
}

var ScaleFee = scaleFee
