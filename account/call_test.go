package account_test

import (
	"testing"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core/crypto"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feltsOf(values ...uint64) []*felt.Felt {
	felts := make([]*felt.Felt, 0, len(values))
	for _, v := range values {
		felts = append(felts, new(felt.Felt).SetUint64(v))
	}
	return felts
}

func TestNewCall(t *testing.T) {
	to := utils.HexToFelt(t, "0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7")
	call := account.NewCall(to, "transfer", feltsOf(1, 2)...)

	assert.Equal(t, to, call.To)
	assert.Equal(t, "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", call.Selector.String())
	assert.Len(t, call.Calldata, 2)
}

func TestEncodeCalls(t *testing.T) {
	t.Run("no calls", func(t *testing.T) {
		encoded, err := account.EncodeCalls(nil)
		require.NoError(t, err)
		assert.Equal(t, feltsOf(0, 0), encoded)
	})

	t.Run("single call", func(t *testing.T) {
		calls := []account.Call{{
			To:       new(felt.Felt).SetUint64(0xaa),
			Selector: new(felt.Felt).SetUint64(0xbb),
			Calldata: feltsOf(7, 8, 9),
		}}
		encoded, err := account.EncodeCalls(calls)
		require.NoError(t, err)
		assert.Equal(t, feltsOf(1, 0xaa, 0xbb, 0, 3, 3, 7, 8, 9), encoded)
	})

	t.Run("offsets accumulate in input order", func(t *testing.T) {
		calls := []account.Call{
			{To: new(felt.Felt).SetUint64(1), Selector: new(felt.Felt).SetUint64(10), Calldata: feltsOf(100, 101)},
			{To: new(felt.Felt).SetUint64(2), Selector: new(felt.Felt).SetUint64(20)},
			{To: new(felt.Felt).SetUint64(3), Selector: new(felt.Felt).SetUint64(30), Calldata: feltsOf(300)},
		}
		encoded, err := account.EncodeCalls(calls)
		require.NoError(t, err)
		assert.Equal(t, feltsOf(
			3,
			1, 10, 0, 2,
			2, 20, 2, 0,
			3, 30, 2, 1,
			3,
			100, 101, 300,
		), encoded)
	})

	t.Run("missing selector", func(t *testing.T) {
		_, err := account.EncodeCalls([]account.Call{
			{To: new(felt.Felt), Selector: new(felt.Felt)},
			{To: new(felt.Felt)},
		})
		var encErr *account.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, 1, encErr.CallIndex)
	})

	t.Run("calldata overflow names the call", func(t *testing.T) {
		defer account.SetMaxCalldataLen(4)()

		_, err := account.EncodeCalls([]account.Call{
			{To: new(felt.Felt), Selector: new(felt.Felt), Calldata: feltsOf(1, 2, 3)},
			{To: new(felt.Felt), Selector: new(felt.Felt), Calldata: feltsOf(4, 5)},
		})
		var encErr *account.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, 1, encErr.CallIndex)
		assert.Contains(t, err.Error(), "call 1")
	})
}

func TestDecodeCalls(t *testing.T) {
	selector, err := crypto.SelectorFromName("transfer")
	require.NoError(t, err)
	calls := []account.Call{
		{To: new(felt.Felt).SetUint64(0x101), Selector: selector, Calldata: feltsOf(0x105, 1, 0)},
		{To: new(felt.Felt).SetUint64(0x102), Selector: selector},
		{To: new(felt.Felt).SetUint64(0x103), Selector: selector, Calldata: feltsOf(42)},
	}

	for _, n := range []int{0, 1, len(calls)} {
		encoded, err := account.EncodeCalls(calls[:n])
		require.NoError(t, err)

		decoded, err := account.DecodeCalls(encoded)
		require.NoError(t, err)
		require.Len(t, decoded, n)
		for i := range decoded {
			assert.Equal(t, calls[i].To, decoded[i].To)
			assert.Equal(t, calls[i].Selector, decoded[i].Selector)
			assert.Len(t, decoded[i].Calldata, len(calls[i].Calldata))
			for j := range calls[i].Calldata {
				assert.Equal(t, calls[i].Calldata[j], decoded[i].Calldata[j])
			}
		}
	}

	t.Run("malformed", func(t *testing.T) {
		tests := map[string][]*felt.Felt{
			"empty":             nil,
			"truncated header":  feltsOf(2, 1, 1, 0, 0),
			"missing data":      feltsOf(1, 1, 1, 0, 2, 2, 5),
			"trailing data":     feltsOf(1, 1, 1, 0, 1, 1, 5, 6),
			"argument overflow": feltsOf(1, 1, 1, 1, 1, 1, 5),
		}
		for name, calldata := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := account.DecodeCalls(calldata)
				var encErr *account.EncodingError
				assert.ErrorAs(t, err, &encErr)
			})
		}
	})

	t.Run("count beyond bound", func(t *testing.T) {
		huge := new(felt.Felt).SetUint64(1 << 40)
		_, err := account.DecodeCalls([]*felt.Felt{huge, new(felt.Felt)})
		var encErr *account.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, -1, encErr.CallIndex)
	})
}
