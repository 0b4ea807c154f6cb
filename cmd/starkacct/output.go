package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func feltString(f *felt.Felt) string {
	if f == nil {
		return "-"
	}
	return f.String()
}

func printCalls(w io.Writer, calls []account.Call) {
	table := newTable(w, "#", "To", "Selector", "Calldata")
	for i, call := range calls {
		table.Append([]string{
			strconv.Itoa(i),
			feltString(call.To),
			feltString(call.Selector),
			utils.FeltArrToString(call.Calldata),
		})
	}
	table.Render()
}

func printFeeEstimate(w io.Writer, estimate *starknet.FeeEstimate) {
	table := newTable(w, "Overall fee", "Gas price", "Gas usage", "Unit")
	table.Append([]string{
		feltString(estimate.OverallFee),
		feltString(estimate.GasPrice),
		feltString(estimate.GasUsage),
		estimate.Unit,
	})
	table.Render()
}

func printSimulation(w io.Writer, result *starknet.SimulationResult) error {
	printFeeEstimate(w, &result.FeeEstimation)

	table := newTable(w, "Phase", "Contract", "Selector", "Result")
	appendInvocation(table, "validate", result.Trace.ValidateInvocation, 0)
	appendInvocation(table, "execute", result.Trace.FunctionInvocation, 0)
	appendInvocation(table, "fee transfer", result.Trace.FeeTransferInvocation, 0)
	table.Render()

	if result.Trace.RevertError != "" {
		_, err := fmt.Fprintf(w, "Reverted: %s\n", result.Trace.RevertError)
		return err
	}
	return nil
}

func appendInvocation(table *tablewriter.Table, phase string, invocation *starknet.FunctionInvocation, depth int) {
	if invocation == nil {
		return
	}
	table.Append([]string{
		strings.Repeat("  ", depth) + phase,
		feltString(invocation.ContractAddress),
		feltString(invocation.Selector),
		utils.FeltArrToString(invocation.Result),
	})
	for i := range invocation.InternalCalls {
		appendInvocation(table, "call", &invocation.InternalCalls[i], depth+1)
	}
}

func printAddResult(w io.Writer, result *starknet.AddTransactionResult) {
	table := newTable(w, "Code", "Transaction hash", "Class hash")
	table.Append([]string{
		string(result.Code),
		feltString(result.TransactionHash),
		feltString(result.ClassHash),
	})
	table.Render()
}
