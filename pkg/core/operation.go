package core

// Operation names a client operation for logging and error context.
type Operation int

const (
	OpProducts Operation = iota
	OpAccounts
	OpHistory
	OpDeposits
	OpWithdrawals
	OpPrice
	OpOrder
)

// String returns the lowercase operation name used in log fields.
func (o Operation) String() string {
	names := [...]string{
		"products",
		"accounts",
		"history",
		"deposits",
		"withdrawals",
		"price",
		"order",
	}
	if o < 0 || int(o) >= len(names) {
		return "unknown"
	}
	return names[o]
}

// Operations lists every operation a client exposes.
func Operations() []Operation {
	return []Operation{OpProducts, OpAccounts, OpHistory, OpDeposits, OpWithdrawals, OpPrice, OpOrder}
}

// TransferOperation maps a transfer direction to its operation.
func TransferOperation(t TransferType) Operation {
	if t == TransferWithdrawal {
		return OpWithdrawals
	}
	return OpDeposits
}
