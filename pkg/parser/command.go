package parser

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// SwapCommand is the parsed form of a natural language swap instruction.
type SwapCommand struct {
	Amount       decimal.Decimal
	InputSymbol  string
	OutputSymbol string
}

var commandPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// ParseSwapCommand parses a swap instruction.
// Examples:
//   - "swap 1 SOL to USDC"
//   - "0.5 SOL to BARK"
//   - "100 USDC to SOL"
func ParseSwapCommand(command string) (*SwapCommand, error) {
	command = strings.TrimSpace(strings.ToUpper(command))
	command = strings.TrimPrefix(command, "SWAP ")

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, errors.New("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 1 SOL to USDC')")
	}

	amount, err := decimal.NewFromString(matches[1])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", matches[1])
	}
	if amount.Sign() <= 0 {
		return nil, errors.New("amount must be greater than 0")
	}

	return &SwapCommand{
		Amount:       amount,
		InputSymbol:  NormalizeTokenSymbol(matches[2]),
		OutputSymbol: NormalizeTokenSymbol(matches[3]),
	}, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format.
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// wrapped SOL quotes identically to native SOL here
	if symbol == "WSOL" {
		return "SOL"
	}
	return symbol
}
