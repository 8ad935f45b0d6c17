package validate

import (
	"fmt"
	"strings"

	"nightwatcher/internal/config"

	"github.com/ethereum/go-ethereum/common"
)

// Address checks that addr is a well-formed Ethereum address (0x + 40 hex
// digits, case-insensitive) and returns it normalized to lowercase.
// Invalid input is rejected before it can reach the store or any oracle.
func Address(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("%w: %q must be 0x + 40 hex characters", config.ErrInvalidAddress, addr)
	}
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		// IsHexAddress tolerates a missing prefix; the tracked form requires it.
		return "", fmt.Errorf("%w: %q missing 0x prefix", config.ErrInvalidAddress, addr)
	}
	return strings.ToLower(addr), nil
}
