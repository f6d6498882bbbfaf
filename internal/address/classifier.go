package address

import (
	"regexp"
	"strings"

	"walletscope/internal/domain"
)

// Classification is the outcome of matching an address string against a
// chain family's accepted formats. Unrecognized input is reported as
// invalid, never as an error.
type Classification struct {
	Valid  bool
	Format domain.AddressFormat
}

var (
	evmHexRe    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	btcLegacyRe = regexp.MustCompile(`^[13][1-9A-HJ-NP-Za-km-z]{25,34}$`)
)

// bech32 data part excludes 1, b, i, o per BIP-173.
const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Classify matches an address against the formats of the given chain family.
func Classify(family, addr string) Classification {
	switch family {
	case domain.AddressFamilyEVM:
		return ClassifyEVM(addr)
	case domain.AddressFamilyBTC:
		return ClassifyBitcoin(addr)
	default:
		return Classification{Valid: false, Format: domain.FormatUnknown}
	}
}

// ClassifyEVM accepts 20-byte hex addresses with or without checksum casing.
func ClassifyEVM(addr string) Classification {
	if evmHexRe.MatchString(addr) {
		return Classification{Valid: true, Format: domain.FormatEVMHex}
	}
	return Classification{Valid: false, Format: domain.FormatUnknown}
}

// ClassifyBitcoin accepts legacy/P2SH base58, bech32 segwit, and bech32m
// taproot mainnet addresses.
func ClassifyBitcoin(addr string) Classification {
	switch {
	case btcLegacyRe.MatchString(addr):
		return Classification{Valid: true, Format: domain.FormatBTCLegacy}
	case strings.HasPrefix(addr, "bc1p") && len(addr) == 62 && isBech32Data(addr[4:]):
		return Classification{Valid: true, Format: domain.FormatBTCTaproot}
	case strings.HasPrefix(addr, "bc1q") && (len(addr) == 42 || len(addr) == 62) && isBech32Data(addr[4:]):
		return Classification{Valid: true, Format: domain.FormatBTCSegwit}
	default:
		return Classification{Valid: false, Format: domain.FormatUnknown}
	}
}

func isBech32Data(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(bech32Charset, r) {
			return false
		}
	}
	return true
}
