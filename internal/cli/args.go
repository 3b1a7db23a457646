package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/valutatrade/tradehub/internal/apperrors"
)

var argPattern = regexp.MustCompile(`^--(\w+)$`)

// parseArgs turns "--currency BTC --amount 0.5" into {"currency": "BTC",
// "amount": "0.5"}.
func parseArgs(fields []string) (map[string]string, error) {
	args := map[string]string{}
	for i := 0; i < len(fields); i += 2 {
		m := argPattern.FindStringSubmatch(fields[i])
		if m == nil {
			return nil, fmt.Errorf("%w: expected --name, got %q", apperrors.ErrValidation, fields[i])
		}
		if i+1 >= len(fields) || strings.HasPrefix(fields[i+1], "--") {
			return nil, fmt.Errorf("%w: missing value for --%s", apperrors.ErrValidation, m[1])
		}
		args[m[1]] = fields[i+1]
	}
	return args, nil
}
