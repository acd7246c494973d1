package cli

import (
	"fmt"
	"strings"
)

type missingConfigError struct {
	keys []string
}

func (e *missingConfigError) Error() string {
	return fmt.Sprintf("missing required settings: %s (run `ofkit check` for details)", strings.Join(e.keys, ", "))
}
