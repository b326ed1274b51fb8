package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/node"
)

// ValidateRegistry checks that every registered value can be wrapped in a
// node, so a bad signature fails at startup instead of mid-run.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range r.Names() {
		fn, _ := r.Func(name)
		if _, err := node.New(name, fn); err != nil {
			errs = append(errs, fmt.Sprintf("function '%s': %v", name, err))
			continue
		}
		logger.Debug("Function validated.", "name", name, "func", node.FuncName(fn))
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
