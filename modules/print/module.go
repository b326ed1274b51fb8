package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed values; os.Stdout when nil.
	Out io.Writer
}

// Print writes each value on its own line and passes the input through:
// a single value is returned as is, several as a list.
func (m *Module) Print(ctx context.Context, values ...any) any {
	ctxlog.FromContext(ctx).Info("Printing input", "count", len(values))

	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	if len(values) == 0 {
		fmt.Fprintln(out, "      (null)")
		return nil
	}
	for _, v := range values {
		fmt.Fprintf(out, "      %v\n", v)
	}
	if len(values) == 1 {
		return values[0]
	}
	return values
}

// Register registers the function with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("print", m.Print)
}
