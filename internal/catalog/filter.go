package catalog

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/pkg/models"
)

// Filter decides which catalog items may be recommended, using a CEL expression evaluated
// against `item` (for example `item.in_stock && item.price < 500`). An empty expression
// admits everything.
type Filter struct {
	expression string
	program    cel.Program
	logger     *logrus.Logger
}

func NewFilter(expression string, logger *logrus.Logger) (*Filter, error) {
	f := &Filter{
		expression: strings.TrimSpace(expression),
		logger:     logger,
	}
	if f.expression == "" {
		return f, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}

	ast, issues := env.Compile(f.expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid catalog filter %q: %w", f.expression, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("catalog filter %q must evaluate to bool, got %s", f.expression, out)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog filter: %w", err)
	}
	f.program = program

	return f, nil
}

func (f *Filter) Expression() string {
	return f.expression
}

// Allows reports whether the item is eligible. Evaluation errors exclude the item.
func (f *Filter) Allows(item models.Item) bool {
	if f == nil || f.program == nil {
		return true
	}

	out, _, err := f.program.Eval(map[string]interface{}{
		"item": item.Attributes(),
	})
	if err != nil {
		f.logger.WithError(err).WithField("item_id", item.ID).Debug("Catalog filter evaluation failed")
		return false
	}

	allowed, ok := out.Value().(bool)
	return ok && allowed
}
