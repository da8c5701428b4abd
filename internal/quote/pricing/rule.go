package pricing

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// DefaultRule grants the discount when more than one service is selected.
const DefaultRule = "count > 1"

// ErrRule wraps compile and evaluation failures of a discount rule.
var ErrRule = errors.New("discount rule")

// Rule decides whether a selection qualifies for the multi-service discount.
// It is a CEL expression over `services` (list of ids) and `count` (int).
type Rule struct {
	expr string
	prg  cel.Program
}

// CompileRule parses expr; an empty expression compiles DefaultRule.
func CompileRule(expr string) (*Rule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultRule
	}

	env, err := cel.NewEnv(
		cel.Variable("services", cel.ListType(cel.StringType)),
		cel.Variable("count", cel.IntType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cel env")
	}

	ast, iss := env.Compile(expr)
	if err := iss.Err(); err != nil {
		return nil, errors.Wrapf(ErrRule, "compile %q: %v", expr, err)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Wrapf(ErrRule, "%q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(ErrRule, "program %q: %v", expr, err)
	}
	return &Rule{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (r *Rule) String() string { return r.expr }

// Eligible evaluates the rule for the given selection.
func (r *Rule) Eligible(ids []string) (bool, error) {
	out, _, err := r.prg.Eval(map[string]interface{}{
		"services": ids,
		"count":    int64(len(ids)),
	})
	if err != nil {
		return false, errors.Wrapf(ErrRule, "eval %q: %v", r.expr, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, errors.Wrapf(ErrRule, "%q returned %T", r.expr, out.Value())
	}
	return ok, nil
}
