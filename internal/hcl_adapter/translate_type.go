// This file contains the logic for parsing HCL type keywords (`number`,
// `bool`) and literal values into the simulator's value kinds.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/value"
)

// typeExprToKind converts a bare type keyword into a value kind.
func typeExprToKind(ctx context.Context, expr hcl.Expression) (value.Kind, error) {
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return 0, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a primitive.", "keyword", rootName)
		return value.ParseKind(rootName)

	default:
		return 0, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// inputsExprToKinds reads a branch `inputs` attribute. It is either a list
// of type keywords or a count of number inputs.
func inputsExprToKinds(ctx context.Context, expr hcl.Expression) ([]value.Kind, error) {
	if tuple, ok := expr.(*hclsyntax.TupleConsExpr); ok {
		kinds := make([]value.Kind, 0, len(tuple.Exprs))
		for i, item := range tuple.Exprs {
			k, err := typeExprToKind(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("inputs[%d]: %w", i, err)
			}
			kinds = append(kinds, k)
		}
		return kinds, nil
	}

	var n int
	if err := decodeLiteral(expr, cty.Number, &n); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("inputs: need at least one input, got %d", n)
	}
	kinds := make([]value.Kind, n)
	for i := range kinds {
		kinds[i] = value.Int
	}
	return kinds, nil
}

// initExprToValue coerces a memory value's initial literal to its kind.
// An omitted init is zero.
func initExprToValue(ctx context.Context, expr hcl.Expression, kind value.Kind) (int64, error) {
	if !isExprDefined(ctx, expr, "init") {
		return 0, nil
	}
	switch kind {
	case value.Bool:
		var b bool
		if err := decodeLiteral(expr, cty.Bool, &b); err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	default:
		var n int64
		if err := decodeLiteral(expr, cty.Number, &n); err != nil {
			return 0, err
		}
		return n, nil
	}
}

// inputExprToIndex reads an edge input: a number or "condition".
func inputExprToIndex(ctx context.Context, expr hcl.Expression) (int, error) {
	if !isExprDefined(ctx, expr, "input") {
		return 0, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.Type() == cty.String && !val.IsNull() {
		if s := val.AsString(); s == "condition" {
			return config.ConditionInput, nil
		}
	}
	var n int
	if err := decodeLiteral(expr, cty.Number, &n); err != nil {
		return 0, fmt.Errorf(`input must be a number or "condition": %w`, err)
	}
	return n, nil
}

// decodeLiteral evaluates expr without variables, converts it to want and
// stores it into target.
func decodeLiteral(expr hcl.Expression, want cty.Type, target any) error {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return diags
	}
	if val.IsNull() {
		return fmt.Errorf("value is null")
	}
	converted, err := convert.Convert(val, want)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), want.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, target)
}
