package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/calcmcp/calcmcp-go/internal/core/calc"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/logger"
)

func handleAdd(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, b, errResult := twoNumberArgs(req, "a", "b")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating addition", "a", a, "b", b)
		return mcp.NewToolResultText(formatResult("Addition", a, b, a+b, "+")), nil
	}
}

func handleSubtract(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, b, errResult := twoNumberArgs(req, "a", "b")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating subtraction", "a", a, "b", b)
		return mcp.NewToolResultText(formatResult("Subtraction", a, b, a-b, "-")), nil
	}
}

func handleMultiply(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, b, errResult := twoNumberArgs(req, "a", "b")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating multiplication", "a", a, "b", b)
		return mcp.NewToolResultText(formatResult("Multiplication", a, b, a*b, "×")), nil
	}
}

func handleDivide(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, b, errResult := twoNumberArgs(req, "a", "b")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating division", "a", a, "b", b)
		if b == 0 {
			logger.L(ctx).Warn("division by zero attempted")
			return mcp.NewToolResultError("Error: Division by zero is not allowed."), nil
		}
		return mcp.NewToolResultText(formatResult("Division", a, b, a/b, "÷")), nil
	}
}

func handlePower(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		base, exponent, errResult := twoNumberArgs(req, "base", "exponent")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating power", "base", base, "exponent", exponent)
		result := math.Pow(base, exponent)
		if math.IsInf(result, 0) && !math.IsInf(base, 0) && !math.IsInf(exponent, 0) {
			logger.L(ctx).Warn("overflow in power calculation", "base", base, "exponent", exponent)
			return mcp.NewToolResultError("Error: Result too large to compute."), nil
		}
		return mcp.NewToolResultText(formatResult("Power", base, exponent, result, "^")), nil
	}
}

func handleModulo(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, b, errResult := twoNumberArgs(req, "a", "b")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating modulo", "a", a, "b", b)
		if b == 0 {
			logger.L(ctx).Warn("modulo by zero attempted")
			return mcp.NewToolResultError("Error: Modulo by zero is not allowed."), nil
		}
		// Remainder follows the sign of the divisor, matching the %
		// operator most calculator clients expect.
		result := math.Mod(a, b)
		if result != 0 && (result < 0) != (b < 0) {
			result += b
		}
		return mcp.NewToolResultText(formatResult("Modulo", a, b, result, "%")), nil
	}
}

func handleCalculate(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		expression, ok := req.GetArguments()["expression"].(string)
		if !ok {
			return mcp.NewToolResultError("Error: expression must be a string."), nil
		}
		logger.L(ctx).Debug("calculating expression", "expression", expression)

		result, err := calc.Evaluate(expression)
		if err != nil {
			if errors.Is(err, calc.ErrInvalidCharacters) {
				logger.L(ctx).Warn("invalid characters in expression", "expression", expression)
				return mcp.NewToolResultError("Error: Expression contains invalid characters. Only numbers and basic operators (+, -, *, /) are allowed."), nil
			}
			logger.L(ctx).Warn("error evaluating expression", "expression", expression, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("Error evaluating expression: %s", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("## Calculation Result\n\n%s = %s", expression, formatNumber(result))), nil
	}
}

func handleSquareRoot(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		number, errResult := numberArg(req, "number")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating square root", "number", number)
		if number < 0 {
			logger.L(ctx).Warn("square root of negative number attempted", "number", number)
			return mcp.NewToolResultError("Error: Cannot calculate square root of a negative number."), nil
		}
		result := math.Sqrt(number)
		return mcp.NewToolResultText(fmt.Sprintf("## Square Root Result\n\n√%s = %s", formatNumber(number), formatNumber(result))), nil
	}
}

// maxFactorialInput bounds factorial to what a float64 caller can have
// meant. 171! exceeds float64 range; the exact big.Int value would still
// compute, but the contract cuts off where the original did.
const maxFactorialInput = 170

func handleFactorial(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		number, errResult := numberArg(req, "number")
		if errResult != nil {
			return errResult, nil
		}
		logger.L(ctx).Debug("calculating factorial", "number", number)

		if number < 0 || number != math.Trunc(number) {
			logger.L(ctx).Warn("invalid factorial input", "number", number)
			return mcp.NewToolResultError("Error: Factorial is only defined for non-negative integers."), nil
		}
		if number > maxFactorialInput {
			logger.L(ctx).Warn("factorial input too large", "number", number)
			return mcp.NewToolResultError("Error: Input too large, would cause overflow."), nil
		}

		// MulRange(1, 0) is the empty product, so 0! comes out as 1.
		n := int64(number)
		result := new(big.Int).MulRange(1, n)
		return mcp.NewToolResultText(fmt.Sprintf("## Factorial Result\n\n%d! = %s", n, result.String())), nil
	}
}

func handleLogarithm(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		number, errResult := numberArg(req, "number")
		if errResult != nil {
			return errResult, nil
		}
		base := 10.0
		if v, ok := req.GetArguments()["base"].(float64); ok {
			base = v
		}
		logger.L(ctx).Debug("calculating logarithm", "number", number, "base", base)

		if number <= 0 {
			logger.L(ctx).Warn("logarithm of non-positive number attempted", "number", number)
			return mcp.NewToolResultError("Error: Cannot calculate logarithm of a non-positive number."), nil
		}
		if base <= 0 || base == 1 {
			logger.L(ctx).Warn("invalid logarithm base", "base", base)
			return mcp.NewToolResultError("Error: Logarithm base must be positive and not equal to 1."), nil
		}

		result := math.Log(number) / math.Log(base)
		return mcp.NewToolResultText(fmt.Sprintf("## Logarithm Result\n\nlog_%s(%s) = %s",
			formatNumber(base), formatNumber(number), formatNumber(result))), nil
	}
}

// tanUndefinedEpsilon marks angles close enough to an odd multiple of
// π/2 that tangent is reported as undefined instead of a huge value.
const tanUndefinedEpsilon = 1e-10

func handleTrigonometric(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		function, ok := req.GetArguments()["function"].(string)
		if !ok {
			return mcp.NewToolResultError("Error: function must be a string."), nil
		}
		angle, errResult := numberArg(req, "angle")
		if errResult != nil {
			return errResult, nil
		}
		isRadians := true
		if v, ok := req.GetArguments()["is_radians"].(bool); ok {
			isRadians = v
		}

		function = strings.ToLower(function)
		logger.L(ctx).Debug("calculating trigonometric function",
			"function", function, "angle", angle, "is_radians", isRadians)

		angleRad := angle
		angleDisplay := fmt.Sprintf("%s rad", formatNumber(angle))
		if !isRadians {
			angleRad = angle * math.Pi / 180
			angleDisplay = fmt.Sprintf("%s°", formatNumber(angle))
		}

		var result float64
		var funcName string
		switch function {
		case "sin":
			result = math.Sin(angleRad)
			funcName = "Sine"
		case "cos":
			result = math.Cos(angleRad)
			funcName = "Cosine"
		case "tan":
			if math.Abs(math.Cos(angleRad)) < tanUndefinedEpsilon {
				logger.L(ctx).Warn("tangent undefined", "angle", angle)
				return mcp.NewToolResultError(fmt.Sprintf("Error: Tangent is undefined at %s (multiple of π/2).", angleDisplay)), nil
			}
			result = math.Tan(angleRad)
			funcName = "Tangent"
		default:
			logger.L(ctx).Warn("invalid trigonometric function", "function", function)
			return mcp.NewToolResultError("Error: Function must be 'sin', 'cos', or 'tan'."), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("## %s Result\n\n%s(%s) = %s",
			funcName, function, angleDisplay, formatNumber(result))), nil
	}
}

func handleHealthCheck(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger.L(ctx).Info("health check requested")
		msg := "CalcMCP server is running and healthy!"
		if deps.Sessions != nil {
			msg = fmt.Sprintf("%s Active sessions: %d.", msg, deps.Sessions.Size())
		}
		return mcp.NewToolResultText(msg), nil
	}
}

func numberArg(req mcp.CallToolRequest, key string) (float64, *mcp.CallToolResult) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return 0, mcp.NewToolResultError(fmt.Sprintf("Error: %s must be a number.", key))
	}
	return v, nil
}

func twoNumberArgs(req mcp.CallToolRequest, k1, k2 string) (float64, float64, *mcp.CallToolResult) {
	a, errResult := numberArg(req, k1)
	if errResult != nil {
		return 0, 0, errResult
	}
	b, errResult := numberArg(req, k2)
	if errResult != nil {
		return 0, 0, errResult
	}
	return a, b, nil
}
