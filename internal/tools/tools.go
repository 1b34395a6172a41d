// Package tools defines the CalcMCP arithmetic tools and assembles the
// MCP server that exposes them.
//
// Each tool returns a markdown-formatted result string. Input validation
// failures (division by zero, negative square root, factorial bounds and
// so on) are reported as tool errors with a stable message, never as
// protocol errors, so clients always get a readable response.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/calcmcp/calcmcp-go/internal/core/session"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/logger"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/metric"
)

// Deps carries the shared dependencies the tool handlers and middleware
// need. Sessions, Metrics and Limiter may each be nil; the matching
// middleware is skipped when they are.
type Deps struct {
	Sessions *session.Handler
	Metrics  *metric.Metrics
	Log      logger.Logger
	Limiter  *rate.Limiter
}

// NewServer builds the MCP server with all calculator tools registered
// and the handler middleware chain installed.
func NewServer(name, version string, deps Deps) *server.MCPServer {
	if deps.Log == nil {
		deps.Log = logger.Default()
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	}
	if deps.Limiter != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(rateLimitMiddleware(deps.Limiter)))
	}
	if deps.Metrics != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(metricsMiddleware(deps.Metrics)))
	}
	if deps.Sessions != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(sessionTouchMiddleware(deps)))
	}

	srv := server.NewMCPServer(name, version, opts...)
	registerTools(srv, deps)
	return srv
}

func registerTools(srv *server.MCPServer, deps Deps) {
	srv.AddTool(
		mcp.NewTool("add",
			mcp.WithDescription("Add two numbers together."),
			mcp.WithNumber("a", mcp.Required(), mcp.Description("First number")),
			mcp.WithNumber("b", mcp.Required(), mcp.Description("Second number")),
		),
		handleAdd(deps),
	)

	srv.AddTool(
		mcp.NewTool("subtract",
			mcp.WithDescription("Subtract the second number from the first."),
			mcp.WithNumber("a", mcp.Required(), mcp.Description("First number")),
			mcp.WithNumber("b", mcp.Required(), mcp.Description("Second number")),
		),
		handleSubtract(deps),
	)

	srv.AddTool(
		mcp.NewTool("multiply",
			mcp.WithDescription("Multiply two numbers together."),
			mcp.WithNumber("a", mcp.Required(), mcp.Description("First number")),
			mcp.WithNumber("b", mcp.Required(), mcp.Description("Second number")),
		),
		handleMultiply(deps),
	)

	srv.AddTool(
		mcp.NewTool("divide",
			mcp.WithDescription("Divide the first number by the second."),
			mcp.WithNumber("a", mcp.Required(), mcp.Description("First number (dividend)")),
			mcp.WithNumber("b", mcp.Required(), mcp.Description("Second number (divisor)")),
		),
		handleDivide(deps),
	)

	srv.AddTool(
		mcp.NewTool("power",
			mcp.WithDescription("Raise the base to the power of the exponent."),
			mcp.WithNumber("base", mcp.Required(), mcp.Description("The base number")),
			mcp.WithNumber("exponent", mcp.Required(), mcp.Description("The exponent")),
		),
		handlePower(deps),
	)

	srv.AddTool(
		mcp.NewTool("modulo",
			mcp.WithDescription("Calculate the remainder when the first number is divided by the second."),
			mcp.WithNumber("a", mcp.Required(), mcp.Description("First number (dividend)")),
			mcp.WithNumber("b", mcp.Required(), mcp.Description("Second number (divisor)")),
		),
		handleModulo(deps),
	)

	srv.AddTool(
		mcp.NewTool("calculate",
			mcp.WithDescription("Evaluate a simple mathematical expression, e.g. \"2 + 3 * 4\". Supports numbers, +, -, *, /, ** (power), // (floor division) and parentheses."),
			mcp.WithString("expression", mcp.Required(), mcp.Description("A mathematical expression as a string")),
		),
		handleCalculate(deps),
	)

	srv.AddTool(
		mcp.NewTool("square_root",
			mcp.WithDescription("Calculate the square root of a number."),
			mcp.WithNumber("number", mcp.Required(), mcp.Description("The number to find the square root of")),
		),
		handleSquareRoot(deps),
	)

	srv.AddTool(
		mcp.NewTool("factorial",
			mcp.WithDescription("Calculate the factorial of a non-negative integer (up to 170)."),
			mcp.WithNumber("number", mcp.Required(), mcp.Description("The non-negative integer to find the factorial of")),
		),
		handleFactorial(deps),
	)

	srv.AddTool(
		mcp.NewTool("logarithm",
			mcp.WithDescription("Calculate the logarithm of a number with the specified base."),
			mcp.WithNumber("number", mcp.Required(), mcp.Description("The number to find the logarithm of")),
			mcp.WithNumber("base", mcp.Description("The base of the logarithm (default: 10)")),
		),
		handleLogarithm(deps),
	)

	srv.AddTool(
		mcp.NewTool("trigonometric",
			mcp.WithDescription("Calculate trigonometric functions (sin, cos, tan)."),
			mcp.WithString("function", mcp.Required(), mcp.Description("The trigonometric function to use ('sin', 'cos', 'tan')")),
			mcp.WithNumber("angle", mcp.Required(), mcp.Description("The angle value")),
			mcp.WithBoolean("is_radians", mcp.Description("Whether the angle is in radians (true, default) or degrees (false)")),
		),
		handleTrigonometric(deps),
	)

	srv.AddTool(
		mcp.NewTool("health_check",
			mcp.WithDescription("Check if the server is running and responsive."),
		),
		handleHealthCheck(deps),
	)
}
