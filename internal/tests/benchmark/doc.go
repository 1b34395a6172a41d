// Package benchmark provides performance benchmarks for CalcMCP.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run with specific session counts:
//
//	go test -bench=BenchmarkRegistry -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
