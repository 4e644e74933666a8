// Package pipeline provides a framework for executing report stages in
// sequence.
//
// The pipeline pattern is used to process an input file through multiple
// stages: loading employee records and computing statistics. Each stage is
// implemented as a Step that receives the current run and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of stages without modifying core logic
// 2. It provides consistent error handling and logging across stages
// 3. It supports cancellation via context for interrupted runs
package pipeline
