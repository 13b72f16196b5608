// Package parbench provides a harness for benchmarking embarrassingly
// parallel workloads. A workload is a pure function from one input record to
// one output record; the harness applies it to an ordered batch of inputs
// twice, once sequentially and once on a fixed-size pool of workers, and
// compares the two result sequences index by index.
//
// Parbench provides the following subpackages:
//
// parbench/sequential applies a workload to a batch in input order on a
// single goroutine. Its results are the correctness baseline.
//
// parbench/parallel applies a workload to a batch on a fixed-size worker
// pool, and reassembles the results in input order regardless of completion
// order.
//
// parbench/bench runs both passes over the same batch and derives elapsed
// times, speedup, per-item duration statistics, and a correctness delta.
//
// parbench/workload provides four sample payloads (grayscale conversion,
// vector summation, linear search, and fall-time integration) together with
// generators for sample input batches.
//
// parbench/suite runs several benchmarks in a row, isolating the failure of
// any one of them from the others.
//
// parbench/report, parbench/metrics, and parbench/config provide reporting,
// OpenTelemetry instrumentation, and configuration loading for the
// parbench command.
package parbench
