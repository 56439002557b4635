// Package lineseq sequences production batches on a line so that the total
// changeover (cleaning-in-place) time between consecutive batches is minimal.
//
// 🚀 What is lineseq?
//
//	A small engine plus a NATS daemon that brings together:
//		• Changeover rules: per-product CIP class with per-predecessor exceptions
//		• Cost matrices: asymmetric minutes between every ordered pair of batches
//		• Exact solving: Held–Karp over open paths for small lines
//		• Heuristic solving: nearest neighbor + 2-opt + randomized 3-opt under a time budget
//		• Orchestration: one computation per line, newest request wins, monotone progress
//
// Under the hood, everything is organized under these subpackages:
//
//	changeover/           — CIP classes, transition rules, durations, BuildMatrix
//	matrix/               — Matrix interface and the row-major Dense storage
//	tsp/                  — HeldKarpPath, HeuristicPath, TwoOptPath, ThreeOptPath, PathCost
//	sequencer/            — Engine: request protocol, algorithm choice, compare mode, events
//	types/                — Logger, MetricsCollector and EngineState shared by all layers
//	transport/natsworker/ — JSON requests and events over NATS subjects
//	cmd/lineseqd/         — the daemon: YAML config, slog, Prometheus /metrics
//
// Quick example (a, b, c with CIP1=10, CIP2=240, CIP3=300 and b→a downgraded to CIP1):
//
//	b ──10──▶ a ──10──▶ c     total 20 minutes
//
//	go get github.com/katalvlaran/lineseq
package lineseq
