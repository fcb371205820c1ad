package constants

// Window and interaction
const (
	Title = "MPC Car Simulation"

	// CancelKey stops the simulation
	CancelKey = "q"

	// FailurePolicy on a ControlFailure: "stop" or "hold"
	FailurePolicy = "stop"

	// HeadlessTicks bounds a headless run started without -ticks
	HeadlessTicks = 200

	// HeadlessColumns and HeadlessRows size the in-memory screen
	HeadlessColumns = 160
	HeadlessRows    = 50

	// HistorySize is the in-memory trajectory capacity
	HistorySize = 4096

	// SummaryWidth is the sparkline width of the post-run summary
	SummaryWidth = 60
)

// Logging
const (
	LogLevel = "info"
	LogFile  = "mpc-car.log"

	// MaxLogSize triggers rotation of the log file to <name>.<timestamp>.log at open
	MaxLogSize = 10 * 1024 * 1024
)
