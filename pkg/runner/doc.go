/*
Package runner owns the lifecycle of every run of the external tool.

Start spawns the tool through a ports.Launcher and hands the run to one
background goroutine. That goroutine is the only writer of the run's status
store: two reader goroutines drain stdout and stderr concurrently and send
complete lines to it over a channel. After both streams end it waits for the
exit status and performs exactly one terminal action before setting the
completion flag.

# Key Components

  - Runner: Starts runs and carries shared configuration (hooks, extractor, logger).
  - Run: A handle to one run; snapshots never block.
  - SanitizeLine: Strips terminal escapes from tool output before it is stored.

# Usage

	r := runner.New(process.NewLauncher(process.WithExecutable("pipe")),
		runner.WithLogger(logger),
	)

	run := r.Start(ctx, "upload", req)
	for !run.Snapshot().Done {
		render(run.Snapshot())
		time.Sleep(100 * time.Millisecond)
	}
*/
package runner
