/*
Package pipedeck is a headless controller for the pipe storage CLI.

Every user action (login, upload, download, public link creation, wallet
operations, local encryption) runs the external executable as a child
process. pipedeck reads its output incrementally, collapses transfer
progress into a single updating line, and keeps a status snapshot that a
polling consumer can read at any time without blocking the run.

# Concept

A Deck owns named action slots. Triggering a slot starts one run in the
background; the caller then polls the slot's snapshot until its completion
flag is set. Each finished run leaves an Outcome in the configured store.
The CLI follower, the HTTP API and the MCP server are all thin polling
consumers of the same Deck.

# Key Features

  - Non-blocking status: snapshots are immutable and read without locks.
  - Progress normalization: transfer lines replace each other in place.
  - Result extraction: public links, download hashes, wallet balances and usage reports.
  - Durable outcomes: memory, file or redis storage with one contract.

# Usage

	cfg, err := config.Load("pipedeck.yaml")
	if err != nil {
		log.Fatal(err)
	}

	deck, err := pipedeck.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer deck.Close(context.Background())

	run, err := deck.Trigger(ctx, "upload", domain.ActionUpload, map[string]any{
		"local":  "./report.pdf",
		"remote": "report.pdf",
	})
	if err != nil {
		log.Fatal(err)
	}

	for !run.Snapshot().Done {
		fmt.Println(run.Snapshot().Last())
		time.Sleep(100 * time.Millisecond)
	}
*/
package pipedeck
