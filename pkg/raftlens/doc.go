// Package raftlens extracts structured CP/Raft diagnostics from a directory
// of cluster member logs: a typed event table, a reconstructed leadership
// timeline, and time-windowed health rollups, written as CSV.
//
// Quick start:
//
//	sum, err := raftlens.Run(ctx, "/runs/2026-08-12",
//	    raftlens.WithOutputDir("/tmp/out"),
//	    raftlens.WithWindowSeconds(60),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sum.Events, "events,", sum.Intervals, "leader intervals")
//
// Only files named worker.log inside directories ending in "-member" are
// read; everything else is ignored.
package raftlens
