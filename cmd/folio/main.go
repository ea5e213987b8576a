// Command folio is the terminal front end of the folio tracker: it reads
// and edits the same database as the server and prints reports as
// rendered markdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, c := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if cerr := c.closeApp(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
