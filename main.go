package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "fuzzyhl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := newApp(stdin, stdout, stderr)
	defer a.close()
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
