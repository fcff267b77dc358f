package bridge

import (
	"context"
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

// Run parses args and bridges stdin/stdout to the tool gateway until input ends or ctx is cancelled
func Run(ctx context.Context, args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}
	if err := options.LoadConfig(ctx); err != nil {
		return err
	}
	options.Init()
	if err := options.Validate(); err != nil {
		return err
	}
	srv, err := New(ctx, options)
	if err != nil {
		return err
	}
	defer srv.Close()
	err = srv.Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
