package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcpgw/auth"
	"github.com/viant/mcpgw/emitter"
	"github.com/viant/mcpgw/framing"
	"github.com/viant/mcpgw/gateway"
	"github.com/viant/mcpgw/message"
	"github.com/viant/mcpgw/router"
	"golang.org/x/sync/errgroup"
)

const (
	chunkSize = 64 * 1024
	queueSize = 1024
)

// Service bridges a line delimited JSON-RPC stream to the tool gateway
type Service struct {
	router      *router.Router
	concurrency int
	logger      *logrus.Entry
	closer      io.Closer
}

// Router returns the service router
func (s *Service) Router() *router.Router {
	return s.router
}

// Serve reads requests from in and writes replies to out until in is exhausted or ctx is done
func (s *Service) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	anEmitter := emitter.New(out)
	queue := make(chan *message.Outcome, queueSize)
	readErr := make(chan error, 1)
	go func() {
		defer close(queue)
		readErr <- s.read(ctx, in, queue)
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for {
		select {
		case <-groupCtx.Done():
			if err := group.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case outcome, ok := <-queue:
			if !ok {
				if err := group.Wait(); err != nil {
					return err
				}
				return <-readErr
			}
			group.Go(func() error {
				return s.dispatch(groupCtx, outcome, anEmitter)
			})
		}
	}
}

func (s *Service) dispatch(ctx context.Context, outcome *message.Outcome, anEmitter *emitter.Emitter) error {
	var response *jsonrpc.Response
	if outcome.Error != nil {
		s.logger.WithError(outcome.Cause).Debug("malformed input")
		response = &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Error: outcome.Error}
	} else {
		started := time.Now()
		response = s.router.Route(ctx, outcome.Message)
		s.logger.WithFields(logrus.Fields{"method": outcome.Message.Method, "id": outcome.Message.Key(), "elapsed": time.Since(started)}).Debug("request handled")
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := anEmitter.Emit(response); err != nil {
		return err
	}
	return nil
}

// read frames input, handles notifications in place and queues everything that needs a reply
func (s *Service) read(ctx context.Context, in io.Reader, queue chan<- *message.Outcome) error {
	reassembler := framing.New()
	buffer := make([]byte, chunkSize)
	for {
		n, err := in.Read(buffer)
		if n > 0 {
			for _, line := range reassembler.Feed(buffer[:n]) {
				if !s.accept(ctx, line, queue) {
					return nil
				}
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			if line := reassembler.Flush(); line != "" {
				s.accept(ctx, line, queue)
			}
			return nil
		}
		return fmt.Errorf("failed to read input: %w", err)
	}
}

func (s *Service) accept(ctx context.Context, line string, queue chan<- *message.Outcome) bool {
	outcome := message.Decode(line)
	if outcome.Message != nil && outcome.Message.IsNotification() {
		s.router.Notify(ctx, outcome.Message)
		return true
	}
	select {
	case queue <- outcome:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close releases service resources
func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// New creates a bridge service; a missing bearer token fails before any input is read
func New(ctx context.Context, options *Options) (*Service, error) {
	logger, closer, err := NewLogger(options)
	if err != nil {
		return nil, err
	}
	ret, err := newService(ctx, options, logrus.NewEntry(logger))
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	ret.closer = closer
	return ret, nil
}

func newService(ctx context.Context, options *Options, logger *logrus.Entry) (*Service, error) {
	token, err := auth.LoadToken(ctx, &auth.Source{Token: options.Token, TokenURL: options.TokenURL, Secret: options.Secret, Key: options.Key})
	if err != nil {
		return nil, err
	}
	if info := auth.Inspect(token); info.JWT {
		entry := logger.WithField("subject", info.Subject)
		if info.ExpiresAt != nil {
			entry = entry.WithField("expiresAt", info.ExpiresAt.Format(time.RFC3339))
		}
		if info.Expired(time.Now()) {
			entry.Warn("bearer token has expired, gateway calls will likely be rejected")
		} else {
			entry.Debug("bearer token loaded")
		}
	}
	client, err := gateway.New(options.URL, token,
		gateway.WithListTimeout(options.ListTimeout),
		gateway.WithCallTimeout(options.CallTimeout),
		gateway.WithUserAgent(options.Name+"/"+options.Version),
		gateway.WithLogger(logger.WithField("component", "gateway")))
	if err != nil {
		return nil, err
	}
	aRouter := router.New(client,
		router.WithServerInfo(options.Name, options.Version),
		router.WithLenientList(options.LenientList),
		router.WithLogger(logger.WithField("component", "router")))
	concurrency := options.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	logger.WithFields(logrus.Fields{"url": client.BaseURL(), "concurrency": concurrency, "lenientList": options.LenientList}).Info("bridge started")
	return &Service{
		router:      aRouter,
		concurrency: concurrency,
		logger:      logger.WithField("component", "bridge"),
	}, nil
}
