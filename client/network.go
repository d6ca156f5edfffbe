package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/Mohammad-Mahdi82/NexusCafe/pkg/cafepb"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

// remote is a desk terminal's view of the server.
type remote struct {
	conn    *grpc.ClientConn
	client  cafepb.TableServiceClient
	backoff func() backoff.BackOff
}

func dial(addr string) (*remote, error) {
	// grpc.NewClient connects lazily; the first call does the real work.
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", addr, err)
	}
	return &remote{
		conn:    conn,
		client:  cafepb.NewTableServiceClient(conn),
		backoff: defaultBackOff,
	}, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

func (r *remote) Close() error {
	return r.conn.Close()
}

// retry runs op until it succeeds, fails permanently or the backoff gives up.
// Only Unavailable errors are retried.
func (r *remote) retry(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	err := backoff.Retry(func() error {
		last = op(ctx)
		if last == nil || !retryable(last) {
			return nil
		}
		return last
	}, backoff.WithContext(r.backoff(), ctx))
	if err != nil {
		return err
	}
	return last
}

func retryable(err error) bool {
	return status.Code(err) == codes.Unavailable
}

func (r *remote) ListTables(ctx context.Context) ([]models.TableSession, error) {
	var list cafepb.TableList
	err := r.retry(ctx, func(ctx context.Context) error {
		resp, err := r.client.ListTables(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		return cafepb.FromStruct(resp, &list)
	})
	return list.Tables, err
}

// QuoteRate asks the server which GamingConfig a start at this tier gets.
func (r *remote) QuoteRate(ctx context.Context, model models.PSModel, count models.ControllerCount) (models.GamingConfig, error) {
	req, err := cafepb.ToStruct(cafepb.RateQuery{PSModel: model, ControllerCount: count})
	if err != nil {
		return models.GamingConfig{}, err
	}

	var cfg models.GamingConfig
	err = r.retry(ctx, func(ctx context.Context) error {
		resp, err := r.client.QuoteRate(ctx, req)
		if err != nil {
			return err
		}
		return cafepb.FromStruct(resp, &cfg)
	})
	return cfg, err
}

// Dispatch sends cmd and returns the table list after it was applied.
func (r *remote) Dispatch(ctx context.Context, cmd tables.Command) ([]models.TableSession, error) {
	raw, err := tables.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}
	req, err := cafepb.ToStruct(json.RawMessage(raw))
	if err != nil {
		return nil, err
	}

	var list cafepb.TableList
	err = r.retry(ctx, func(ctx context.Context) error {
		resp, err := r.client.Dispatch(ctx, req)
		if err != nil {
			return err
		}
		return cafepb.FromStruct(resp, &list)
	})
	return list.Tables, err
}

// Watch streams billing frames to fn, reconnecting with backoff when the
// server goes away. It returns when ctx is done or fn returns an error.
func (r *remote) Watch(ctx context.Context, fn func(cafepb.BillingFrame) error) error {
	b := backoff.WithContext(r.backoff(), ctx)
	for {
		err := r.watchOnce(ctx, fn, b.Reset)
		if ctx.Err() != nil {
			return nil
		}
		var stop stopWatching
		if errors.As(err, &stop) {
			return stop.err
		}
		if err != nil && !retryable(err) && !errors.Is(err, io.EOF) {
			return err
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("server unreachable: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

type stopWatching struct{ err error }

func (s stopWatching) Error() string { return s.err.Error() }

func (r *remote) watchOnce(ctx context.Context, fn func(cafepb.BillingFrame) error, connected func()) error {
	stream, err := r.client.WatchBilling(ctx, &emptypb.Empty{})
	if err != nil {
		return err
	}
	for {
		msg, err := stream.Recv()
		if err != nil {
			return err
		}
		connected()

		var frame cafepb.BillingFrame
		if err := cafepb.FromStruct(msg, &frame); err != nil {
			return stopWatching{err}
		}
		if err := fn(frame); err != nil {
			return stopWatching{err}
		}
	}
}
