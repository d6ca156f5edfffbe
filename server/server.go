package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Mohammad-Mahdi82/NexusCafe/pkg/cafepb"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/billing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/catalog"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

type server struct {
	desk *desk
	tick time.Duration
	log  *zap.Logger
}

var _ cafepb.TableServiceServer = (*server)(nil)

func (s *server) Dispatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := cafepb.FromStructJSON(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	cmd, err := tables.DecodeCommand(raw)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.log.Info("remote command", zap.String("kind", cmd.Kind()))
	list, err := s.desk.dispatch(ctx, cmd)
	if err != nil {
		return nil, grpcError(err)
	}
	return cafepb.ToStruct(cafepb.TableList{Tables: list})
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, tables.ErrTableNotFound), errors.Is(err, catalog.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *server) ListTables(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return cafepb.ToStruct(cafepb.TableList{Tables: s.desk.tables.Tables()})
}

func (s *server) QuoteRate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var q cafepb.RateQuery
	if err := cafepb.FromStruct(req, &q); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !q.PSModel.Valid() || !q.ControllerCount.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unsupported tier %s/%d", q.PSModel, q.ControllerCount)
	}
	return cafepb.ToStruct(s.desk.pricing.Config(q.PSModel, q.ControllerCount))
}

func (s *server) WatchBilling(_ *emptypb.Empty, stream cafepb.TableService_WatchBillingServer) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	var sendErr error
	watcher := billing.Watcher{Interval: s.tick, Now: s.desk.tables.Now}
	err := watcher.Run(ctx, s.desk.tables.Tables, func(entries []billing.Entry) {
		msg, err := cafepb.ToStruct(cafepb.NewBillingFrame(s.desk.tables.Now().UnixMilli(), entries))
		if err == nil {
			err = stream.Send(msg)
		}
		if err != nil {
			sendErr = err
			cancel()
		}
	})

	if sendErr != nil {
		s.log.Debug("billing watcher stopped", zap.Error(sendErr))
		return sendErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
