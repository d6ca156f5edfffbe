package main

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Mohammad-Mahdi82/NexusCafe/pkg/cafepb"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

func newTestClient(t *testing.T, d *desk) cafepb.TableServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	cafepb.RegisterTableServiceServer(srv, &server{desk: d, tick: 10 * time.Millisecond, log: zap.NewNop()})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return cafepb.NewTableServiceClient(conn)
}

func TestGRPCDispatchAndList(t *testing.T) {
	d, _ := newTestDesk(t)
	client := newTestClient(t, d)
	ctx := context.Background()

	raw, err := tables.EncodeCommand(tables.Rename{TableID: "1", Name: "Window"})
	require.NoError(t, err)
	req, err := cafepb.ToStruct(json.RawMessage(raw))
	require.NoError(t, err)

	resp, err := client.Dispatch(ctx, req)
	require.NoError(t, err)
	var list cafepb.TableList
	require.NoError(t, cafepb.FromStruct(resp, &list))
	assert.Equal(t, "Window", list.Tables[0].Label())

	resp, err = client.ListTables(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	require.NoError(t, cafepb.FromStruct(resp, &list))
	assert.Len(t, list.Tables, 8)
	assert.Equal(t, "Window", list.Tables[0].Label())
}

func TestGRPCDispatchRejectsUnknownCommand(t *testing.T) {
	d, _ := newTestDesk(t)
	client := newTestClient(t, d)

	req, err := cafepb.ToStruct(map[string]string{"type": "teleport"})
	require.NoError(t, err)
	_, err = client.Dispatch(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCAddProductUsesCatalog(t *testing.T) {
	d, _ := newTestDesk(t)
	client := newTestClient(t, d)
	ctx := context.Background()

	order := func(productID string, price int64) (*structpb.Struct, error) {
		raw, err := tables.EncodeCommand(tables.AddProduct{TableID: "1", Product: models.Product{
			ID: productID, Name: "Typed", Price: decimal.NewFromInt(price),
		}})
		require.NoError(t, err)
		req, err := cafepb.ToStruct(json.RawMessage(raw))
		require.NoError(t, err)
		return client.Dispatch(ctx, req)
	}

	_, err := order("ghost", 9999)
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
	tbl, err := d.tables.Table("1")
	require.NoError(t, err)
	assert.Empty(t, tbl.OrderedProducts)

	resp, err := order("1", 0)
	require.NoError(t, err)
	var list cafepb.TableList
	require.NoError(t, cafepb.FromStruct(resp, &list))
	require.Len(t, list.Tables[0].OrderedProducts, 1)
	got := list.Tables[0].OrderedProducts[0]
	assert.Equal(t, "Kola", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(20)), "price comes from the catalog, got %s", got.Price)

	raw, err := tables.EncodeCommand(tables.AddProduct{TableID: "99", Product: models.Product{ID: "1"}})
	require.NoError(t, err)
	req, err := cafepb.ToStruct(json.RawMessage(raw))
	require.NoError(t, err)
	_, err = client.Dispatch(ctx, req)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPCQuoteRate(t *testing.T) {
	d, _ := newTestDesk(t)
	client := newTestClient(t, d)

	req, err := cafepb.ToStruct(cafepb.RateQuery{PSModel: models.PS3, ControllerCount: models.FourControllers})
	require.NoError(t, err)
	resp, err := client.QuoteRate(context.Background(), req)
	require.NoError(t, err)

	var cfg models.GamingConfig
	require.NoError(t, cafepb.FromStruct(resp, &cfg))
	assert.Equal(t, models.PS3, cfg.PSModel)
	assert.True(t, cfg.HourlyRate.Equal(decimal.NewFromInt(120)))

	req, err = cafepb.ToStruct(map[string]any{"psModel": "ps9", "controllerCount": 2})
	require.NoError(t, err)
	_, err = client.QuoteRate(context.Background(), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCWatchBillingStreamsFrames(t *testing.T) {
	d, _ := newTestDesk(t)
	client := newTestClient(t, d)
	require.NoError(t, d.startSession(context.Background(), "1", models.PS4, models.TwoControllers))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := client.WatchBilling(ctx, &emptypb.Empty{})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		msg, err := stream.Recv()
		require.NoError(t, err)
		var frame cafepb.BillingFrame
		require.NoError(t, cafepb.FromStruct(msg, &frame))
		require.Len(t, frame.Entries, 8)
		assert.Equal(t, models.StatusActive, frame.Entries[0].Table.Status)
		assert.True(t, frame.Entries[0].Projection.Ticking)
		assert.False(t, frame.Entries[1].Projection.Ticking)
	}
}
