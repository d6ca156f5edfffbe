// Package cafepb describes the nexuscafe.TableService gRPC service. Messages
// are protobuf well-known Struct values carrying the JSON documents below, so
// no generated code is needed on either side.
package cafepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "nexuscafe.TableService"

	DispatchMethod     = "/nexuscafe.TableService/Dispatch"
	ListTablesMethod   = "/nexuscafe.TableService/ListTables"
	QuoteRateMethod    = "/nexuscafe.TableService/QuoteRate"
	WatchBillingMethod = "/nexuscafe.TableService/WatchBilling"
)

// TableServiceServer is implemented by the front desk.
type TableServiceServer interface {
	// Dispatch applies one command envelope and returns the new TableList.
	Dispatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTables(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// QuoteRate answers a RateQuery with the GamingConfig a start would use.
	QuoteRate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// WatchBilling streams a BillingFrame on every projector tick.
	WatchBilling(*emptypb.Empty, TableService_WatchBillingServer) error
}

type TableService_WatchBillingServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type watchBillingServer struct {
	grpc.ServerStream
}

func (x *watchBillingServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func RegisterTableServiceServer(s grpc.ServiceRegistrar, srv TableServiceServer) {
	s.RegisterService(&TableService_ServiceDesc, srv)
}

func dispatchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableServiceServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DispatchMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TableServiceServer).Dispatch(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listTablesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableServiceServer).ListTables(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListTablesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TableServiceServer).ListTables(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func quoteRateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableServiceServer).QuoteRate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QuoteRateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TableServiceServer).QuoteRate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func watchBillingHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TableServiceServer).WatchBilling(in, &watchBillingServer{stream})
}

var TableService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TableServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dispatch", Handler: dispatchHandler},
		{MethodName: "ListTables", Handler: listTablesHandler},
		{MethodName: "QuoteRate", Handler: quoteRateHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchBilling", Handler: watchBillingHandler, ServerStreams: true},
	},
	Metadata: "nexuscafe.proto",
}

type TableServiceClient interface {
	Dispatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListTables(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	QuoteRate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchBilling(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (TableService_WatchBillingClient, error)
}

type TableService_WatchBillingClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type tableServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTableServiceClient(cc grpc.ClientConnInterface) TableServiceClient {
	return &tableServiceClient{cc}
}

func (c *tableServiceClient) Dispatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DispatchMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) ListTables(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListTablesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) QuoteRate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, QuoteRateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) WatchBilling(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (TableService_WatchBillingClient, error) {
	stream, err := c.cc.NewStream(ctx, &TableService_ServiceDesc.Streams[0], WatchBillingMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &watchBillingClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type watchBillingClient struct {
	grpc.ClientStream
}

func (x *watchBillingClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
