package ipc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The instance service has one unary method and uses only well-known
// message types, so its descriptor is written out here rather than
// generated.
const (
	serviceName  = "snipsave.v1.Instance"
	statusMethod = "/" + serviceName + "/Status"
)

// instanceServer is the server API of snipsave.v1.Instance.
type instanceServer interface {
	Status(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

var instanceServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*instanceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "snipsave/v1/instance.proto",
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(instanceServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: statusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(instanceServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// statusService answers Status with the daemon's status line.
type statusService struct {
	status func() string
}

func (s statusService) Status(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	line := "running"
	if s.status != nil {
		line = s.status()
	}
	return wrapperspb.String(line), nil
}
