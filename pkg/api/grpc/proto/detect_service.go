// Package proto defines the DetectService wire contract. Requests and
// responses are carried as structpb.Struct values (a real, already
// compiled proto.Message) rather than through code generated from a
// .proto file, since the structured fields a detection run needs
// (dataset path, N/K/block size, run ID, status, Top-N list) map
// cleanly onto a dynamic struct and don't warrant a generated schema.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// DetectServiceServer is the server API for DetectService.
type DetectServiceServer interface {
	// Detect submits a detection run and returns once it completes.
	Detect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListRuns returns the tracked runs, optionally filtered by status.
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetRun returns a single run by ID.
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// HealthCheck reports server liveness and basic stats.
	HealthCheck(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedDetectServiceServer can be embedded to satisfy
// DetectServiceServer for methods a given build doesn't implement.
type UnimplementedDetectServiceServer struct{}

func (UnimplementedDetectServiceServer) Detect(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, errUnimplemented("Detect")
}

func (UnimplementedDetectServiceServer) ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, errUnimplemented("ListRuns")
}

func (UnimplementedDetectServiceServer) GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, errUnimplemented("GetRun")
}

func (UnimplementedDetectServiceServer) HealthCheck(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, errUnimplemented("HealthCheck")
}

// RegisterDetectServiceServer registers srv as the handler for the
// DetectService on s.
func RegisterDetectServiceServer(s grpc.ServiceRegistrar, srv DetectServiceServer) {
	s.RegisterService(&detectServiceDesc, srv)
}

func _DetectService_Detect_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectServiceServer).Detect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/orca.DetectService/Detect"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DetectServiceServer).Detect(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _DetectService_ListRuns_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectServiceServer).ListRuns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/orca.DetectService/ListRuns"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DetectServiceServer).ListRuns(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _DetectService_GetRun_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectServiceServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/orca.DetectService/GetRun"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DetectServiceServer).GetRun(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _DetectService_HealthCheck_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectServiceServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/orca.DetectService/HealthCheck"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DetectServiceServer).HealthCheck(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var detectServiceDesc = grpc.ServiceDesc{
	ServiceName: "orca.DetectService",
	HandlerType: (*DetectServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Detect", Handler: _DetectService_Detect_Handler},
		{MethodName: "ListRuns", Handler: _DetectService_ListRuns_Handler},
		{MethodName: "GetRun", Handler: _DetectService_GetRun_Handler},
		{MethodName: "HealthCheck", Handler: _DetectService_HealthCheck_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pkg/api/grpc/proto/detect_service.go",
}

// DetectServiceClient is the client API for DetectService.
type DetectServiceClient interface {
	Detect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	HealthCheck(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type detectServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDetectServiceClient wraps a gRPC connection as a DetectServiceClient.
func NewDetectServiceClient(cc grpc.ClientConnInterface) DetectServiceClient {
	return &detectServiceClient{cc: cc}
}

func (c *detectServiceClient) Detect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/orca.DetectService/Detect", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *detectServiceClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/orca.DetectService/ListRuns", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *detectServiceClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/orca.DetectService/GetRun", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *detectServiceClient) HealthCheck(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/orca.DetectService/HealthCheck", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func errUnimplemented(method string) error {
	return &unimplementedError{method: method}
}

type unimplementedError struct {
	method string
}

func (e *unimplementedError) Error() string {
	return "proto: method " + e.method + " not implemented"
}
