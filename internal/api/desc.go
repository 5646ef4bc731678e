// Package api declares the ridemate gRPC services: wire types, service
// descriptors, registration helpers and typed clients. Messages travel as
// JSON (content-subtype "json").
package api

import (
	"context"

	"google.golang.org/grpc"
)

const pkg = "ridemate.v1."

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unary builds a MethodDesc that decodes Req, runs the interceptor chain and
// calls into the server implementation S.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(service, method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// invoke performs a unary call with the JSON codec.
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(service, method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
