// Package grpcjson carries JSON messages over gRPC for services declared by
// hand instead of from protobuf definitions.
package grpcjson

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
)

const Name = "json"

type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return Name }

// ServerOption makes a server decode every request as JSON.
func ServerOption() grpc.ServerOption { return grpc.ForceServerCodec(Codec{}) }

// CallOption makes a client call encode as JSON.
func CallOption() grpc.CallOption { return grpc.ForceCodec(Codec{}) }

// Unary builds a method descriptor for fn. Interceptors see the full
// "/service/method" name.
func Unary[Req, Resp any](service, method string, fn func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(_ any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(ctx, in)
			}
			info := &grpc.UnaryServerInfo{FullMethod: full}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(ctx, req.(*Req))
			})
		},
	}
}

// Invoke calls service/method on cc and decodes the reply into out.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, service, method string, in, out any) error {
	return cc.Invoke(ctx, "/"+service+"/"+method, in, out, CallOption())
}
