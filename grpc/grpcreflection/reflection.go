// Package grpcreflection fetches schema files from a gRPC server through the
// server reflection service.
package grpcreflection

import (
	"context"
	"strings"

	"github.com/jhump/protoreflect/desc"
	gr "github.com/jhump/protoreflect/grpcreflect"
	"github.com/ktr0731/grpc-web-go-client/grpcweb"
	"github.com/ktr0731/grpc-web-go-client/grpcweb/grpcweb_reflection_v1alpha"
	"github.com/ktr0731/protoir/logger"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection/grpc_reflection_v1alpha"
	"google.golang.org/grpc/status"
)

// ServiceName represents the gRPC reflection service name.
const ServiceName = "grpc.reflection.v1alpha.ServerReflection"

var ErrTLSHandshakeFailed = errors.New("TLS handshake failed")

// Client defines gRPC reflection client.
type Client interface {
	// ListFiles returns the files declaring the services the server exposes.
	// Their dependencies are reachable through GetDependencies.
	// ListFiles returns these errors:
	//   - ErrTLSHandshakeFailed: TLS misconfig.
	ListFiles() ([]*desc.FileDescriptor, error)
	// Reset clears internal states of Client.
	Reset()
}

type client struct {
	client *gr.Client
}

func getCtx(headers map[string][]string) context.Context {
	return metadata.NewOutgoingContext(context.Background(), metadata.MD(headers))
}

// NewClient returns an instance of gRPC reflection client for gRPC protocol.
func NewClient(conn grpc.ClientConnInterface, headers map[string][]string) Client {
	return &client{
		client: gr.NewClient(getCtx(headers), grpc_reflection_v1alpha.NewServerReflectionClient(conn)),
	}
}

// NewWebClient returns an instance of gRPC reflection client for gRPC-Web protocol.
func NewWebClient(conn *grpcweb.ClientConn, headers map[string][]string) Client {
	return &client{
		client: gr.NewClient(getCtx(headers), grpcweb_reflection_v1alpha.NewServerReflectionClient(conn)),
	}
}

func (c *client) ListFiles() ([]*desc.FileDescriptor, error) {
	ssvcs, err := c.client.ListServices()
	if err != nil {
		msg := status.Convert(err).Message()
		// The first message is returned when the server doesn't enable TLS,
		// the second one when the client doesn't enable TLS against a TLS server.
		if strings.Contains(msg, "tls: first record does not look like a TLS handshake") ||
			strings.Contains(msg, "latest connection error: <nil>") {
			return nil, ErrTLSHandshakeFailed
		}
		return nil, errors.Wrap(err, "failed to list services from reflection enabled gRPC server")
	}

	fds := make([]*desc.FileDescriptor, 0, len(ssvcs))
	encountered := make(map[string]bool, len(ssvcs))
	for _, s := range ssvcs {
		if s == ServiceName {
			continue
		}
		svc, err := c.client.ResolveService(s)
		if err != nil {
			if gr.IsElementNotFoundError(err) {
				logger.Printf("service %s doesn't expose its descriptor, skipped", s)
				continue
			}
			return nil, errors.Wrapf(err, "failed to resolve service '%s'", s)
		}

		fd := svc.GetFile()
		if encountered[fd.GetName()] {
			continue
		}
		encountered[fd.GetName()] = true
		fds = append(fds, fd)
	}

	return fds, nil
}

func (c *client) Reset() {
	c.client.Reset()
}
