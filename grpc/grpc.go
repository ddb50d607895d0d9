// Package grpc dials the servers schemas are fetched from by gRPC reflection.
package grpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"time"

	"github.com/ktr0731/grpc-web-go-client/grpcweb"
	"github.com/ktr0731/protoir/logger"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

var ErrMutualAuthParamsAreNotEnough = errors.New("cert and certkey are required to authenticate mutually")

const dialTimeout = 7 * time.Second

// DialOptions describes how to connect to a server.
type DialOptions struct {
	// ServerName overrides the name used to verify the server certificate.
	ServerName string
	TLS        bool
	// CACert, Cert and CertKey are ignored unless TLS is true.
	// Cert and CertKey enable mutual authentication and must be set together.
	CACert, Cert, CertKey string
}

// Dial connects to addr, whose format is the same as the first argument of grpc.Dial.
func Dial(ctx context.Context, addr string, o DialOptions) (*grpc.ClientConn, error) {
	var opts []grpc.DialOption
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(64*1024*1024)))
	if !o.TLS {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		tlsCfg, err := newTLSConfig(o)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsCfg)))
		if o.ServerName != "" {
			opts = append(opts, grpc.WithAuthority(o.ServerName))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	logger.Printf("dial to %s (tls = %t)", addr, o.TLS)
	conn, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial to gRPC server")
	}
	return conn, nil
}

// DialWeb connects to addr over gRPC-Web.
func DialWeb(addr string) (*grpcweb.ClientConn, error) {
	logger.Printf("dial to %s (gRPC-Web)", addr)
	conn, err := grpcweb.DialContext(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial to gRPC-Web server")
	}
	return conn, nil
}

func newTLSConfig(o DialOptions) (*tls.Config, error) {
	var tlsCfg tls.Config
	if o.CACert != "" {
		b, err := os.ReadFile(o.CACert)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read the CA certificate")
		}
		cp := x509.NewCertPool()
		if !cp.AppendCertsFromPEM(b) {
			return nil, errors.New("failed to append the CA certificate")
		}
		tlsCfg.RootCAs = cp
	}
	if o.Cert != "" && o.CertKey != "" {
		certificate, err := tls.LoadX509KeyPair(o.Cert, o.CertKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read the client certificate")
		}
		tlsCfg.Certificates = append(tlsCfg.Certificates, certificate)
	} else if o.Cert != "" || o.CertKey != "" {
		return nil, ErrMutualAuthParamsAreNotEnough
	}
	return &tlsCfg, nil
}
