package app

import (
	"context"

	"github.com/ktr0731/protoir/config"
	"github.com/ktr0731/protoir/grpc"
	"github.com/ktr0731/protoir/grpc/grpcreflection"
	"github.com/ktr0731/protoir/logger"
	"github.com/ktr0731/protoir/proto"
	"github.com/pkg/errors"
)

// newSource returns the source of descriptors cfg describes. cleanup must be
// called after the source is no longer used. cfg must be validated.
func newSource(ctx context.Context, cfg *config.Config) (src proto.Source, cleanup func(), err error) {
	switch {
	case len(cfg.Default.ProtoFile) != 0:
		return proto.NewFileSource(cfg.Default.ProtoPath, cfg.Default.ProtoFile), func() {}, nil
	case len(cfg.Default.DescriptorSet) != 0:
		return proto.NewDescriptorSetSource(cfg.Default.DescriptorSet...), func() {}, nil
	}

	headers, err := grpc.NewHeaders(cfg.Server.Header)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid headers")
	}

	var client grpcreflection.Client
	if cfg.Server.Web {
		conn, err := grpc.DialWeb(cfg.Server.Addr())
		if err != nil {
			return nil, nil, err
		}
		client = grpcreflection.NewWebClient(conn, headers)
		return proto.NewReflectionSource(client), client.Reset, nil
	}

	conn, err := grpc.Dial(ctx, cfg.Server.Addr(), grpc.DialOptions{
		ServerName: cfg.Server.Name,
		TLS:        cfg.Server.TLS,
		CACert:     cfg.Server.CACert,
		Cert:       cfg.Server.Cert,
		CertKey:    cfg.Server.CertKey,
	})
	if err != nil {
		return nil, nil, err
	}
	client = grpcreflection.NewClient(conn, headers)
	return proto.NewReflectionSource(client), func() {
		client.Reset()
		if err := conn.Close(); err != nil {
			logger.Printf("failed to close the connection: %s", err)
		}
	}, nil
}
