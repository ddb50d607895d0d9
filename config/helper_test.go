package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ktr0731/protoir/meta"
	toml "github.com/pelletier/go-toml"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func defaultConfig() *Config {
	return &Config{
		Meta:    &Meta{ConfigVersion: meta.Version.String()},
		Default: &Default{},
		Server: &Server{
			Host:   "127.0.0.1",
			Port:   "50051",
			Header: map[string][]string{},
		},
		Compile: &Compile{
			Normalizer:      "auto",
			Access:          "public",
			NestedSeparator: ".",
		},
		Output: &Output{
			Format: "json",
			Indent: "  ",
		},
	}
}

// setupEnv creates a temp dir, changes the working dir to it and sets $XDG_CONFIG_HOME.
// It returns the temp dir and the config dir of protoir.
//
//	─ (temp dir): dir
//	   ─ config: $XDG_CONFIG_HOME
//	      ─ protoir: cfgDir
func setupEnv(t *testing.T) (string, string) {
	t.Helper()

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get the working dir: %s", err)
	}
	dir := t.TempDir()
	mustChdir(t, dir)
	t.Cleanup(func() { mustChdir(t, cwd) })

	cfgHome := filepath.Join(dir, "config")
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	cfgDir := filepath.Join(cfgHome, "protoir")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("failed to create dirs: %s", err)
	}
	return dir, cfgDir
}

func writeTOML(t *testing.T, p string, m map[string]interface{}) {
	t.Helper()

	tree, err := toml.TreeFromMap(m)
	if err != nil {
		t.Fatalf("failed to build a TOML tree: %s", err)
	}
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create a config file: %s", err)
	}
	defer f.Close()
	if _, err := tree.WriteTo(f); err != nil {
		t.Fatalf("failed to encode a config as TOML: %s", err)
	}
}

func mustChdir(t *testing.T, dir string) {
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir must not return an error, but got '%s'", err)
	}
}

// outerFile is a file declaring outer_msg with a nested inner_msg.
func outerFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("outer.proto"),
		Package: proto.String("test"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name:       proto.String("outer_msg"),
			NestedType: []*descriptorpb.DescriptorProto{{Name: proto.String("inner_msg")}},
		}},
	}
}
