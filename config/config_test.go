package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ktr0731/protoir/codegen"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var globalConfig = map[string]interface{}{
	"server": map[string]interface{}{
		"host": "localhost",
		"port": "3000",
	},
	"compile": map[string]interface{}{
		"normalizer": "null",
		"valueTypes": []string{"api.Point"},
	},
}

var localConfig = map[string]interface{}{
	"default": map[string]interface{}{
		"protoPath": []string{"bar"},
	},
	"server": map[string]interface{}{
		"port": "3333",
		"header": map[string]interface{}{
			"grpc-client": []string{"protoir"},
		},
	},
}

func TestGet(t *testing.T) {
	withGlobal := func(c *Config) {
		c.Server.Host = "localhost"
		c.Server.Port = "3000"
		c.Compile.Normalizer = "null"
		c.Compile.ValueTypes = []string{"api.Point"}
	}
	withLocal := func(c *Config) {
		withGlobal(c)
		c.Default.ProtoPath = []string{"bar"}
		c.Server.Port = "3333"
		c.Server.Header = map[string][]string{"grpc-client": {"protoir"}}
	}

	cases := map[string]struct {
		global, local bool
		env           map[string]string
		args          []string
		expected      func(c *Config)
	}{
		"defaults if both of global and local config are not found": {
			expected: func(*Config) {},
		},
		"global config": {
			global:   true,
			expected: withGlobal,
		},
		"local config overrides global config": {
			global:   true,
			local:    true,
			expected: withLocal,
		},
		"env overrides local config": {
			global: true,
			local:  true,
			env:    map[string]string{"PROTOIR_SERVER_PORT": "9001", "PROTOIR_OUTPUT_FORMAT": "table"},
			expected: func(c *Config) {
				withLocal(c)
				c.Server.Port = "9001"
				c.Output.Format = "table"
			},
		},
		"flags override everything": {
			global: true,
			local:  true,
			env:    map[string]string{"PROTOIR_SERVER_PORT": "9001"},
			args:   []string{"--port", "8080", "--path", "yoko,touma", "--normalizer", "auto", "--reflection"},
			expected: func(c *Config) {
				withLocal(c)
				c.Server.Port = "8080"
				c.Server.Reflection = true
				c.Default.ProtoPath = []string{"yoko", "touma"}
				c.Compile.Normalizer = "auto"
			},
		},
		"unchanged flags don't override": {
			global:   true,
			args:     []string{},
			expected: withGlobal,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			dir, cfgDir := setupEnv(t)
			if c.global {
				writeTOML(t, filepath.Join(cfgDir, "config.toml"), globalConfig)
			}
			if c.local {
				writeTOML(t, filepath.Join(dir, ".protoir.toml"), localConfig)
			}
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			var fs *pflag.FlagSet
			if c.args != nil {
				fs = newFlagSet()
				if err := fs.Parse(c.args); err != nil {
					t.Fatalf("failed to parse flags: %s", err)
				}
			}

			cfg, err := Get(fs)
			if err != nil {
				t.Fatalf("Get must not return an error, but got '%s'", err)
			}

			expected := defaultConfig()
			c.expected(expected)
			if diff := cmp.Diff(expected, cfg, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want, +got)\n%s", diff)
			}
		})
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("port", "", "")
	fs.StringSlice("path", nil, "")
	fs.String("normalizer", "", "")
	fs.Bool("reflection", false, "")
	fs.String("output", "", "")
	return fs
}

func TestGet_ExpandHomeDir(t *testing.T) {
	dir, _ := setupEnv(t)
	writeTOML(t, filepath.Join(dir, ".protoir.toml"), map[string]interface{}{
		"default": map[string]interface{}{
			"protoFile": []string{"~/api.proto"},
		},
		"server": map[string]interface{}{
			"cacert": "~/ca.pem",
		},
	})
	home, err := homedir.Dir()
	if err != nil {
		t.Fatalf("failed to get the home dir: %s", err)
	}

	cfg, err := Get(nil)
	if err != nil {
		t.Fatalf("Get must not return an error, but got '%s'", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(home, "api.proto")}, cfg.Default.ProtoFile); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	if expected := filepath.Join(home, "ca.pem"); cfg.Server.CACert != expected {
		t.Errorf("expected %s, but got %s", expected, cfg.Server.CACert)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]struct {
		modify func(c *Config)
		nerrs  int
	}{
		"proto files": {
			modify: func(c *Config) { c.Default.ProtoFile = []string{"api.proto"} },
		},
		"descriptor sets": {
			modify: func(c *Config) { c.Default.DescriptorSet = []string{"api.pb"} },
		},
		"reflection with mutual TLS": {
			modify: func(c *Config) {
				c.Server.Reflection = true
				c.Server.TLS = true
				c.Server.Cert = "cert.pem"
				c.Server.CertKey = "key.pem"
			},
		},
		"no source": {
			modify: func(*Config) {},
			nerrs:  1,
		},
		"proto files and descriptor sets": {
			modify: func(c *Config) {
				c.Default.ProtoFile = []string{"api.proto"}
				c.Default.DescriptorSet = []string{"api.pb"}
			},
			nerrs: 1,
		},
		"reflection and proto files": {
			modify: func(c *Config) {
				c.Default.ProtoFile = []string{"api.proto"}
				c.Server.Reflection = true
			},
			nerrs: 1,
		},
		"all problems are reported": {
			modify: func(c *Config) {
				c.Server.Reflection = true
				c.Server.Web = true
				c.Server.TLS = true
				c.Server.Cert = "cert.pem"
				c.Compile.Normalizer = "snake"
				c.Compile.Access = "private"
				c.Compile.NestedSeparator = ""
				c.Output.Format = "yaml"
			},
			nerrs: 6,
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			c.modify(cfg)
			err := cfg.Validate()
			if c.nerrs == 0 {
				if err != nil {
					t.Fatalf("Validate must not return an error, but got '%s'", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, but got '%v'", err)
			}
			var merr interface{ WrappedErrors() []error }
			if !errors.As(err, &merr) {
				t.Fatalf("a validation error must wrap a multierror, but got %T", errors.Unwrap(err))
			}
			if n := len(merr.WrappedErrors()); n != c.nerrs {
				t.Errorf("expected %d errors, but got %d: %s", c.nerrs, n, err)
			}
		})
	}
}

func TestConfig_ParseOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Compile.Normalizer = "null"
	cfg.Compile.Access = "internal"
	cfg.Compile.NestedSeparator = "_"

	ctx := codegen.NewParseContext(cfg.ParseOptions()...)
	f, err := ctx.ParseFile(outerFile())
	if err != nil {
		t.Fatalf("ParseFile must not return an error, but got '%s'", err)
	}
	outer := f.Messages[0]
	if outer.Name != "outer_msg" {
		t.Errorf("the null normalizer must keep the name, but got %s", outer.Name)
	}
	if outer.Access != codegen.Internal {
		t.Errorf("expected internal access, but got %s", outer.Access)
	}
	if p := outer.Messages[0].FullyQualifiedPrefix; p != "outer_msg_" {
		t.Errorf("expected prefix outer_msg_, but got %s", p)
	}
}

func TestEdit(t *testing.T) {
	cases := map[string]struct {
		editor         string
		exists         bool
		expectedEditor string
	}{
		"run with default editor":        {expectedEditor: "vim"},
		"run with $EDITOR":               {editor: "nvim", expectedEditor: "nvim"},
		"edit the existing local config": {exists: true, expectedEditor: "vim"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			dir, _ := setupEnv(t)
			t.Setenv("EDITOR", c.editor)
			if c.exists {
				writeTOML(t, filepath.Join(dir, ".protoir.toml"), localConfig)
			}
			called := stubEditor(t, c.expectedEditor, ".protoir.toml")

			if err := Edit(); err != nil {
				t.Fatalf("Edit must not return an error, but got '%s'", err)
			}
			if !*called {
				t.Error("runEditor must be called")
			}
			if _, err := os.Stat(filepath.Join(dir, ".protoir.toml")); err != nil {
				t.Errorf("the local config must exist: %s", err)
			}
		})
	}
}

func TestEditGlobal(t *testing.T) {
	_, cfgDir := setupEnv(t)
	t.Setenv("EDITOR", "")
	p := filepath.Join(cfgDir, "config.toml")
	called := stubEditor(t, "vim", p)

	if err := EditGlobal(); err != nil {
		t.Fatalf("EditGlobal must not return an error, but got '%s'", err)
	}
	if !*called {
		t.Error("runEditor must be called")
	}

	// The created file holds the defaults.
	cfg, err := Get(nil)
	if err != nil {
		t.Fatalf("Get must not return an error, but got '%s'", err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
}

func stubEditor(t *testing.T, expectedEditor, expectedPath string) *bool {
	t.Helper()

	old := runEditor
	t.Cleanup(func() { runEditor = old })

	var called bool
	runEditor = func(editor, cfgPath string) error {
		called = true
		if editor != expectedEditor {
			t.Errorf("runEditor must be called with the expected editor (expected = %s, actual = %s)", expectedEditor, editor)
		}
		if cfgPath != expectedPath {
			t.Errorf("runEditor must be called with the expected path (expected = %s, actual = %s)", expectedPath, cfgPath)
		}
		return nil
	}
	return &called
}
