// Package config provides the layered configuration of protoir.
//
// Values are merged in the following order, a later layer overrides the former:
//
//	defaults < global config < project local config < $PROTOIR_* < command-line flags
package config

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/ktr0731/protoir/codegen"
	"github.com/ktr0731/protoir/logger"
	"github.com/ktr0731/protoir/meta"
	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	xdgbasedir "github.com/zchee/go-xdgbasedir"
)

const (
	globalConfigName = "config.toml"
	localConfigName  = ".protoir.toml"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

type Config struct {
	Meta    *Meta    `toml:"meta"`
	Default *Default `toml:"default"`
	Server  *Server  `toml:"server"`
	Compile *Compile `toml:"compile"`
	Output  *Output  `toml:"output"`
}

type Meta struct {
	ConfigVersion string `toml:"configVersion"`
}

// Default holds where descriptors are loaded from.
type Default struct {
	ProtoPath     []string `toml:"protoPath"`
	ProtoFile     []string `toml:"protoFile"`
	DescriptorSet []string `toml:"descriptorSet"`
	// Generate restricts the generated files. All requested files are generated if it is empty.
	Generate []string `toml:"generate"`
}

// Server is the reflection server. It is used only if Reflection is true.
type Server struct {
	Host       string              `toml:"host"`
	Port       string              `toml:"port"`
	Reflection bool                `toml:"reflection"`
	Web        bool                `toml:"web"`
	TLS        bool                `toml:"tls"`
	CACert     string              `toml:"cacert"`
	Cert       string              `toml:"cert"`
	CertKey    string              `toml:"certKey"`
	Name       string              `toml:"name"`
	Header     map[string][]string `toml:"header"`
}

type Compile struct {
	Normalizer      string   `toml:"normalizer"`
	ValueTypes      []string `toml:"valueTypes"`
	Access          string   `toml:"access"`
	NestedSeparator string   `toml:"nestedSeparator"`
}

type Output struct {
	Format string `toml:"format"`
	Indent string `toml:"indent"`
}

// Addr returns the address of the reflection server.
func (s *Server) Addr() string {
	return s.Host + ":" + s.Port
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"default.protoPath":       "path",
	"default.protoFile":       "proto",
	"default.descriptorSet":   "descriptor-set",
	"default.generate":        "generate",
	"server.host":             "host",
	"server.port":             "port",
	"server.reflection":       "reflection",
	"server.web":              "web",
	"server.tls":              "tls",
	"server.cacert":           "cacert",
	"server.cert":             "cert",
	"server.certKey":          "certkey",
	"server.name":             "servername",
	"compile.normalizer":      "normalizer",
	"compile.valueTypes":      "value-type",
	"compile.access":          "access",
	"compile.nestedSeparator": "separator",
	"output.format":           "output",
	"output.indent":           "indent",
}

func setDefault(v *viper.Viper) {
	v.SetDefault("meta.configVersion", meta.Version.String())

	v.SetDefault("default.protoPath", []string{})
	v.SetDefault("default.protoFile", []string{})
	v.SetDefault("default.descriptorSet", []string{})
	v.SetDefault("default.generate", []string{})

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "50051")
	v.SetDefault("server.reflection", false)
	v.SetDefault("server.web", false)
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cacert", "")
	v.SetDefault("server.cert", "")
	v.SetDefault("server.certKey", "")
	v.SetDefault("server.name", "")

	v.SetDefault("compile.normalizer", "auto")
	v.SetDefault("compile.valueTypes", []string{})
	v.SetDefault("compile.access", codegen.Public.String())
	v.SetDefault("compile.nestedSeparator", ".")

	v.SetDefault("output.format", FormatJSON)
	v.SetDefault("output.indent", "  ")
}

// Get returns the merged config. fs may be nil, otherwise flags that are
// changed in fs override the config files and environment variables.
func Get(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetConfigType("toml")

	if err := mergeFile(v, globalConfigPath()); err != nil {
		return nil, errors.Wrap(err, "failed to load the global config")
	}

	p, err := lookupLocalConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up the local config")
	}
	if p != "" {
		if err := mergeFile(v, p); err != nil {
			return nil, errors.Wrap(err, "failed to load the local config")
		}
	}

	v.SetEnvPrefix(meta.AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode the merged config")
	}
	if err := setupConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeFile(v *viper.Viper, p string) error {
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Printf("load config: %s", p)
	return v.MergeConfig(f)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for k, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(k, f); err != nil {
			return errors.Wrapf(err, "failed to bind flag '%s'", name)
		}
	}
	return nil
}

// setupConfig fills nil sections and expands '~' in paths.
func setupConfig(cfg *Config) error {
	if cfg.Meta == nil {
		cfg.Meta = &Meta{}
	}
	if cfg.Default == nil {
		cfg.Default = &Default{}
	}
	if cfg.Server == nil {
		cfg.Server = &Server{}
	}
	if cfg.Server.Header == nil {
		cfg.Server.Header = map[string][]string{}
	}
	if cfg.Compile == nil {
		cfg.Compile = &Compile{}
	}
	if cfg.Output == nil {
		cfg.Output = &Output{}
	}

	var err error
	for _, paths := range [][]string{cfg.Default.ProtoPath, cfg.Default.ProtoFile, cfg.Default.DescriptorSet} {
		for i := range paths {
			if paths[i], err = homedir.Expand(paths[i]); err != nil {
				return errors.Wrapf(err, "failed to expand '%s'", paths[i])
			}
		}
	}
	for _, p := range []*string{&cfg.Server.CACert, &cfg.Server.Cert, &cfg.Server.CertKey} {
		if *p, err = homedir.Expand(*p); err != nil {
			return errors.Wrapf(err, "failed to expand '%s'", *p)
		}
	}
	return nil
}

// ValidationError is returned from Validate. It wraps all problems found in a config.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string {
	return e.err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// Validate reports every invalid combination of values as a *ValidationError.
func (c *Config) Validate() error {
	var result error
	invalidCases := []struct {
		name string
		cond bool
	}{
		{
			"one of proto files, descriptor sets or gRPC reflection must be specified",
			len(c.Default.ProtoFile) == 0 && len(c.Default.DescriptorSet) == 0 && !c.Server.Reflection,
		},
		{
			"cannot specify both of proto files and descriptor sets",
			len(c.Default.ProtoFile) != 0 && len(c.Default.DescriptorSet) != 0,
		},
		{
			"cannot use gRPC reflection with proto files or descriptor sets",
			c.Server.Reflection && (len(c.Default.ProtoFile) != 0 || len(c.Default.DescriptorSet) != 0),
		},
		{"cannot use TLS with gRPC-Web", c.Server.Web && c.Server.TLS},
		{"cert and certKey must be specified together", (c.Server.Cert == "") != (c.Server.CertKey == "")},
		{"nested separator must not be empty", c.Compile.NestedSeparator == ""},
		{
			"output format must be one of json or table",
			c.Output.Format != FormatJSON && c.Output.Format != FormatTable,
		},
	}
	for _, ic := range invalidCases {
		if ic.cond {
			result = multierror.Append(result, errors.New(ic.name))
		}
	}
	if _, err := codegen.NormalizerByName(c.Compile.Normalizer); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := codegen.ParseAccess(c.Compile.Access); err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		return &ValidationError{err: result}
	}
	return nil
}

// ParseOptions converts the compile section into the options of codegen.
// c must be validated.
func (c *Config) ParseOptions() []codegen.Option {
	normalizer, _ := codegen.NormalizerByName(c.Compile.Normalizer)
	access, _ := codegen.ParseAccess(c.Compile.Access)
	return []codegen.Option{
		codegen.WithNameNormalizer(normalizer),
		codegen.WithValueTypes(c.Compile.ValueTypes...),
		codegen.WithAccess(access),
		codegen.WithNestedSeparator(c.Compile.NestedSeparator),
	}
}

func globalConfigPath() string {
	return filepath.Join(xdgbasedir.ConfigHome(), meta.AppName, globalConfigName)
}

// lookupLocalConfig finds the local config from the current directory,
// then from the root of the Git repository if the current directory is in it.
// It returns an empty string if not found.
func lookupLocalConfig() (string, error) {
	if _, err := os.Stat(localConfigName); err == nil {
		return localConfigName, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	root, err := lookupProjectRoot()
	if err != nil || root == "" {
		// Not in a Git repository.
		return "", nil
	}
	p := filepath.Join(root, localConfigName)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return p, nil
}

func lookupProjectRoot() (string, error) {
	var out, stderr bytes.Buffer
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// runEditor opens cfgPath with editor. It is replaced in tests.
var runEditor = func(editor string, cfgPath string) error {
	cmd := exec.Command(editor, cfgPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vim"
}

// Edit opens the local config by $EDITOR. If it doesn't exist, Edit creates
// it in the current directory.
func Edit() error {
	p, err := lookupLocalConfig()
	if err != nil {
		return errors.Wrap(err, "failed to look up the local config")
	}
	if p == "" {
		p = localConfigName
		f, err := os.Create(p)
		if err != nil {
			return errors.Wrap(err, "failed to create the local config")
		}
		f.Close()
	}
	return runEditor(editor(), p)
}

// EditGlobal opens the global config by $EDITOR. If it doesn't exist,
// EditGlobal creates it with the default values.
func EditGlobal() error {
	p := globalConfigPath()
	if _, err := os.Stat(p); os.IsNotExist(err) {
		if err := writeDefaultConfig(p); err != nil {
			return errors.Wrap(err, "failed to create the global config")
		}
	} else if err != nil {
		return err
	}
	return runEditor(editor(), p)
}

func writeDefaultConfig(p string) error {
	v := viper.New()
	setDefault(v)
	tree, err := toml.TreeFromMap(v.AllSettings())
	if err != nil {
		return errors.Wrap(err, "failed to encode the default config")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = tree.WriteTo(f)
	return err
}
