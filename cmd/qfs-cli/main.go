// Package main provides the qfs-cli command line interface for Q-file-share
// encryption, signing and file operations.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/internal/log"
)

const appName = "qfs-cli"

// Environment variables read after loading .env.
const (
	EnvFile            = "QFS_ENV_FILE"
	EnvKEMLevel        = "QFS_KEM_LEVEL"
	EnvSignLevel       = "QFS_SIGN_LEVEL"
	EnvFormat          = "QFS_FORMAT"
	EnvMaxSignAttempts = "QFS_MAX_SIGN_ATTEMPTS"
	EnvLogLevel        = "QFS_LOG_LEVEL"
)

// maxInputFileSize bounds every file the CLI reads into memory.
const maxInputFileSize = 100 * 1024 * 1024

// OutputFormat is the text encoding used for binary fields.
type OutputFormat string

const (
	FormatHex    OutputFormat = "hex"
	FormatBase64 OutputFormat = "base64"
)

// CLIConfig holds the settings shared by every command.
type CLIConfig struct {
	KEMLevel     qfs.SecurityLevel
	SignLevel    qfs.SecurityLevel
	OutputFormat OutputFormat
	OutputFile   string
	InputFile    string
	MaxAttempts  int
	LogLevel     slog.Level
	Verbose      bool
	Timing       bool
}

// KeyPairExport is the on-disk form of a key pair. The same file can be
// passed as --public-key and --secret-key.
type KeyPairExport struct {
	SecurityLevel string `json:"security_level"`
	Encoding      string `json:"encoding"`
	PublicKey     string `json:"public_key"`
	SecretKey     string `json:"secret_key,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// CiphertextExport is the output of kem encrypt.
type CiphertextExport struct {
	SecurityLevel string `json:"security_level"`
	Encoding      string `json:"encoding"`
	Ciphertext    string `json:"ciphertext"`
	Key           string `json:"key,omitempty"`
}

// SignatureExport is the output of sign sign and file sign.
type SignatureExport struct {
	SecurityLevel string `json:"security_level"`
	Encoding      string `json:"encoding"`
	Message       string `json:"message,omitempty"`
	Signature     string `json:"signature"`
}

var (
	errUsage            = errors.New("usage error")
	errInvalidSignature = errors.New("signature is INVALID")
)

// app carries the output streams and entropy source for one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	rng    io.Reader // nil reads from crypto/rand
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if err := loadEnv(); err != nil {
		fmt.Fprintf(stderr, "Error loading environment: %v\n", err)
		return 1
	}
	if len(args) < 1 {
		printUsage(stdout)
		return 1
	}

	a := &app{stdout: stdout, stderr: stderr}
	var err error
	switch args[0] {
	case "kem":
		err = a.handleKEM(args[1:])
	case "sign":
		err = a.handleSign(args[1:])
	case "file":
		err = a.handleFile(args[1:])
	case "benchmark":
		err = a.handleBenchmark(args[1:])
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "%s version %s\n", appName, qfs.Version)
	case "help", "--help", "-h":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s - Q-file-share lattice cryptography

USAGE:
    %s <COMMAND> [SUBCOMMAND] [OPTIONS]

COMMANDS:
    kem         Kyber-family public-key encryption (keygen, encrypt, decrypt)
    sign        Dilithium-family signatures (keygen, sign, verify)
    file        File payloads (seal, open, sign, verify)
    benchmark   Time every operation, optionally rendering an HTML chart
    version     Show version information
    help        Show this help message

GLOBAL OPTIONS:
    --level, -l <level>         512, 768, toy (kem/file) or 3, 5, toy (sign)
    --format, -f <hex|base64>   Encoding of binary fields (default: base64)
    --output, -o <file>         Output file, written with 0600 (default: stdout)
    --input, -i <file>          Input file
    --max-attempts <n>          Signing attempt budget
    --log-level <level>         debug, info, warn or error
    --timing, -t                Show timing information
    --verbose                   Verbose output

ENVIRONMENT (.env is loaded when present, or %s):
    %s, %s, %s, %s, %s

EXAMPLES:
    %s kem keygen --level 768 --output kem.json
    %s file seal --public-key kem.json --input report.pdf --output report.env.json
    %s file open --secret-key kem.json --input report.env.json --output report.pdf
    %s sign keygen --output sign.json
    %s file sign --secret-key sign.json --input report.pdf --output report.sig.json
    %s file verify --public-key sign.json --input report.pdf --signature report.sig.json
`, appName, appName, EnvFile,
		EnvKEMLevel, EnvSignLevel, EnvFormat, EnvMaxSignAttempts, EnvLogLevel,
		appName, appName, appName, appName, appName, appName)
}

// ============================================================================
// Configuration
// ============================================================================

// loadEnv reads QFS_ENV_FILE, or .env in the working directory, into the
// process environment. Variables already set win. A missing file is fine.
func loadEnv() error {
	path := os.Getenv(EnvFile)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// defaultConfig builds the configuration implied by the environment.
func defaultConfig() (CLIConfig, error) {
	config := CLIConfig{
		KEMLevel:     qfs.Kyber512,
		SignLevel:    qfs.Dilithium3,
		OutputFormat: FormatBase64,
		LogLevel:     slog.LevelInfo,
	}
	var err error
	if v := os.Getenv(EnvKEMLevel); v != "" {
		if config.KEMLevel, err = parseKEMLevel(v); err != nil {
			return config, fmt.Errorf("%s: %w", EnvKEMLevel, err)
		}
	}
	if v := os.Getenv(EnvSignLevel); v != "" {
		if config.SignLevel, err = parseSignLevel(v); err != nil {
			return config, fmt.Errorf("%s: %w", EnvSignLevel, err)
		}
	}
	if v := os.Getenv(EnvFormat); v != "" {
		if config.OutputFormat, err = parseFormat(v); err != nil {
			return config, fmt.Errorf("%s: %w", EnvFormat, err)
		}
	}
	if v := os.Getenv(EnvMaxSignAttempts); v != "" {
		if config.MaxAttempts, err = parseAttempts(v); err != nil {
			return config, fmt.Errorf("%s: %w", EnvMaxSignAttempts, err)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if config.LogLevel, err = log.ParseLevel(v); err != nil {
			return config, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	return config, nil
}

// parseConfig layers command-line flags over the environment defaults and
// installs the process logger.
func (a *app) parseConfig(args []string) (CLIConfig, error) {
	config, err := defaultConfig()
	if err != nil {
		return config, err
	}

	if level := getArg(args, "--level", "-l"); level != "" {
		kemLevel, kemErr := parseKEMLevel(level)
		signLevel, signErr := parseSignLevel(level)
		if kemErr != nil && signErr != nil {
			return config, fmt.Errorf("%w: invalid security level %q", errUsage, level)
		}
		if kemErr == nil {
			config.KEMLevel = kemLevel
		}
		if signErr == nil {
			config.SignLevel = signLevel
		}
	}
	if format := getArg(args, "--format", "-f"); format != "" {
		if config.OutputFormat, err = parseFormat(format); err != nil {
			return config, err
		}
	}
	if attempts := getArg(args, "--max-attempts", ""); attempts != "" {
		if config.MaxAttempts, err = parseAttempts(attempts); err != nil {
			return config, err
		}
	}
	if level := getArg(args, "--log-level", ""); level != "" {
		if config.LogLevel, err = log.ParseLevel(level); err != nil {
			return config, fmt.Errorf("%w: %w", errUsage, err)
		}
	}

	config.OutputFile = getArg(args, "--output", "-o")
	config.InputFile = getArg(args, "--input", "-i")
	config.Verbose = hasFlag(args, "--verbose", "")
	config.Timing = hasFlag(args, "--timing", "-t")

	log.SetDefault(log.NewWriter(a.stderr, config.LogLevel, true))
	return config, nil
}

func parseKEMLevel(s string) (qfs.SecurityLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "512", "KYBER512", "KYBER-512":
		return qfs.Kyber512, nil
	case "768", "KYBER768", "KYBER-768":
		return qfs.Kyber768, nil
	case "TOY", "KYBER-TOY":
		return qfs.KyberToy, nil
	}
	return "", fmt.Errorf("%w: %q (want 512, 768 or toy)", qfs.ErrUnknownLevel, s)
}

func parseSignLevel(s string) (qfs.SecurityLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "3", "DILITHIUM3", "DILITHIUM-3":
		return qfs.Dilithium3, nil
	case "5", "DILITHIUM5", "DILITHIUM-5":
		return qfs.Dilithium5, nil
	case "TOY", "DILITHIUM-TOY":
		return qfs.DilithiumToy, nil
	}
	return "", fmt.Errorf("%w: %q (want 3, 5 or toy)", qfs.ErrUnknownLevel, s)
}

func parseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatHex:
		return FormatHex, nil
	case FormatBase64:
		return FormatBase64, nil
	}
	return "", fmt.Errorf("%w: invalid format %q (want hex or base64)", errUsage, s)
}

func parseAttempts(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: attempt budget must be a positive integer, got %q", errUsage, s)
	}
	return n, nil
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

func requireArg(args []string, long, short string) (string, error) {
	v := getArg(args, long, short)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", errUsage, long)
	}
	return v, nil
}

// ============================================================================
// Encoding and file helpers
// ============================================================================

func encodeBytes(data []byte, format OutputFormat) string {
	if format == FormatHex {
		return hex.EncodeToString(data)
	}
	return base64.StdEncoding.EncodeToString(data)
}

// decodeBytes decodes s using the named encoding. An empty encoding tries
// base64 and then hex.
func decodeBytes(s, encoding string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch OutputFormat(encoding) {
	case FormatHex:
		data, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
		}
		return data, nil
	case FormatBase64:
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
		}
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: value is neither base64 nor hex", qfs.ErrEncoding)
}

// readInput reads a whole file, refusing anything above maxInputFileSize.
func readInput(filename string) ([]byte, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > maxInputFileSize {
		return nil, fmt.Errorf("input file too large: %d > %d bytes", info.Size(), maxInputFileSize)
	}
	return os.ReadFile(filename)
}

// loadField reads field from a JSON export, honoring its encoding. Files
// that are not JSON are taken as a bare base64 or hex string.
func loadField(filename, field string) ([]byte, error) {
	data, err := readInput(filename)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return decodeBytes(string(data), "")
	}
	encoding, _ := doc["encoding"].(string)
	val, ok := doc[field].(string)
	if !ok || val == "" {
		return nil, fmt.Errorf("%w: %s has no %q field", qfs.ErrEncoding, filename, field)
	}
	return decodeBytes(val, encoding)
}

// writeOutput writes data to filename with owner-only permissions, or to
// stdout when filename is empty.
func (a *app) writeOutput(data []byte, filename string) error {
	if filename == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Enforce permissions even if umask is permissive.
	return os.Chmod(filename, 0600)
}

// writeJSON writes v as indented JSON followed by a newline.
func (a *app) writeJSON(v any, filename string) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	return a.writeOutput(append(out, '\n'), filename)
}

// message returns the bytes named by --message or --input.
func message(args []string, config CLIConfig) ([]byte, error) {
	if m := getArg(args, "--message", "-m"); m != "" {
		return []byte(m), nil
	}
	if config.InputFile != "" {
		return readInput(config.InputFile)
	}
	return nil, nil
}

func (a *app) timing(config CLIConfig, what string, d fmt.Stringer) {
	if config.Timing {
		fmt.Fprintf(a.stderr, "%s took: %v\n", what, d)
	}
}

func (a *app) verbose(config CLIConfig, format string, args ...any) {
	if config.Verbose {
		fmt.Fprintf(a.stderr, format+"\n", args...)
	}
}
