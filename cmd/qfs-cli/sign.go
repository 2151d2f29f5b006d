package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/internal/log"
	"github.com/talari30/Q-file-share/sign"
	"github.com/talari30/Q-file-share/utils"
)

func (a *app) handleSign(args []string) error {
	if len(args) < 1 {
		printSignUsage(a.stdout)
		return fmt.Errorf("%w: missing sign subcommand", errUsage)
	}

	switch args[0] {
	case "keygen":
		return a.signKeygen(args[1:])
	case "sign":
		return a.signSign(args[1:])
	case "verify":
		return a.signVerify(args[1:])
	case "help", "--help", "-h":
		printSignUsage(a.stdout)
		return nil
	default:
		printSignUsage(a.stderr)
		return fmt.Errorf("%w: unknown sign subcommand %q", errUsage, args[0])
	}
}

func printSignUsage(w io.Writer) {
	fmt.Fprintf(w, `%s sign - Dilithium-family digital signatures

USAGE:
    %s sign <SUBCOMMAND> [OPTIONS]

SUBCOMMANDS:
    keygen          Generate a new signature key pair
    sign            Sign --message or --input with --secret-key
    verify          Verify --signature against --public-key
    help            Show this help message

EXAMPLES:
    %s sign keygen --level 3 --output sign.json
    %s sign sign --secret-key sign.json --message "Hello World" --output sig.json
    %s sign verify --public-key sign.json --signature sig.json
`, appName, appName, appName, appName, appName)
}

// signOptions builds signing options from the configuration.
func signOptions(config CLIConfig) *sign.Options {
	return &sign.Options{
		MaxAttempts: config.MaxAttempts,
		Logger:      log.Default().Module("sign").Slog(),
	}
}

func (a *app) loadSignSecretKey(args []string) (*qfs.DilithiumSecretKey, error) {
	skFile, err := requireArg(args, "--secret-key", "-sk")
	if err != nil {
		return nil, err
	}
	skData, err := loadField(skFile, "secret_key")
	if err != nil {
		return nil, fmt.Errorf("loading secret key: %w", err)
	}
	defer utils.Zeroize(skData)
	sk, err := sign.DeserializeSecretKey(skData)
	if err != nil {
		return nil, fmt.Errorf("deserializing secret key: %w", err)
	}
	return sk, nil
}

func (a *app) loadSignPublicKey(args []string) (*qfs.DilithiumPublicKey, error) {
	pkFile, err := requireArg(args, "--public-key", "-pk")
	if err != nil {
		return nil, err
	}
	pkData, err := loadField(pkFile, "public_key")
	if err != nil {
		return nil, fmt.Errorf("loading public key: %w", err)
	}
	pk, err := sign.DeserializePublicKey(pkData)
	if err != nil {
		return nil, fmt.Errorf("deserializing public key: %w", err)
	}
	return pk, nil
}

func loadSignature(args []string) (*qfs.Signature, error) {
	sigFile, err := requireArg(args, "--signature", "-sig")
	if err != nil {
		return nil, err
	}
	sigData, err := loadField(sigFile, "signature")
	if err != nil {
		return nil, fmt.Errorf("loading signature: %w", err)
	}
	sig, err := sign.DeserializeSignature(sigData)
	if err != nil {
		return nil, fmt.Errorf("deserializing signature: %w", err)
	}
	return sig, nil
}

func (a *app) signKeygen(args []string) error {
	config, err := a.parseConfig(args)
	if err != nil {
		return err
	}

	start := time.Now()
	kp, err := sign.GenerateKeyPair(a.rng, config.SignLevel)
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	a.timing(config, "Key generation", time.Since(start))

	pkBytes := sign.SerializePublicKey(kp.PublicKey)
	skBytes := sign.SerializeSecretKey(kp.SecretKey)
	defer utils.Zeroize(skBytes)

	export := KeyPairExport{
		SecurityLevel: string(config.SignLevel),
		Encoding:      string(config.OutputFormat),
		PublicKey:     encodeBytes(pkBytes, config.OutputFormat),
		SecretKey:     encodeBytes(skBytes, config.OutputFormat),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.writeJSON(export, config.OutputFile); err != nil {
		return err
	}

	a.verbose(config, "Generated signature key pair with security level: %s", config.SignLevel)
	a.verbose(config, "Public key size: %d bytes", len(pkBytes))
	a.verbose(config, "Secret key size: %d bytes", len(skBytes))
	return nil
}

func (a *app) signSign(args []string) error {
	config, err := a.parseConfig(args)
	if err != nil {
		return err
	}
	msg, err := message(args, config)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("%w: --message or --input is required", errUsage)
	}
	sk, err := a.loadSignSecretKey(args)
	if err != nil {
		return err
	}

	start := time.Now()
	sig, err := sign.Sign(a.rng, sk, msg, signOptions(config))
	if err != nil {
		return fmt.Errorf("signing: %w", err)
	}
	a.timing(config, "Signing", time.Since(start))

	sigBytes := sign.SerializeSignature(sig)
	export := SignatureExport{
		SecurityLevel: string(sk.Params.Level),
		Encoding:      string(config.OutputFormat),
		Message:       encodeBytes(msg, config.OutputFormat),
		Signature:     encodeBytes(sigBytes, config.OutputFormat),
	}
	if err := a.writeJSON(export, config.OutputFile); err != nil {
		return err
	}
	a.verbose(config, "Signature size: %d bytes", len(sigBytes))
	return nil
}

func (a *app) signVerify(args []string) error {
	config, err := a.parseConfig(args)
	if err != nil {
		return err
	}
	msg, err := message(args, config)
	if err != nil {
		return err
	}
	if msg == nil {
		// Fall back to the message embedded by sign sign.
		if msg, err = loadField(getArg(args, "--signature", "-sig"), "message"); err != nil {
			return fmt.Errorf("%w: message is required (use --message, --input, or include in signature file)", errUsage)
		}
	}
	pk, err := a.loadSignPublicKey(args)
	if err != nil {
		return err
	}
	sig, err := loadSignature(args)
	if err != nil {
		return err
	}

	start := time.Now()
	valid := sign.Verify(pk, msg, sig)
	a.timing(config, "Verification", time.Since(start))

	return a.reportVerification(config, valid)
}

// reportVerification prints {"valid": ...} and turns a failed check into
// a non-zero exit.
func (a *app) reportVerification(config CLIConfig, valid bool) error {
	out, err := json.MarshalIndent(map[string]bool{"valid": valid}, "", "  ")
	if err != nil {
		return err
	}
	if err := a.writeOutput(append(out, '\n'), config.OutputFile); err != nil {
		return err
	}
	if !valid {
		return errInvalidSignature
	}
	a.verbose(config, "Signature is VALID")
	return nil
}
