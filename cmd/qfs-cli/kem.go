package main

import (
	"fmt"
	"io"
	"time"

	"github.com/talari30/Q-file-share/core"
	"github.com/talari30/Q-file-share/kem"
	"github.com/talari30/Q-file-share/utils"
)

func (a *app) handleKEM(args []string) error {
	if len(args) < 1 {
		printKEMUsage(a.stdout)
		return fmt.Errorf("%w: missing kem subcommand", errUsage)
	}

	switch args[0] {
	case "keygen":
		return a.kemKeygen(args[1:])
	case "encrypt":
		return a.kemEncrypt(args[1:])
	case "decrypt":
		return a.kemDecrypt(args[1:])
	case "help", "--help", "-h":
		printKEMUsage(a.stdout)
		return nil
	default:
		printKEMUsage(a.stderr)
		return fmt.Errorf("%w: unknown kem subcommand %q", errUsage, args[0])
	}
}

func printKEMUsage(w io.Writer) {
	fmt.Fprintf(w, `%s kem - Kyber-family public-key encryption

USAGE:
    %s kem <SUBCOMMAND> [OPTIONS]

SUBCOMMANDS:
    keygen          Generate a new key pair
    encrypt         Encrypt a fresh random key under --public-key
    decrypt         Recover the key from --ciphertext with --secret-key
    help            Show this help message

EXAMPLES:
    %s kem keygen --level 512 --output kem.json
    %s kem encrypt --public-key kem.json --output ct.json
    %s kem decrypt --secret-key kem.json --ciphertext ct.json
`, appName, appName, appName, appName, appName)
}

func (a *app) kemKeygen(args []string) error {
	config, err := a.parseConfig(args)
	if err != nil {
		return err
	}

	start := time.Now()
	kp, err := kem.GenerateKeyPair(a.rng, config.KEMLevel)
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	a.timing(config, "Key generation", time.Since(start))

	pkBytes := kem.SerializePublicKey(kp.PublicKey)
	skBytes := kem.SerializeSecretKey(kp.SecretKey)
	defer utils.Zeroize(skBytes)

	export := KeyPairExport{
		SecurityLevel: string(config.KEMLevel),
		Encoding:      string(config.OutputFormat),
		PublicKey:     encodeBytes(pkBytes, config.OutputFormat),
		SecretKey:     encodeBytes(skBytes, config.OutputFormat),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.writeJSON(export, config.OutputFile); err != nil {
		return err
	}

	a.verbose(config, "Generated key pair with security level: %s", config.KEMLevel)
	a.verbose(config, "Public key size: %d bytes", len(pkBytes))
	a.verbose(config, "Secret key size: %d bytes", len(skBytes))
	return nil
}

func (a *app) kemEncrypt(args []string) error {
	config, err := a.parseConfig(args)
	if err != nil {
		return err
	}
	pkFile, err := requireArg(args, "--public-key", "-pk")
	if err != nil {
		return err
	}

	pkData, err := loadField(pkFile, "public_key")
	if err != nil {
		return fmt.Errorf("loading public key: %w", err)
	}
	pk, err := kem.DeserializePublicKey(pkData)
	if err != nil {
		return fmt.Errorf("deserializing public key: %w", err)
	}

	start := time.Now()
	res, err := kem.Encrypt(a.rng, pk)
	if err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}
	a.timing(config, "Encryption", time.Since(start))
	defer utils.Zeroize(res.Key)

	ct, err := kem.CompressCiphertext(pk.Params, &res.Ciphertext)
	if err != nil {
		return err
	}
	key, err := utils.BitsToBytes(res.Key)
	if err != nil {
		return err
	}
	defer utils.Zeroize(key)

	export := CiphertextExport{
		SecurityLevel: string(pk.Params.Level),
		Encoding:      string(config.OutputFormat),
		Ciphertext:    encodeBytes(ct, config.OutputFormat),
		Key:           encodeBytes(key, config.OutputFormat),
	}
	if err := a.writeJSON(export, config.OutputFile); err != nil {
		return err
	}
	a.verbose(config, "Ciphertext size: %d bytes (compressed)", len(ct))
	return nil
}

func (a *app) kemDecrypt(args []string) error {
	config, err := a.parseConfig(args)
	if err != nil {
		return err
	}
	skFile, err := requireArg(args, "--secret-key", "-sk")
	if err != nil {
		return err
	}
	ctFile, err := requireArg(args, "--ciphertext", "-ct")
	if err != nil {
		return err
	}

	skData, err := loadField(skFile, "secret_key")
	if err != nil {
		return fmt.Errorf("loading secret key: %w", err)
	}
	defer utils.Zeroize(skData)
	sk, err := kem.DeserializeSecretKey(skData)
	if err != nil {
		return fmt.Errorf("deserializing secret key: %w", err)
	}
	ctData, err := loadField(ctFile, "ciphertext")
	if err != nil {
		return fmt.Errorf("loading ciphertext: %w", err)
	}

	params, err := core.GetKyberParams(sk.Params.Level)
	if err != nil {
		return err
	}
	ct, err := kem.DecompressCiphertext(params, ctData)
	if err != nil {
		return fmt.Errorf("decoding ciphertext: %w", err)
	}

	start := time.Now()
	key, err := kem.DecryptKey(sk, ct)
	if err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}
	a.timing(config, "Decryption", time.Since(start))
	defer utils.Zeroize(key)

	return a.writeOutput([]byte(encodeBytes(key, config.OutputFormat)+"\n"), config.OutputFile)
}
